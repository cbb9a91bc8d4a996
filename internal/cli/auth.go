package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thankstars/pkg/config"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations/github"
)

// authCommand creates the auth command. On its own it stores a personal
// access token; subcommands cover device login, status and logout.
func (c *CLI) authCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Configure the GitHub token used for starring",
		Long: `Store a GitHub personal access token in the config file.

Without --token the token is read from standard input. The token needs the
public_repo scope (or "Starring" read/write for fine-grained tokens).
GITHUB_TOKEN, when set, takes precedence over the stored token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.manager()
			if err != nil {
				return err
			}
			return saveToken(cmd, m, token)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token")

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authStatusCommand())
	cmd.AddCommand(c.authLogoutCommand())
	return cmd
}

func saveToken(cmd *cobra.Command, m *config.Manager, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		var err error
		if token, err = promptToken(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	if err := m.SaveToken(token); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "failed to save GitHub token")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", m.Path())
	return nil
}

func promptToken(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "GitHub personal access token: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "failed to read token from stdin")
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "token must not be empty")
	}
	return token, nil
}

// authLoginCommand creates the "auth login" subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var device bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with GitHub",
		Long: `Authenticate with GitHub and store the resulting token.

With --device, start the OAuth device flow: you'll be given a code to enter
at https://github.com/login/device. This needs an OAuth app client ID in
client_id (config.toml) or THANKS_STARS_CLIENT_ID. Without --device, paste a
personal access token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !device {
				return saveToken(cmd, m, "")
			}
			return runDeviceLogin(cmd, m, cfg)
		},
	}
	cmd.Flags().BoolVar(&device, "device", false, "use the OAuth device flow")
	return cmd
}

// authStatusCommand creates the "auth status" subcommand.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which GitHub account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasToken() {
				return errTokenMissing()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			out := cmd.OutOrStdout()
			spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Verifying token...")
			spinner.Start()

			user, err := newGitHubClient(cfg).Viewer(ctx)
			if err != nil {
				spinner.StopWithError("Token invalid")
				return classifyRunError(err)
			}
			spinner.StopWithSuccess("Token verified")

			printKeyValue(out, "Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue(out, "Name", user.Name)
			}
			printKeyValue(out, "Source", tokenSource(m, cfg))
			printKeyValue(out, "API", cfg.APIBase)
			return nil
		},
	}
}

// tokenSource reports which settings layer supplied the token.
func tokenSource(m *config.Manager, cfg *config.Config) string {
	if v := strings.TrimSpace(os.Getenv(config.EnvToken)); v != "" && v == cfg.Token {
		return config.EnvToken
	}
	if v, err := m.FileToken(); err == nil && strings.TrimSpace(v) == cfg.Token {
		return m.Path()
	}
	return config.EnvPrefix + "_TOKEN"
}

// authLogoutCommand creates the "auth logout" subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.manager()
			if err != nil {
				return err
			}
			if err := m.ClearToken(); err != nil {
				return errs.Wrap(errs.ErrCodeConfig, err, "remove stored token")
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "Logged out")
			if os.Getenv(config.EnvToken) != "" {
				printDetail(out, "%s is still set in the environment", config.EnvToken)
			}
			return nil
		},
	}
}

// =============================================================================
// Device Flow Login
// =============================================================================

func runDeviceLogin(cmd *cobra.Command, m *config.Manager, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	oauthClient := github.NewOAuthClient(github.OAuthConfig{ClientID: cfg.ClientID})

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
	defer cancel()

	deviceResp, err := oauthClient.RequestDeviceCode(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrCodeGitHubAPI, err, "request device code")
	}

	printNewline(out)
	fmt.Fprintln(out, StyleTitle.Render("GitHub Device Authorization"))
	printNewline(out)
	printKeyValue(out, "Code", StyleNumber.Render(deviceResp.UserCode))
	printKeyValue(out, "URL", StyleLink.Render(deviceResp.VerificationURI))
	printNewline(out)

	if err := openBrowser(deviceResp.VerificationURI); err != nil {
		printDetail(out, "Copy the URL above and paste it in your browser")
	} else {
		printDetail(out, "Opening browser...")
	}

	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Waiting for authorization...")
	spinner.Start()
	token, err := oauthClient.PollForToken(ctx, deviceResp.DeviceCode, deviceResp.Interval)
	if err != nil {
		spinner.StopWithError("Authorization failed")
		return errs.Wrap(errs.ErrCodeUnauthorized, err, "authorization failed")
	}
	spinner.Stop()

	user, err := github.NewClient(token.AccessToken).WithBaseURL(cfg.APIBase).Viewer(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrCodeGitHubAPI, err, "fetch user")
	}
	if err := m.SaveToken(token.AccessToken); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "failed to save GitHub token")
	}

	printSuccess(out, "Logged in as @%s", user.Login)
	printFile(out, m.Path())
	printNextStep(out, "Star your dependencies", appName+" run")
	return nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
