package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/thankstars/pkg/buildinfo"
	errs "github.com/matzehuels/thankstars/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Without a subcommand the root behaves like "run" and accepts its flags.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	opts := &runOptions{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Star the GitHub repositories of your dependencies",
		Long: `thankstars finds the GitHub repositories behind a project's dependencies
and stars the ones you have not starred yet.

Supported package managers: npm, Deno/JSR, Cargo, Go modules, Dart/Flutter,
Composer, Bundler, Python (uv, pip, Pipenv), Gradle, Maven, renv and
Cabal/hpack.`,
		Version:      buildinfo.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
				installLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStars(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.String() + "\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.bind(root.Flags())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.discoverCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	presentErrors(root)
	return root
}

// presentErrors makes every command return errors whose message is the
// user-facing rendering of coded errors, keeping the chain intact.
func presentErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if err := run(cmd, args); err != nil {
				return &userError{err: err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		presentErrors(sub)
	}
}

type userError struct{ err error }

func (e *userError) Error() string { return errs.UserMessage(e.err) }
func (e *userError) Unwrap() error { return e.err }
