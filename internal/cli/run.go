package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/thankstars/pkg/discovery"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations/github"
	"github.com/matzehuels/thankstars/pkg/pipeline"
	"github.com/matzehuels/thankstars/pkg/reconcile"
	"github.com/matzehuels/thankstars/pkg/render"
)

// runOptions holds the flags shared by the root command and "run".
type runOptions struct {
	path        string
	dryRun      bool
	only        []string
	interactive bool
	refresh     bool
}

func (o *runOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.path, "path", "p", "", "project root (default: current directory)")
	fs.BoolVar(&o.dryRun, "dry-run", false, "check star state without starring anything")
	fs.StringSliceVar(&o.only, "only", nil, "limit discovery to these package managers (e.g. node,go)")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "choose which repositories to star")
	fs.BoolVar(&o.refresh, "refresh", false, "ignore cached registry lookups")
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Star dependencies of the current project",
		Long: `Discover the project's dependencies, resolve their GitHub repositories and
star every repository you have not starred yet.

Use --dry-run to see what would be starred.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStars(cmd, opts)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func (c *CLI) runStars(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	frameworks, err := parseFrameworks(opts.only)
	if err != nil {
		return err
	}
	_, cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HasToken() {
		return errTokenMissing()
	}

	sess, err := c.newSession(ctx, cfg, newGitHubClient(cfg), opts.refresh)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Discovering dependencies...")
	spinner.Start()
	defer spinner.Stop()

	runOpts := pipeline.Options{
		Root:       opts.path,
		Frameworks: frameworks,
		DryRun:     opts.dryRun,
		Handler: reconcile.Multi(
			reconcile.HandlerFuncs{Start: func(int) { spinner.Stop() }},
			newStarPrinter(out, opts.dryRun),
		),
	}
	if opts.interactive {
		pick := pickRepositories(cmd.InOrStdin(), out)
		runOpts.Select = func(ctx context.Context, repos []discovery.Repository) ([]discovery.Repository, error) {
			spinner.Stop()
			return pick(ctx, repos)
		}
	}

	prog := newProgress(logger)
	result, err := sess.Runner.Run(ctx, runOpts)
	if err != nil {
		return classifyRunError(err)
	}
	prog.done(fmt.Sprintf("Processed %d %s", result.Summary.Len(), plural(result.Summary.Len(), "repository", "repositories")))
	if result.RunID != "" {
		logger.Debug("run recorded", "id", result.RunID)
	}
	return nil
}

// parseFrameworks resolves --only values.
func parseFrameworks(names []string) ([]discovery.Framework, error) {
	var frameworks []discovery.Framework
	seen := make(map[discovery.Framework]bool)
	for _, name := range names {
		f, err := discovery.ParseFramework(name)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFramework, err, "invalid --only value")
		}
		if !seen[f] {
			seen[f] = true
			frameworks = append(frameworks, f)
		}
	}
	return frameworks, nil
}

// classifyRunError turns a rejected token into an UNAUTHORIZED error with
// a hint; everything else passes through.
func classifyRunError(err error) error {
	var apiErr *github.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return errs.Wrap(errs.ErrCodeUnauthorized, err,
			"GitHub rejected the token. Run `%s auth --token <token>` to replace it", appName)
	}
	return err
}

// =============================================================================
// Star Output
// =============================================================================

// starPrinter writes one line per processed repository and a closing
// summary line.
type starPrinter struct {
	w      io.Writer
	dryRun bool
}

func newStarPrinter(w io.Writer, dryRun bool) *starPrinter {
	return &starPrinter{w: w, dryRun: dryRun}
}

func (p *starPrinter) OnStart(total int) {}

func (p *starPrinter) OnStarred(repo discovery.Repository, alreadyStarred bool, index, total int) {
	fmt.Fprintln(p.w, starLine(repo, alreadyStarred, p.dryRun))
}

func (p *starPrinter) OnComplete(summary reconcile.Summary) {
	fmt.Fprintln(p.w, completionLine(summary, p.dryRun))
}

// starLine renders "<status> <url>[ (already starred)] via <source>".
func starLine(repo discovery.Repository, alreadyStarred, dryRun bool) string {
	label := styleStarred.Render("⭐ Starred")
	switch {
	case alreadyStarred:
		label = styleAlready.Render("✅ Already starred")
	case dryRun:
		label = styleWouldStar.Render("⭐ Would star")
	}

	suffix := ""
	if alreadyStarred {
		suffix = " (already starred)"
	}
	via := repo.Via
	if via == "" {
		via = render.UnknownVia
	}
	return fmt.Sprintf("%s %s%s via %s", label, StyleLink.Render(repo.URL), suffix, StyleHighlight.Render(via))
}

// completionLine summarizes a run.
func completionLine(summary reconcile.Summary, dryRun bool) string {
	if summary.Len() == 0 {
		return StyleWarning.Render("🌱 No repositories required starring today.")
	}

	newly, already := summary.Newly(), summary.Already()
	repos := func(n int) string { return plural(n, "repository", "repositories") }

	var done, detail string
	if dryRun {
		done = styleWouldStar.Render("✨ Dry run complete!")
		switch {
		case newly > 0 && already > 0:
			detail = fmt.Sprintf("%d %s would be starred, %d already starred.", newly, repos(newly), already)
		case newly > 0:
			detail = fmt.Sprintf("%d %s would be starred.", newly, repos(newly))
		default:
			detail = fmt.Sprintf("All %d %s are already starred.", already, repos(already))
		}
	} else {
		done = styleStarred.Render("✨ Completed!")
		switch {
		case newly > 0 && already > 0:
			detail = fmt.Sprintf("Starred %d %s, %d already starred.", newly, repos(newly), already)
		case newly > 0:
			detail = fmt.Sprintf("Starred %d %s.", newly, repos(newly))
		default:
			detail = fmt.Sprintf("All %d %s were already starred.", already, repos(already))
		}
	}
	return done + " " + styleSummary.Render(detail)
}
