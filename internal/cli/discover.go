package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thankstars/pkg/discovery"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/pipeline"
	"github.com/matzehuels/thankstars/pkg/render"
)

// Output formats of the discover command.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// discoverCommand creates the discover command: detection and discovery
// without any GitHub calls, so it works without a token.
func (c *CLI) discoverCommand() *cobra.Command {
	var (
		path    string
		only    []string
		format  string
		output  string
		refresh bool
		urls    bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the GitHub repositories behind the project's dependencies",
		Long: `Discover dependencies and print the GitHub repositories they resolve to,
with the file or registry that produced each one. Nothing is starred and no
token is needed.

Formats: text (default), json, dot (Graphviz) and svg (provenance graph).`,
		Example: `  thankstars discover
  thankstars discover --only node,go --format json
  thankstars discover --format svg -o deps.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frameworks, err := parseFrameworks(only)
			if err != nil {
				return err
			}
			_, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			sess, err := c.newSession(ctx, cfg, nil, refresh)
			if err != nil {
				return err
			}
			defer sess.Close()

			spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Discovering dependencies...")
			spinner.Start()
			d, err := sess.Runner.Discover(ctx, path, frameworks)
			spinner.Stop()
			if err != nil {
				return err
			}

			data, err := formatDiscovery(cmd, d, format, render.Options{ShowURLs: urls})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "write %s", output)
			}
			printSuccess(cmd.ErrOrStderr(), "Wrote %d %s", len(d.Repositories), plural(len(d.Repositories), "repository", "repositories"))
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "project root (default: current directory)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "limit discovery to these package managers")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached registry lookups")
	cmd.Flags().BoolVar(&urls, "urls", false, "label graph nodes with repository URLs (dot, svg)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatText, formatJSON, formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func formatDiscovery(cmd *cobra.Command, d *pipeline.Discovery, format string, opts render.Options) ([]byte, error) {
	switch format {
	case formatText:
		var buf bytes.Buffer
		writeDiscoveryText(&buf, d)
		return buf.Bytes(), nil
	case formatJSON:
		return discoveryJSON(d)
	case formatDOT:
		return []byte(render.ToDOT(d.Root, d.Repositories, opts)), nil
	case formatSVG:
		svg, err := render.RenderSVG(cmd.Context(), render.ToDOT(d.Root, d.Repositories, opts))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want text, json, dot or svg)", format)
	}
}

func writeDiscoveryText(w io.Writer, d *pipeline.Discovery) {
	if len(d.Repositories) == 0 {
		fmt.Fprintln(w, StyleWarning.Render("No GitHub repositories found."))
		return
	}
	for _, r := range d.Repositories {
		via := r.Via
		if via == "" {
			via = render.UnknownVia
		}
		fmt.Fprintf(w, "%s via %s\n", StyleLink.Render(r.URL), StyleHighlight.Render(via))
	}
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d %s from %s",
		len(d.Repositories), plural(len(d.Repositories), "repository", "repositories"), joinFrameworks(d.Frameworks))))
}

type discoveryOutput struct {
	Root         string                 `json:"root"`
	Frameworks   []discovery.Framework  `json:"frameworks"`
	Repositories []discovery.Repository `json:"repositories"`
}

func discoveryJSON(d *pipeline.Discovery) ([]byte, error) {
	out := discoveryOutput{
		Root:         d.Root,
		Frameworks:   d.Frameworks,
		Repositories: d.Repositories,
	}
	if out.Repositories == nil {
		out.Repositories = []discovery.Repository{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func joinFrameworks(frameworks []discovery.Framework) string {
	var b bytes.Buffer
	for i, f := range frameworks {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}
