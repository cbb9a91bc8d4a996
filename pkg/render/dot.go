package render

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/thankstars/pkg/discovery"
)

// UnknownVia labels repositories without provenance.
const UnknownVia = "unknown source"

// Options configures provenance graph generation.
type Options struct {
	// ShowURLs labels repository nodes with their URL instead of owner/name.
	ShowURLs bool
	// Starred marks repositories (by Key) to draw filled.
	Starred map[string]bool
}

// ToDOT converts discovered repositories to Graphviz DOT. Sources and
// repositories appear in first-seen order so output is stable for a given
// input.
func ToDOT(root string, repos []discovery.Repository, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph thankstars {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	project := "project:" + root
	fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=\"#fde68a\"];\n", project, projectLabel(root))

	seen := make(map[string]bool)
	for _, r := range repos {
		via := viaLabel(r.Via)
		source := "via:" + via
		if !seen[source] {
			seen[source] = true
			fmt.Fprintf(&buf, "  %q [label=%q, shape=note, fillcolor=\"#e0f2fe\"];\n", source, via)
			fmt.Fprintf(&buf, "  %q -> %q;\n", project, source)
		}

		node := "repo:" + r.Key()
		if !seen[node] {
			seen[node] = true
			label := r.Key()
			if opts.ShowURLs {
				label = r.URL
			}
			attrs := fmt.Sprintf("label=%q, URL=%q", label, r.URL)
			if opts.Starred[r.Key()] {
				attrs += ", fillcolor=\"#fef08a\""
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", node, attrs)
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", source, node)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func viaLabel(via string) string {
	if via == "" {
		return UnknownVia
	}
	return via
}

func projectLabel(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if base := filepath.Base(root); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return root
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
