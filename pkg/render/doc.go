// Package render draws where discovered repositories came from.
//
// The provenance graph has three ranks: the project root, the manifests
// and registries that produced references (the "via" labels), and the
// GitHub repositories themselves.
//
//	dot := render.ToDOT(root, repos, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with external Graphviz
// tools. SVG and PNG rendering runs in-process through
// [github.com/goccy/go-graphviz].
package render
