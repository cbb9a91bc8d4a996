// Package ecosystems provides the complete list of supported package
// ecosystems.
//
// This package exists to break import cycles: the individual ecosystem
// packages (node, cargo, etc.) import pkg/deps, so pkg/deps cannot import
// them back. Consumers that need every discoverer import this package.
package ecosystems

import (
	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/deps/cargo"
	"github.com/matzehuels/thankstars/pkg/deps/composer"
	"github.com/matzehuels/thankstars/pkg/deps/dart"
	"github.com/matzehuels/thankstars/pkg/deps/deno"
	"github.com/matzehuels/thankstars/pkg/deps/golang"
	"github.com/matzehuels/thankstars/pkg/deps/gradle"
	"github.com/matzehuels/thankstars/pkg/deps/haskell"
	"github.com/matzehuels/thankstars/pkg/deps/maven"
	"github.com/matzehuels/thankstars/pkg/deps/node"
	"github.com/matzehuels/thankstars/pkg/deps/python"
	"github.com/matzehuels/thankstars/pkg/deps/renv"
	"github.com/matzehuels/thankstars/pkg/deps/ruby"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

// All is the canonical list of supported ecosystems, in detection order.
var All = []*deps.Ecosystem{
	node.Ecosystem,
	deno.Ecosystem,
	cargo.Ecosystem,
	golang.Ecosystem,
	dart.Ecosystem,
	composer.Ecosystem,
	ruby.Ecosystem,
	python.Ecosystem,
	gradle.Ecosystem,
	maven.Ecosystem,
	renv.Ecosystem,
	haskell.Ecosystem,
}

// Find returns the ecosystem serving f, or nil.
func Find(f discovery.Framework) *deps.Ecosystem {
	for _, e := range All {
		if e.Framework == f {
			return e
		}
	}
	return nil
}

// NewRegistry returns a registry with a discoverer for every ecosystem.
func NewRegistry(opts deps.Options) *discovery.Registry {
	reg := discovery.NewRegistry()
	deps.Register(reg, opts, All...)
	return reg
}
