// Package deps turns project manifests and lockfiles into GitHub repository
// references, one discoverer per package manager.
//
// # Overview
//
// Each ecosystem lives in its own subpackage and exports an [Ecosystem]
// value. The subpackages read local files first and consult a package
// registry (through [integrations]) only for dependencies whose source
// repository the local files do not name:
//
//   - node: package.json, installed node_modules, npm registry
//   - deno: deno.lock and deno.json, JSR package pages
//   - cargo: cargo metadata, falling back to Cargo.toml and crates.io
//   - golang: go.mod, Go module proxy
//   - dart: pubspec.yaml, pub.dev
//   - composer: composer.lock, falling back to composer.json and Packagist
//   - ruby: Gemfile.lock, RubyGems
//   - python: uv.lock or requirements.txt, installed metadata, PyPI
//   - gradle: gradle.lockfile and build scripts
//   - maven: pom.xml modules, Maven Central
//   - renv: renv.lock
//   - haskell: package.yaml and *.cabal, Hackage
//
// The ecosystems package collects them all and builds a
// [discovery.Registry].
//
// # Registry Lookups
//
// [Lookup] runs registry requests with bounded concurrency and keeps the
// result order deterministic. A dependency the registry does not know is
// skipped; any other failure aborts that ecosystem with a
// [discovery.LookupError].
//
// # Options
//
// [Options] controls lookups:
//
//   - Cache: shared response cache (memory, file or Redis)
//   - CacheTTL: how long registry answers are reused (default 24h)
//   - Refresh: bypass the cache
//   - Workers: concurrent lookups per ecosystem (default 8)
//   - Logger: debug output
//
// [integrations]: github.com/matzehuels/thankstars/pkg/integrations
package deps
