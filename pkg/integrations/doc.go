// Package integrations provides HTTP clients for package registry APIs and
// for the GitHub API.
//
// # Overview
//
// Ecosystem discoverers use the registry subpackages to map a dependency
// name to its source repository when the local manifest does not say:
//
//   - [npm]: npm registry
//   - [pypi]: Python Package Index
//   - [crates]: Rust crates.io
//   - [rubygems]: Ruby gems
//   - [packagist]: PHP Composer packages
//   - [maven]: Maven Central POMs
//   - [goproxy]: Go module proxy
//   - [pubdev]: Dart pub.dev
//   - [hackage]: Haskell Hackage
//   - [jsr]: JavaScript Registry (Deno)
//   - [github]: GitHub API for star queries, starring and device login
//
// # Client Pattern
//
// Registry clients share a byte cache and follow a consistent pattern:
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "react", false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry of transient failures
//   - Response caching through [cache.Cache] with a configurable TTL
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing used by every subpackage.
// [NormalizeRepoURL] and [ExtractRepoURL] turn the many spellings of a
// repository link into something the discovery parser accepts.
//
// [npm]: github.com/matzehuels/thankstars/pkg/integrations/npm
// [pypi]: github.com/matzehuels/thankstars/pkg/integrations/pypi
// [crates]: github.com/matzehuels/thankstars/pkg/integrations/crates
// [rubygems]: github.com/matzehuels/thankstars/pkg/integrations/rubygems
// [packagist]: github.com/matzehuels/thankstars/pkg/integrations/packagist
// [maven]: github.com/matzehuels/thankstars/pkg/integrations/maven
// [goproxy]: github.com/matzehuels/thankstars/pkg/integrations/goproxy
// [pubdev]: github.com/matzehuels/thankstars/pkg/integrations/pubdev
// [hackage]: github.com/matzehuels/thankstars/pkg/integrations/hackage
// [jsr]: github.com/matzehuels/thankstars/pkg/integrations/jsr
// [github]: github.com/matzehuels/thankstars/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/thankstars/pkg/cache.Cache
package integrations
