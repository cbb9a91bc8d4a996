// Package hackage provides an HTTP client for Hackage, the Haskell package
// repository.
//
// Hackage has no JSON metadata endpoint for project links, so the client
// downloads the package's .cabal description and reads the homepage,
// bug-reports and source-repository location fields.
package hackage
