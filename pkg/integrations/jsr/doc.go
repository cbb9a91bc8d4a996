// Package jsr provides a client for the JavaScript Registry (https://jsr.io).
//
// JSR exposes no JSON API for a package's source repository, so the client
// reads the package page and picks the link labelled "GitHub repository".
// [ParseSpecifier] and [NormalizeName] turn the "jsr:" specifiers found in
// deno.json and deno.lock into package names.
package jsr
