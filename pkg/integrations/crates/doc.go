// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// The cargo discoverer normally reads repository links from
// `cargo metadata`. When cargo is not installed it falls back to the
// dependency names in Cargo.toml and resolves each through crates.io
// (https://crates.io) with this client.
//
// # Usage
//
//	client := crates.NewClient(backend, 24*time.Hour)
//	crate, err := client.FetchCrate(ctx, "serde", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(crate.Repository)
//
// # Rate Limiting
//
// crates.io asks API users to send an identifying User-Agent and to stay
// below one request per second. Responses are cached to keep repeat runs
// well under that.
package crates
