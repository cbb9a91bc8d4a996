// Package rubygems provides an HTTP client for the RubyGems.org API.
//
// # Overview
//
// Gemfile.lock names GEM dependencies without saying where their source
// lives. The ruby discoverer looks each one up on RubyGems.org
// (https://rubygems.org) and reads source_code_uri, homepage_uri and
// bug_tracker_uri from the gem metadata.
//
// # Usage
//
//	client := rubygems.NewClient(backend, 24*time.Hour)
//	gem, err := client.FetchGem(ctx, "rails", false)
//	if err != nil {
//	    return err
//	}
//	for _, u := range gem.CandidateURLs() {
//	    fmt.Println(u)
//	}
package rubygems
