// Package github provides an HTTP client for the parts of the GitHub API
// thankstars needs.
//
// # Overview
//
// [Client.ViewerHasStarred] asks the GraphQL API whether the token's user
// has already starred a repository, [Client.Star] stars it through the REST
// API, and [Client.Viewer] identifies the token's user for `auth status`.
//
// # Usage
//
//	client := github.NewClient(token)
//	starred, err := client.ViewerHasStarred(ctx, "spf13", "cobra")
//	if err != nil {
//	    return err
//	}
//	if !starred {
//	    err = client.Star(ctx, "spf13", "cobra")
//	}
//
// # Errors
//
// Non-success responses, including GraphQL "errors" arrays, surface as
// [*APIError] carrying the status and raw body. Server errors and network
// failures are retried with exponential backoff before giving up.
//
// # Device Login
//
// [OAuthClient] implements the OAuth device flow: request a code, show the
// user the verification URL, then poll until the token is issued.
package github
