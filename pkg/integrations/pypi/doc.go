// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// The python discoverer prefers metadata from an installed virtualenv. For
// dependencies that are not installed it asks PyPI (https://pypi.org) for
// the project's URLs.
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "requests", false)  // false = use cache
//	if err != nil {
//	    return err
//	}
//	owner, repo, ok := pkg.GitHubRepo()
//
// # Name Normalization
//
// Names are normalized per PEP 503 before lookup, so "Flask_Login" and
// "flask-login" share one cache entry.
package pypi
