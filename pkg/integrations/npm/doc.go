// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// The node discoverer reads repository links from node_modules first. When a
// dependency is not installed, this client asks the registry
// (https://registry.npmjs.org) for the package document instead.
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "express", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pkg.Repository)
//
// # Version Selection
//
// The client reads the version tagged "latest" in dist-tags and falls back to
// the top-level repository and homepage fields.
package npm
