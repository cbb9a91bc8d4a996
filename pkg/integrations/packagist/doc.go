// Package packagist provides an HTTP client for the Packagist API.
//
// # Overview
//
// Projects with a composer.lock already carry source URLs. Projects that
// only ship composer.json are resolved through Packagist
// (https://repo.packagist.org), using the p2 metadata endpoint.
//
// # Usage
//
//	client := packagist.NewClient(backend, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "symfony/console", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pkg.Repository)
//
// # Minified Metadata
//
// p2 responses list versions newest first and only repeat fields that
// changed. The client expands them before picking the latest stable release.
package packagist
