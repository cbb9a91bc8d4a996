// Package goproxy provides an HTTP client for the Go module proxy.
//
// # Overview
//
// Modules hosted under github.com name their repository directly. Other
// module paths (gopkg.in, vanity domains) are resolved through the proxy
// (https://proxy.golang.org), whose .info responses carry an Origin block
// with the upstream VCS URL.
//
// # Usage
//
//	client := goproxy.NewClient(backend, 24*time.Hour)
//	mod, err := client.FetchModule(ctx, "gopkg.in/yaml.v3", "v3.0.1", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(mod.Repository) // https://github.com/go-yaml/yaml
//
// # Path Escaping
//
// Uppercase letters in module paths and versions are escaped as "!" plus
// the lowercase letter, as the proxy protocol requires.
package goproxy
