package integrations_test

import (
	"fmt"

	"github.com/matzehuels/thankstars/pkg/integrations"
)

func ExampleNormalizePkgName() {
	// Package names are normalized to lowercase with hyphens
	fmt.Println(integrations.NormalizePkgName("FastAPI"))
	fmt.Println(integrations.NormalizePkgName("my_package"))
	fmt.Println(integrations.NormalizePkgName("  Spaces  "))
	// Output:
	// fastapi
	// my-package
	// spaces
}

func ExampleNormalizeRepoURL() {
	// Various repository URL formats are normalized to HTTPS
	fmt.Println(integrations.NormalizeRepoURL("git@github.com:user/repo.git"))
	fmt.Println(integrations.NormalizeRepoURL("git://github.com/user/repo"))
	fmt.Println(integrations.NormalizeRepoURL("git+https://github.com/user/repo.git"))
	fmt.Println(integrations.NormalizeRepoURL("git+ssh://git@github.com/user/repo.git"))
	// Output:
	// https://github.com/user/repo
	// https://github.com/user/repo
	// https://github.com/user/repo
	// https://github.com/user/repo
}

func ExampleExtractRepoURL() {
	urls := map[string]string{
		"Documentation": "https://docs.example.com",
		"Source":        "https://github.com/psf/requests.git",
	}
	owner, repo, ok := integrations.ExtractRepoURL(integrations.GitHubURLPattern, urls, "")
	fmt.Println(owner, repo, ok)
	// Output:
	// psf requests true
}


func Example_errors() {
	// Standard errors for registry operations
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	// Output:
	// ErrNotFound: not found
	// ErrNetwork: network error
}
