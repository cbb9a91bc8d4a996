package github

import (
	"fmt"
	"regexp"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner is required")
	}
	if !validOwner.MatchString(owner) {
		return fmt.Errorf("invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("repo is required")
	}
	if repo == "." || repo == ".." || !validRepo.MatchString(repo) {
		return fmt.Errorf("invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters before they are
// placed in a request path.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
