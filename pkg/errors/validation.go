package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a dependency name read from a manifest before
// it is joined into a filesystem path or a registry URL.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPackage, "package name cannot be absolute: %q", name)
	}

	return nil
}

// pythonPackageNameRegex matches valid Python package names (PEP 508).
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePythonPackageName validates a Python package name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %q", name)
	}

	return nil
}

// cratesPackageNameRegex matches valid crates.io package names.
var cratesPackageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCratesPackageName validates a crates.io package name.
func ValidateCratesPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !cratesPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid crates.io package name: %q", name)
	}

	return nil
}

// goModulePathRegex matches valid Go module paths.
var goModulePathRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._~/-]*$`)

// ValidateGoModulePath validates a Go module path.
func ValidateGoModulePath(path string) error {
	if err := ValidatePackageName(path); err != nil {
		return err
	}

	if !goModulePathRegex.MatchString(path) {
		return New(ErrCodeInvalidPackage, "invalid Go module path: %q", path)
	}

	return nil
}

// hackagePackageNameRegex matches Hackage package names (alphanumeric words joined by hyphens).
var hackagePackageNameRegex = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)

// ValidateHackagePackageName validates a Hackage package name.
func ValidateHackagePackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !hackagePackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Hackage package name: %q", name)
	}

	return nil
}
