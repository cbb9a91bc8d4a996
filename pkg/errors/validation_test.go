package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "requests", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid with dot", "my.package", false},
		{"valid scoped npm", "@scope/package", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"absolute", "/etc/passwd", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePythonPackageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"requests", false},
		{"Flask-Login", false},
		{"zope.interface", false},
		{"a", false},
		{"-leading", true},
		{"trailing-", true},
		{"has space", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidatePythonPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePythonPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCratesPackageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"serde", false},
		{"serde_json", false},
		{"tokio-util", false},
		{"1password", true},
		{"bad.name", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateCratesPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCratesPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGoModulePath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"github.com/spf13/cobra", false},
		{"gopkg.in/yaml.v3", false},
		{"golang.org/x/mod", false},
		{"github.com/../evil", true},
		{"has space/mod", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGoModulePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoModulePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHackagePackageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"aeson", false},
		{"http-client", false},
		{"base64-bytestring", false},
		{"bad_name", true},
		{"-lead", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateHackagePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHackagePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
