package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/thankstars/pkg/errors"
)

// FileToken returns the token stored in config.toml, ignoring the
// environment. It returns "" when the file or key is absent.
func (m *Manager) FileToken() (string, error) {
	raw, err := m.readRaw()
	if err != nil {
		return "", err
	}
	token, _ := raw["token"].(string)
	return token, nil
}

// SaveToken stores token in config.toml, keeping every other key. The file
// is written with mode 0600 and its directory with 0700.
func (m *Manager) SaveToken(token string) error {
	raw, err := m.readRaw()
	if err != nil {
		return err
	}
	raw["token"] = token
	return m.writeRaw(raw)
}

// ClearToken removes the token from config.toml. A missing file is not an
// error.
func (m *Manager) ClearToken() error {
	raw, err := m.readRaw()
	if err != nil {
		return err
	}
	if _, ok := raw["token"]; !ok {
		return nil
	}
	delete(raw, "token")
	return m.writeRaw(raw)
}

func (m *Manager) readRaw() (map[string]any, error) {
	raw := make(map[string]any)
	data, err := os.ReadFile(m.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "read %s", m.Path())
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "parse %s", m.Path())
	}
	return raw, nil
}

func (m *Manager) writeRaw(raw map[string]any) error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "create %s", m.dir)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "encode config")
	}

	tmp, err := os.CreateTemp(m.dir, ".config-*.toml")
	if err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "write %s", m.Path())
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeConfig, err, "write %s", m.Path())
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeConfig, err, "write %s", m.Path())
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "write %s", m.Path())
	}
	if err := os.Rename(tmp.Name(), filepath.Clean(m.Path())); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "write %s", m.Path())
	}
	return nil
}
