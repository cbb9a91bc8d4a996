package python

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// sitePackages lists the site-packages directories of project-local
// virtualenvs.
type sitePackages []string

// findSitePackages looks for .venv, venv and any directory containing
// pyvenv.cfg directly under root.
func findSitePackages(root string) sitePackages {
	var envs []string
	for _, name := range []string{".venv", "venv"} {
		if isDir(filepath.Join(root, name)) {
			envs = append(envs, filepath.Join(root, name))
		}
	}
	if entries, err := os.ReadDir(root); err == nil {
		for _, e := range entries {
			path := filepath.Join(root, e.Name())
			if e.IsDir() && !slices.Contains(envs, path) && exists(filepath.Join(path, "pyvenv.cfg")) {
				envs = append(envs, path)
			}
		}
	}

	var sites sitePackages
	for _, env := range envs {
		libs, _ := filepath.Glob(filepath.Join(env, "lib", "python*", "site-packages"))
		for _, lib := range libs {
			if isDir(lib) {
				sites = append(sites, lib)
			}
		}
		if win := filepath.Join(env, "Lib", "site-packages"); isDir(win) {
			sites = append(sites, win)
		}
	}
	return sites
}

// metadataURLs returns the Home-page and Project-URL values from the
// installed metadata of pkg (*.dist-info/METADATA or *.egg-info/PKG-INFO),
// or nil if pkg is not installed.
func (s sitePackages) metadataURLs(pkg string) []string {
	want := normalize(pkg)
	for _, site := range s {
		entries, err := os.ReadDir(site)
		if err != nil {
			continue
		}
		for _, e := range entries {
			file := metadataFile(e.Name())
			if file == "" {
				continue
			}
			stem := normalize(strings.TrimSuffix(strings.TrimSuffix(e.Name(), ".dist-info"), ".egg-info"))
			if stem != want && !strings.HasPrefix(stem, want+"-") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(site, e.Name(), file))
			if err != nil {
				continue
			}
			if urls := parseMetadataURLs(data); len(urls) > 0 {
				return urls
			}
		}
	}
	return nil
}

func metadataFile(dir string) string {
	switch {
	case strings.HasSuffix(dir, ".dist-info"):
		return "METADATA"
	case strings.HasSuffix(dir, ".egg-info"):
		return "PKG-INFO"
	}
	return ""
}

// parseMetadataURLs extracts URLs from "Home-page:" and
// "Project-URL: Label, https://..." headers, in file order.
func parseMetadataURLs(data []byte) []string {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Home-page:") && !strings.HasPrefix(line, "Project-URL:") {
			continue
		}
		if i := strings.Index(line, "http"); i >= 0 {
			urls = append(urls, strings.TrimSpace(line[i:]))
		}
	}
	return urls
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
