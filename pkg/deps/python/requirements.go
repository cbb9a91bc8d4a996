package python

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
)

// parseRequirements returns the sorted package names of a requirements
// file. Options (-r, -e, --index-url) and blank lines are skipped.
func parseRequirements(data []byte) []string {
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if name, ok := requirementName(scanner.Text()); ok {
			names[name] = struct{}{}
		}
	}
	return deps.SortedKeys(names)
}

// requirementName extracts the distribution name from a requirement line
// such as "requests[socks]>=2.31 ; python_version>'3.8'  # http".
func requirementName(line string) (string, bool) {
	line, _, _ = strings.Cut(line, "#")
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "-") {
		return "", false
	}
	token := fields[0]
	if i := strings.IndexAny(token, "[=<>!~;@"); i >= 0 {
		token = token[:i]
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, "/") || strings.Contains(token, ":") {
		return "", false
	}
	return token, true
}

// normalize applies the loose name matching used for installed metadata
// directories: case-insensitive, "_" and "." equivalent to "-".
func normalize(name string) string {
	return strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(name))
}
