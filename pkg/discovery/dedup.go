package discovery

// Dedup removes repeated repositories, keeping the first occurrence of each
// (owner, name) pair and its Via label. The input is not modified.
func Dedup(repos []Repository) []Repository {
	if len(repos) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(repos))
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
