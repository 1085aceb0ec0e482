package models

// UniqueEmails drops entries whose identifier was already seen, keeping order
func UniqueEmails(in []Email) []Email {
	return uniqueBy(in, func(e Email) string { return e.ID })
}

// UniquePrompts drops entries whose identifier was already seen, keeping order
func UniquePrompts(in []Prompt) []Prompt {
	return uniqueBy(in, func(p Prompt) string { return p.ID })
}

// UniqueDrafts drops entries whose identifier was already seen, keeping order
func UniqueDrafts(in []Draft) []Draft {
	return uniqueBy(in, func(d Draft) string { return d.ID })
}

func uniqueBy[T any](in []T, key func(T) string) []T {
	out := make([]T, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
