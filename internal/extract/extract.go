// Package extract provides pure text-analysis helpers over post and
// comment bodies.
package extract

import "regexp"

var (
	mentionPattern = regexp.MustCompile(`r/([A-Za-z0-9_]+)`)
	linkPattern    = regexp.MustCompile(`(?i)(https?://[^\s]+)|(www\.[^\s]+)`)
)

// Mentions returns every subreddit name referenced as r/<name> in the text.
// Duplicates are collapsed; first-appearance order is preserved.
func Mentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Links returns every http(s):// or www.-prefixed token in the text, up to
// the next whitespace. Order of appearance is preserved and duplicates are
// kept; dedup happens later against the visited set.
func Links(text string) []string {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}
