package chat

import "regexp"

var citationIDPattern = regexp.MustCompile(`\[\[([^][]+)\]\]`)

// ExtractCitationIDs collects the distinct [[id]] reference markers
// embedded in an agent response, in first-occurrence order. It is used
// when a terminal done event carries no explicit citation list. Marker
// syntax is repaired on a copy first, so mangled markers still yield
// their ids without the message text changing.
func ExtractCitationIDs(text string) []string {
	matches := citationIDPattern.FindAllStringSubmatch(normalizeCitationMarkers(text), -1)
	ids := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}

		id := match[1]
		if id == "" {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil
	}
	return ids
}
