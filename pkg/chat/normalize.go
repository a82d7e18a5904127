package chat

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reBoldWrappedMarker = regexp.MustCompile(`\*\*\s*\[\[([^][]+)\]\]\s*\*\*`)
	reBoldSingleMarker  = regexp.MustCompile(`\*\*\s*\[([^][]+)\]\s*\*\*`)
	reMarker            = regexp.MustCompile(`\[\[([^][]+)\]\]`)
	reMarkerGap         = regexp.MustCompile(`\]\][\t ]+\[\[`)
)

// normalizeCitationMarkers repairs the marker syntax a model tends to
// mangle while streaming: bold-wrapped markers, single-bracket markers,
// and the same marker repeated back to back. It operates on a copy for
// extraction only; finalized message text is never rewritten.
func normalizeCitationMarkers(s string) string {
	s = reBoldWrappedMarker.ReplaceAllString(s, "[[$1]]")
	s = reBoldSingleMarker.ReplaceAllString(s, "[$1]")

	s = upgradeSingleBrackets(s)
	s = collapseRepeatedMarkers(s)

	s = reMarkerGap.ReplaceAllString(s, "]] [[")

	return s
}

// upgradeSingleBrackets rewrites [id] to [[id]] while leaving markdown
// links [text](url) and nested bracket runs untouched.
func upgradeSingleBrackets(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '[' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '[' {
			b.WriteString("[[")
			i += 2
			continue
		}
		j := i + 1
		nested := false
		for j < len(s) && s[j] != ']' {
			if s[j] == '[' {
				nested = true
			}
			j++
		}
		if j >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}

		if j+1 < len(s) && s[j+1] == '(' {
			b.WriteString(s[i : j+1])
			i = j + 1
			continue
		}
		if nested {
			b.WriteString(s[i : j+1])
			i = j + 1
			continue
		}
		b.WriteString("[[")
		b.WriteString(s[i+1 : j])
		b.WriteString("]]")
		i = j + 1
	}
	return b.String()
}

// collapseRepeatedMarkers drops consecutive copies of the same marker
// separated only by whitespace. Duplicates across a punctuation gap are
// kept, and a line break only counts as adjacency when the run itself
// started a line.
func collapseRepeatedMarkers(s string) string {
	matches := reMarker.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	cursor := 0

	for mi := 0; mi < len(matches); mi++ {
		m := matches[mi]
		start, end := m[0], m[1]
		id := s[m[2]:m[3]]

		b.WriteString(s[cursor:start])

		runEnd := end
		next := mi + 1
		startsLine := atLineStart(s, start)

		for next < len(matches) {
			gap := s[runEnd:matches[next][0]]
			if !whitespaceOnly(gap) {
				break
			}
			if hasLineBreak(gap) && !startsLine {
				break
			}
			if s[matches[next][2]:matches[next][3]] != id {
				break
			}
			runEnd = matches[next][1]
			next++
		}

		b.WriteString(s[start:end])

		cursor = runEnd
		mi = next - 1
	}

	if cursor < len(s) {
		b.WriteString(s[cursor:])
	}
	return b.String()
}

func whitespaceOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\n\r")
}

func atLineStart(s string, idx int) bool {
	if idx <= 0 {
		return true
	}
	return s[idx-1] == '\n' || s[idx-1] == '\r'
}
