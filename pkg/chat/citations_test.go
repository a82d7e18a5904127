package chat

import (
	"reflect"
	"testing"
)

const (
	cid1 = "sGvgBXbBcVCjBIKCLS2Os"
	cid2 = "tHwhCYcCdWDkCJLDMT3Pt"
	cid3 = "uIxiDZdDeXElDKMENUaPu"
)

func TestExtractCitationIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "None",
			in:   "Plain text without markers.",
			want: nil,
		},
		{
			name: "Single",
			in:   "Acme owns Beta [[" + cid1 + "]].",
			want: []string{cid1},
		},
		{
			name: "OrderPreserved",
			in:   "See [[" + cid2 + "]] then [[" + cid1 + "]].",
			want: []string{cid2, cid1},
		},
		{
			name: "Deduplicated",
			in:   "[[" + cid1 + "]] again [[" + cid2 + "]] and [[" + cid1 + "]]",
			want: []string{cid1, cid2},
		},
		{
			name: "SingleBracketRepaired",
			in:   "Mangled marker [" + cid1 + "] here.",
			want: []string{cid1},
		},
		{
			name: "BoldWrappedRepaired",
			in:   "Bold **[[" + cid1 + "]]** and **[" + cid2 + "]**",
			want: []string{cid1, cid2},
		},
		{
			name: "MarkdownLinkIgnored",
			in:   "A [link](http://example.com) and [[" + cid3 + "]]",
			want: []string{cid3},
		},
		{
			name: "EmptyMarkerIgnored",
			in:   "Broken [[]] marker",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractCitationIDs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractCitationIDs(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeCitationMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "AlreadyOK",
			in:   "Already OK: [[" + cid1 + "]]",
			want: "Already OK: [[" + cid1 + "]]",
		},
		{
			name: "SingleBracket",
			in:   "Single: [" + cid1 + "]",
			want: "Single: [[" + cid1 + "]]",
		},
		{
			name: "BoldSingle",
			in:   "Bold single: **[" + cid1 + "]**",
			want: "Bold single: [[" + cid1 + "]]",
		},
		{
			name: "BoldDouble",
			in:   "Bold double: **[[" + cid1 + "]]**",
			want: "Bold double: [[" + cid1 + "]]",
		},
		{
			name: "LinkSkipped",
			in:   "Link: [text](http://example.com) and [" + cid1 + "]",
			want: "Link: [text](http://example.com) and [[" + cid1 + "]]",
		},
		{
			name: "DedupWhitespace",
			in:   "Dupes: [[" + cid1 + "]] [[" + cid1 + "]] then text",
			want: "Dupes: [[" + cid1 + "]] then text",
		},
		{
			name: "DedupTight",
			in:   "Tight: [[" + cid1 + "]][[" + cid1 + "]] next",
			want: "Tight: [[" + cid1 + "]] next",
		},
		{
			name: "DedupAcrossLines",
			in:   "Across lines:\n[[" + cid1 + "]]\n[[" + cid1 + "]] next",
			want: "Across lines:\n[[" + cid1 + "]] next",
		},
		{
			name: "NoDedupAcrossPunctuation",
			in:   "Comma separated: [[" + cid1 + "]], [[" + cid1 + "]]",
			want: "Comma separated: [[" + cid1 + "]], [[" + cid1 + "]]",
		},
		{
			name: "NoDedupDistinctIDs",
			in:   "[[" + cid1 + "]] [[" + cid2 + "]]",
			want: "[[" + cid1 + "]] [[" + cid2 + "]]",
		},
		{
			name: "NestedSingleBracketKept",
			in:   "Keep nested: [a[b]c]",
			want: "Keep nested: [a[b]c]",
		},
		{
			name: "DanglingBracket",
			in:   "Dangling: [" + cid1,
			want: "Dangling: [" + cid1,
		},
		{
			name: "RunOfDuplicates",
			in:   "Run: [[" + cid1 + "]]  \t [[" + cid1 + "]]   [[" + cid1 + "]] end",
			want: "Run: [[" + cid1 + "]] end",
		},
		{
			name: "Mixed",
			in:   "Mixed: [" + cid1 + "] and [[" + cid2 + "]] and **[" + cid3 + "]** and [[" + cid3 + "]] [[" + cid3 + "]]",
			want: "Mixed: [[" + cid1 + "]] and [[" + cid2 + "]] and [[" + cid3 + "]] and [[" + cid3 + "]]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeCitationMarkers(tc.in)
			if got != tc.want {
				t.Fatalf("normalizeCitationMarkers(%q)\nwant: %q\ngot:  %q", tc.in, tc.want, got)
			}
			twice := normalizeCitationMarkers(got)
			if twice != got {
				t.Fatalf("normalizeCitationMarkers not idempotent for %q:\nfirst:  %q\nsecond: %q", tc.in, got, twice)
			}
		})
	}
}
