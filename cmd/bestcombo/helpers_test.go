package main

import (
	"slices"
	"strings"
	"testing"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trims", []string{" Bundesliga ", "DFB Pokal"}, []string{"Bundesliga", "DFB Pokal"}},
		{"drops blanks", []string{"", "  ", "Bayern München"}, []string{"Bayern München"}},
		{"drops duplicates", []string{"A", "B", "A "}, []string{"A", "B"}},
		{"case-sensitive", []string{"bayern", "Bayern"}, []string{"bayern", "Bayern"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseItems(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("parseItems(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Bundesliga", 20); got != "Bundesliga" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("Borussia Mönchengladbach", 10); got != "Borussi..." {
		t.Errorf("truncate = %q", got)
	}
}

func TestFilterNames(t *testing.T) {
	names := []string{"FC Bayern München", "Borussia Dortmund", "Bayer 04 Leverkusen"}

	got := filterNames(names, "bay")
	want := []string{"Bayer 04 Leverkusen", "FC Bayern München"}
	if !slices.Equal(got, want) {
		t.Errorf("filterNames = %q, want %q", got, want)
	}
	if got := filterNames(names, ""); len(got) != 3 || got[0] != "Bayer 04 Leverkusen" {
		t.Errorf("empty filter should return all names sorted, got %q", got)
	}
}

func TestReadSelections(t *testing.T) {
	input := strings.Join([]string{
		"# weekend",
		"Bundesliga, DFB Pokal",
		"",
		"Bayern München,,Bayern München",
	}, "\n")

	sets, err := readSelections(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readSelections: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2: %q", len(sets), sets)
	}
	if !slices.Equal(sets[0], []string{"Bundesliga", "DFB Pokal"}) {
		t.Errorf("sets[0] = %q", sets[0])
	}
	if !slices.Equal(sets[1], []string{"Bayern München"}) {
		t.Errorf("sets[1] = %q", sets[1])
	}
}
