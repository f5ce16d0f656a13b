package model

import "testing"

func TestParseTitle_Shapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in          string
		category    string
		subCategory string
		title       string
	}{
		{"Standup", "", "", "Standup"},
		{"Work - Standup", "Work", "", "Standup"},
		{"Work - Standup - Daily sync", "Work", "Standup", "Daily sync"},
		{"Work - Standup - Daily - sync", "Work", "Standup", "Daily - sync"},
		{"no-delimiter-here", "", "", "no-delimiter-here"},
	}

	for _, tc := range cases {
		got := ParseTitle(tc.in)
		if got.Category != tc.category || got.SubCategory != tc.subCategory || got.Title != tc.title {
			t.Fatalf("ParseTitle(%q) = %+v, want {%q %q %q}", tc.in, got, tc.category, tc.subCategory, tc.title)
		}
	}
}

func TestParseSubcategoryTitle(t *testing.T) {
	t.Parallel()

	got := ParseSubcategoryTitle("Standup - Daily sync")
	if got.Category != "" || got.SubCategory != "Standup" || got.Title != "Daily sync" {
		t.Fatalf("unexpected decomposition: %+v", got)
	}

	got = ParseSubcategoryTitle("Daily sync")
	if got.SubCategory != "" || got.Title != "Daily sync" {
		t.Fatalf("unexpected decomposition: %+v", got)
	}

	got = ParseSubcategoryTitle("Standup - Daily - sync")
	if got.SubCategory != "Standup" || got.Title != "Daily - sync" {
		t.Fatalf("unexpected decomposition: %+v", got)
	}
}

func TestConstructTitle_RoundTrip(t *testing.T) {
	t.Parallel()

	triples := []struct {
		category    string
		subCategory string
		title       string
	}{
		{"", "", "Standup"},
		{"Work", "", "Standup"},
		{"Work", "Meetings", "Standup"},
		{"Home", "Chores", "Take out the trash"},
	}

	for _, tr := range triples {
		s := ConstructTitle(tr.category, tr.subCategory, tr.title)
		got := ParseTitle(s)
		if got.Category != tr.category || got.SubCategory != tr.subCategory || got.Title != tr.title {
			t.Fatalf("round trip of (%q,%q,%q) via %q gave %+v", tr.category, tr.subCategory, tr.title, s, got)
		}
	}
}

func TestConstructTitle_Joins(t *testing.T) {
	t.Parallel()

	if got := ConstructTitle("Work", "", "Standup"); got != "Work - Standup" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := ConstructTitle("", "", "Standup"); got != "Standup" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := ConstructTitle("Work", "Meetings", "Standup"); got != "Work - Meetings - Standup" {
		t.Fatalf("unexpected title: %q", got)
	}
}
