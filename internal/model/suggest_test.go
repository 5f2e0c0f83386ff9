package model

import "testing"

func TestSuggestCategoryExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"tent", CategoryShelter},
		{"Quilt", CategorySleeping},
		{"  pack ", CategoryBackpack},
		{"spork", CategoryCooking},
		{"headlamp", CategoryElectronics},
		{"socks", CategoryClothing},
		{"snacks", CategoryFood},
		{"filter", CategoryWater},
		{"trowel", CategoryOther},
	}
	for _, tt := range tests {
		if got := SuggestCategory(tt.input); got != tt.want {
			t.Errorf("SuggestCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCategorySubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"DCF tarp", CategoryShelter},
		{"Stake set", CategoryShelter},
		{"Down quilt 20F", CategorySleeping},
		{"Backpack 40L", CategoryBackpack},
		{"Wind shell", CategoryClothing},
		{"Alcohol stove", CategoryCooking},
		{"Titanium mug 550ml", CategoryCooking},
		{"Freeze-dried dinner", CategoryFood},
		{"Soft bottle 1L", CategoryWater},
		{"Water filter", CategoryWater},
		{"Power bank 10000", CategoryElectronics},
	}
	for _, tt := range tests {
		if got := SuggestCategory(tt.input); got != tt.want {
			t.Errorf("SuggestCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCategoryFallback(t *testing.T) {
	for _, name := range []string{"", "   ", "Map and compass", "lucky charm"} {
		if got := SuggestCategory(name); got != CategoryOther {
			t.Errorf("SuggestCategory(%q) = %q, want other", name, got)
		}
	}
}

func TestSuggestCategoryIsKnown(t *testing.T) {
	for name, c := range exactCategory {
		if _, ok := ParseCategory(string(c)); !ok {
			t.Errorf("exact entry %q maps to unknown category %q", name, c)
		}
	}
	for _, e := range categoryKeywords {
		if _, ok := ParseCategory(string(e.category)); !ok {
			t.Errorf("keyword %q maps to unknown category %q", e.keyword, e.category)
		}
	}
}
