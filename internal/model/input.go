package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dukerupert/ulpack/internal/apperror"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxItemNameLength    = 120

	// Upper bounds keep weight × quantity and list totals well inside int64.
	MaxWeightGrams = 1_000_000
	MaxQuantity    = 10_000
)

// clean trims surrounding whitespace and normalizes to NFC so that length
// limits count what the user sees rather than combining sequences.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ListInput carries the user-editable fields of a packing list.
type ListInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Normalize returns a copy with cleaned strings.
func (in ListInput) Normalize() ListInput {
	return ListInput{Title: clean(in.Title), Description: clean(in.Description)}
}

// Validate expects a normalized input.
func (in ListInput) Validate() error {
	fields := apperror.FieldErrors{}
	if in.Title == "" {
		return apperror.Validation("Title is required", apperror.FieldErrors{"title": "required"})
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		fields["title"] = fmt.Sprintf("must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		fields["description"] = fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)
	}
	if len(fields) > 0 {
		return apperror.Validation("Invalid list", fields)
	}
	return nil
}

// GearItemInput is the full set of mutable gear item fields. Category and
// Kind are kept as raw strings until Validate so that unknown values are
// reported instead of silently mapped.
type GearItemInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	WeightGrams int    `json:"weight_grams"`
	Quantity    int    `json:"quantity"`
	Kind        string `json:"kind"`
	Notes       string `json:"notes"`
}

// Normalize cleans strings and fills defaults for omitted fields: the
// category is suggested from the name and the kind defaults to base.
// A zero quantity is left alone so Validate can reject it.
func (in GearItemInput) Normalize() GearItemInput {
	out := GearItemInput{
		Name:        clean(in.Name),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		WeightGrams: in.WeightGrams,
		Quantity:    in.Quantity,
		Kind:        strings.ToLower(strings.TrimSpace(in.Kind)),
		Notes:       clean(in.Notes),
	}
	if out.Category == "" {
		out.Category = string(SuggestCategory(out.Name))
	}
	if out.Kind == "" {
		out.Kind = string(KindBase)
	}
	return out
}

// Validate expects a normalized input.
func (in GearItemInput) Validate() error {
	fields := apperror.FieldErrors{}
	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		fields["name"] = "required"
	case n > MaxItemNameLength:
		fields["name"] = fmt.Sprintf("must be at most %d characters", MaxItemNameLength)
	}
	if _, ok := ParseCategory(in.Category); !ok {
		fields["category"] = "unknown category"
	}
	if _, ok := ParseKind(in.Kind); !ok {
		fields["kind"] = "must be one of base, consumable, worn"
	}
	switch {
	case in.WeightGrams < 1:
		fields["weight_grams"] = "must be at least 1"
	case in.WeightGrams > MaxWeightGrams:
		fields["weight_grams"] = fmt.Sprintf("must be at most %d", MaxWeightGrams)
	}
	switch {
	case in.Quantity < 1:
		fields["quantity"] = "must be at least 1"
	case in.Quantity > MaxQuantity:
		fields["quantity"] = fmt.Sprintf("must be at most %d", MaxQuantity)
	}
	if len(fields) > 0 {
		return apperror.Validation("Invalid gear item", fields)
	}
	return nil
}

// Item builds the gear item described by a normalized, validated input.
func (in GearItemInput) Item(listID string) GearItem {
	category, _ := ParseCategory(in.Category)
	kind, _ := ParseKind(in.Kind)
	return GearItem{
		ListID:      listID,
		Name:        in.Name,
		Category:    category,
		WeightGrams: in.WeightGrams,
		Quantity:    in.Quantity,
		Kind:        kind,
		Notes:       in.Notes,
	}
}
