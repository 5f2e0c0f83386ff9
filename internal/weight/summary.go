// Package weight computes packing list weight totals and renders them in the
// list's display unit.
package weight

import "github.com/dukerupert/ulpack/internal/model"

// Summary holds per-kind totals in grams. TotalPackG is always the sum of
// the three buckets.
type Summary struct {
	BaseWeightG       int `json:"base_weight_g"`
	ConsumableWeightG int `json:"consumable_weight_g"`
	WornWeightG       int `json:"worn_weight_g"`
	TotalPackG        int `json:"total_pack_g"`
}

// Summarize buckets each item's weight × quantity by kind.
func Summarize(items []model.GearItem) Summary {
	var s Summary
	for _, item := range items {
		s.add(item.Kind, item.TotalGrams())
	}
	s.TotalPackG = s.BaseWeightG + s.ConsumableWeightG + s.WornWeightG
	return s
}

func (s *Summary) add(kind model.Kind, grams int) {
	switch kind {
	case model.KindBase:
		s.BaseWeightG += grams
	case model.KindConsumable:
		s.ConsumableWeightG += grams
	case model.KindWorn:
		s.WornWeightG += grams
	}
}

// Bucket returns the total for a single kind.
func (s Summary) Bucket(kind model.Kind) int {
	switch kind {
	case model.KindBase:
		return s.BaseWeightG
	case model.KindConsumable:
		return s.ConsumableWeightG
	case model.KindWorn:
		return s.WornWeightG
	}
	return 0
}
