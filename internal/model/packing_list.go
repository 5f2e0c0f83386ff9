package model

import "time"

// Unit is the display unit chosen for a packing list. Weights are always
// stored in grams.
type Unit string

const (
	UnitGram  Unit = "g"
	UnitOunce Unit = "oz"
)

// ParseUnit accepts the stored short forms and their long names.
func ParseUnit(s string) (Unit, bool) {
	switch s {
	case "g", "gram", "grams":
		return UnitGram, true
	case "oz", "ounce", "ounces":
		return UnitOunce, true
	}
	return "", false
}

type PackingList struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Unit        Unit      `json:"unit"`
	ShareToken  string    `json:"share_token"`
	IsShared    bool      `json:"is_shared"`
	IsInventory bool      `json:"is_inventory"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
