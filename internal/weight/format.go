package weight

import (
	"fmt"
	"math"

	"github.com/dukerupert/ulpack/internal/model"
)

const gramsPerOunce = 28.349523125

// ToOunces converts grams to ounces rounded to one decimal place, halves
// away from zero.
func ToOunces(grams int) float64 {
	return math.Round(float64(grams)/gramsPerOunce*10) / 10
}

// Format renders grams in the given unit. Unknown units fall back to grams.
func Format(grams int, unit model.Unit) string {
	if unit == model.UnitOunce {
		return fmt.Sprintf("%.1f oz", ToOunces(grams))
	}
	return fmt.Sprintf("%d g", grams)
}
