package model

import "strings"

// SuggestCategory guesses a category from an item name: exact match
// first, then the first keyword contained in the name. Unknown names
// fall back to other.
func SuggestCategory(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CategoryOther
	}
	if c, ok := exactCategory[n]; ok {
		return c
	}
	for _, e := range categoryKeywords {
		if strings.Contains(n, e.keyword) {
			return e.category
		}
	}
	return CategoryOther
}

var exactCategory = map[string]Category{
	"tent":        CategoryShelter,
	"tarp":        CategoryShelter,
	"bivy":        CategoryShelter,
	"hammock":     CategoryShelter,
	"quilt":       CategorySleeping,
	"pillow":      CategorySleeping,
	"pad":         CategorySleeping,
	"pack":        CategoryBackpack,
	"backpack":    CategoryBackpack,
	"stove":       CategoryCooking,
	"pot":         CategoryCooking,
	"mug":         CategoryCooking,
	"spoon":       CategoryCooking,
	"spork":       CategoryCooking,
	"lighter":     CategoryCooking,
	"water":       CategoryWater,
	"filter":      CategoryWater,
	"headlamp":    CategoryElectronics,
	"phone":       CategoryElectronics,
	"gps":         CategoryElectronics,
	"socks":       CategoryClothing,
	"gloves":      CategoryClothing,
	"beanie":      CategoryClothing,
	"hat":         CategoryClothing,
	"shorts":      CategoryClothing,
	"trowel":      CategoryOther,
	"first aid":   CategoryOther,
	"sunscreen":   CategoryOther,
	"toothbrush":  CategoryOther,
	"dinner":      CategoryFood,
	"breakfast":   CategoryFood,
	"lunch":       CategoryFood,
	"snacks":      CategoryFood,
	"electrolyte": CategoryFood,
}

type categoryKeyword struct {
	keyword  string
	category Category
}

// Ordered with longer and more specific keywords first.
var categoryKeywords = []categoryKeyword{
	// Water before food and cooking so "water bottle" is not a pot.
	{"water filter", CategoryWater},
	{"water", CategoryWater},
	{"bottle", CategoryWater},
	{"bladder", CategoryWater},
	{"purif", CategoryWater},
	{"filter", CategoryWater},

	// Sleeping before clothing so "sleeping bag liner" is not a jacket.
	{"sleeping", CategorySleeping},
	{"quilt", CategorySleeping},
	{"pillow", CategorySleeping},
	{"sit pad", CategorySleeping},
	{"pad", CategorySleeping},

	{"groundsheet", CategoryShelter},
	{"ground sheet", CategoryShelter},
	{"tarp", CategoryShelter},
	{"tent", CategoryShelter},
	{"bivy", CategoryShelter},
	{"stake", CategoryShelter},
	{"guyline", CategoryShelter},
	{"pole", CategoryShelter},

	{"dry bag", CategoryBackpack},
	{"stuff sack", CategoryBackpack},
	{"pack liner", CategoryBackpack},
	{"backpack", CategoryBackpack},
	{"pack", CategoryBackpack},

	{"stove", CategoryCooking},
	{"mug", CategoryCooking},
	{"pot", CategoryCooking},
	{"spoon", CategoryCooking},
	{"windscreen", CategoryCooking},

	{"freeze-dried", CategoryFood},
	{"freeze dried", CategoryFood},
	{"snack", CategoryFood},
	{"dinner", CategoryFood},
	{"breakfast", CategoryFood},
	{"bar", CategoryFood},
	{"fuel", CategoryFood},
	{"alcohol", CategoryFood},

	{"power bank", CategoryElectronics},
	{"battery", CategoryElectronics},
	{"headlamp", CategoryElectronics},
	{"charger", CategoryElectronics},
	{"cable", CategoryElectronics},
	{"phone", CategoryElectronics},
	{"inreach", CategoryElectronics},

	{"jacket", CategoryClothing},
	{"shell", CategoryClothing},
	{"fleece", CategoryClothing},
	{"pants", CategoryClothing},
	{"shirt", CategoryClothing},
	{"sock", CategoryClothing},
	{"glove", CategoryClothing},
	{"beanie", CategoryClothing},
	{"shoe", CategoryClothing},
	{"rain", CategoryClothing},
}
