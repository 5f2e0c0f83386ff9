package model

type Category string

const (
	CategoryShelter     Category = "shelter"
	CategorySleeping    Category = "sleeping"
	CategoryBackpack    Category = "backpack"
	CategoryClothing    Category = "clothing"
	CategoryCooking     Category = "cooking"
	CategoryFood        Category = "food"
	CategoryWater       Category = "water"
	CategoryElectronics Category = "electronics"
	CategoryOther       Category = "other"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryShelter, CategorySleeping, CategoryBackpack, CategoryClothing,
		CategoryCooking, CategoryFood, CategoryWater, CategoryElectronics, CategoryOther,
	}
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Kind classifies how an item is carried. The set is closed: every value
// returned by Kinds must have a bucket in the weight summary.
type Kind string

const (
	KindBase       Kind = "base"
	KindConsumable Kind = "consumable"
	KindWorn       Kind = "worn"
)

func Kinds() []Kind {
	return []Kind{KindBase, KindConsumable, KindWorn}
}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type GearItem struct {
	ID          string   `json:"id"`
	ListID      string   `json:"list_id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	WeightGrams int      `json:"weight_grams"`
	Quantity    int      `json:"quantity"`
	Kind        Kind     `json:"kind"`
	Notes       string   `json:"notes"`
	SortOrder   int      `json:"sort_order"`
}

// TotalGrams is the exact weight contributed by the item: weight × quantity.
func (g GearItem) TotalGrams() int {
	return g.WeightGrams * g.Quantity
}

// GearListEntry is a gear item in the cross-list feed, labelled with the
// title of the list it belongs to.
type GearListEntry struct {
	GearItem
	ListTitle string `json:"list_title"`
}
