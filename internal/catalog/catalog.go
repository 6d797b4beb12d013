// Package catalog holds the static mystery-box reference data. Boxes are
// created at deployment time and never mutated at runtime.
package catalog

import "github.com/mysteryvault/storefront/internal/domain"

type Box struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalValue float64 `json:"originalValue"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Items         string  `json:"items"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	Popular       bool    `json:"popular"`
}

var boxes = []Box{
	{
		ID:            1,
		Name:          "Gaming Legends Box",
		Price:         3999.99,
		OriginalValue: 12000,
		Category:      "gaming",
		Image:         "/legend.png",
		Description:   "Epic gaming gear and collectibles",
		Items:         "5-7 items",
		Rating:        4.8,
		Reviews:       234,
		Popular:       true,
	},
	{
		ID:            2,
		Name:          "Tech Innovator Box",
		Price:         6399.99,
		OriginalValue: 16000,
		Category:      "tech",
		Image:         "/tech.png",
		Description:   "Latest gadgets and tech accessories",
		Items:         "4-6 items",
		Rating:        4.9,
		Reviews:       189,
	},
	{
		ID:            3,
		Name:          "Lifestyle Essentials Box",
		Price:         2799.99,
		OriginalValue: 8000,
		Category:      "lifestyle",
		Image:         "/Lifestyle.png",
		Description:   "Curated lifestyle and wellness items",
		Items:         "6-8 items",
		Rating:        4.7,
		Reviews:       156,
	},
	{
		ID:            4,
		Name:          "Collector's Rare Box",
		Price:         10399.99,
		OriginalValue: 32000,
		Category:      "collectibles",
		Image:         "/Collector.png",
		Description:   "Rare finds and limited edition items",
		Items:         "3-5 items",
		Rating:        4.9,
		Reviews:       98,
		Popular:       true,
	},
	{
		ID:            5,
		Name:          "Fitness Power Box",
		Price:         4799.99,
		OriginalValue: 14400,
		Category:      "fitness",
		Image:         "/Fitness.png",
		Description:   "Premium fitness and workout gear",
		Items:         "4-7 items",
		Rating:        4.6,
		Reviews:       203,
	},
	{
		ID:            6,
		Name:          "Artisan Craft Box",
		Price:         3599.99,
		OriginalValue: 9600,
		Category:      "crafts",
		Image:         "/artisan.png",
		Description:   "Handcrafted items from local artisans",
		Items:         "5-8 items",
		Rating:        4.8,
		Reviews:       167,
	},
}

func All() []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)
	return out
}

func ByID(id int64) (Box, bool) {
	for _, b := range boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

func ByCategory(category string) []Box {
	if category == "" || category == "all" {
		return All()
	}
	var out []Box
	for _, b := range boxes {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

func Popular() []Box {
	var out []Box
	for _, b := range boxes {
		if b.Popular {
			out = append(out, b)
		}
	}
	return out
}

// Line snapshots the box into a cart line with the given quantity.
func (b Box) Line(quantity int) domain.CartLine {
	return domain.CartLine{
		ItemID:        b.ID,
		Name:          b.Name,
		Description:   b.Description,
		Image:         b.Image,
		ItemCount:     b.Items,
		Price:         b.Price,
		OriginalValue: b.OriginalValue,
		Quantity:      quantity,
	}
}
