package domain

import "strings"

// Category is the closed set of spending categories used everywhere in
// the core. Backend category strings are open-ended and must be mapped
// through ParseCategory before entering the data model.
type Category string

const (
	CategoryFoodDining    Category = "food_dining"
	CategoryGroceries     Category = "groceries"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategorySubscriptions Category = "subscriptions"
	CategoryUtilities     Category = "utilities"
	CategoryEducation     Category = "education"
	CategoryHealth        Category = "health"
	CategoryOther         Category = "other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryFoodDining,
	CategoryGroceries,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategorySubscriptions,
	CategoryUtilities,
	CategoryEducation,
	CategoryHealth,
	CategoryOther,
}

type categoryAlias struct {
	key string
	cat Category
}

// categoryAliases maps the backend's loosely-Plaid-like vocabulary onto
// the closed enum. Ordered so the substring pass is deterministic.
// Keys are lowercase.
var categoryAliases = []categoryAlias{
	{"food and drink", CategoryFoodDining},
	{"food & drink", CategoryFoodDining},
	{"restaurants", CategoryFoodDining},
	{"fast food", CategoryFoodDining},
	{"coffee shop", CategoryFoodDining},
	{"groceries", CategoryGroceries},
	{"supermarkets", CategoryGroceries},
	{"travel", CategoryTransport},
	{"taxi", CategoryTransport},
	{"ride share", CategoryTransport},
	{"public transit", CategoryTransport},
	{"gas stations", CategoryTransport},
	{"arts and entertainment", CategoryEntertainment},
	{"entertainment", CategoryEntertainment},
	{"recreation", CategoryEntertainment},
	{"general merchandise", CategoryShopping},
	{"merchandise", CategoryShopping},
	{"shops", CategoryShopping},
	{"clothing", CategoryShopping},
	{"subscription", CategorySubscriptions},
	{"digital purchase", CategorySubscriptions},
	{"streaming", CategorySubscriptions},
	{"rent and utilities", CategoryUtilities},
	{"utilities", CategoryUtilities},
	{"telecommunication services", CategoryUtilities},
	{"education", CategoryEducation},
	{"tuition", CategoryEducation},
	{"healthcare", CategoryHealth},
	{"medical", CategoryHealth},
	{"pharmacies", CategoryHealth},
	{"gyms and fitness centers", CategoryHealth},
}

// ParseCategory maps an external category string into the closed enum.
// Strategy: exact match (case-insensitive) first, then substring match
// in alias order, then CategoryOther. It is total: every input yields
// a valid category.
func ParseCategory(external string) Category {
	s := strings.ToLower(strings.TrimSpace(external))
	if s == "" {
		return CategoryOther
	}

	// The internal enum values are valid inputs too.
	for _, c := range Categories {
		if s == string(c) {
			return c
		}
	}

	for _, a := range categoryAliases {
		if s == a.key {
			return a.cat
		}
	}

	for _, a := range categoryAliases {
		if strings.Contains(s, a.key) {
			return a.cat
		}
	}

	return CategoryOther
}
