package model

import "strings"

// CategoryKind is the closed set of spend categories the dashboard knows how
// to decorate. Free-text receipt categories are mapped onto it with
// ClassifyCategory; anything unrecognized is CategoryOther.
type CategoryKind string

const (
	// CategoryDining covers restaurants and prepared food.
	CategoryDining CategoryKind = "dining"
	// CategoryGrocery covers supermarket and grocery purchases.
	CategoryGrocery CategoryKind = "grocery"
	// CategoryTransport covers fuel and transport.
	CategoryTransport CategoryKind = "transport"
	// CategoryShopping covers general retail.
	CategoryShopping CategoryKind = "shopping"
	// CategoryCoffee covers cafes.
	CategoryCoffee CategoryKind = "coffee"
	// CategoryEntertainment covers leisure spend.
	CategoryEntertainment CategoryKind = "entertainment"
	// CategoryFitness covers gyms and sport.
	CategoryFitness CategoryKind = "fitness"
	// CategoryHealth covers pharmacy and medical spend.
	CategoryHealth CategoryKind = "health"
	// CategoryUtilities covers household bills.
	CategoryUtilities CategoryKind = "utilities"
	// CategoryOther is the default for blank or unrecognized categories.
	CategoryOther CategoryKind = "other"
)

// CategoryStyle holds the presentation tokens attached to a CategoryKind.
type CategoryStyle struct {
	Color string
	Icon  string
}

var categoryStyles = map[CategoryKind]CategoryStyle{
	CategoryDining:        {Color: "#1976d2", Icon: "restaurant"},
	CategoryGrocery:       {Color: "#1976d2", Icon: "restaurant"},
	CategoryTransport:     {Color: "#388e3c", Icon: "gas"},
	CategoryShopping:      {Color: "#f57c00", Icon: "shopping"},
	CategoryCoffee:        {Color: "#d32f2f", Icon: "coffee"},
	CategoryEntertainment: {Color: "#9c27b0", Icon: "entertainment"},
	CategoryFitness:       {Color: "#00acc1", Icon: "fitness"},
	CategoryHealth:        {Color: "#e91e63", Icon: "health"},
	CategoryUtilities:     {Color: "#795548", Icon: "home"},
	CategoryOther:         {Color: "#757575", Icon: "shopping"},
}

// categoryAliases maps lower-cased category text onto a kind.
var categoryAliases = map[string]CategoryKind{
	"restaurant":     CategoryDining,
	"restaurants":    CategoryDining,
	"food":           CategoryDining,
	"dining":         CategoryDining,
	"grocery":        CategoryGrocery,
	"groceries":      CategoryGrocery,
	"gas":            CategoryTransport,
	"fuel":           CategoryTransport,
	"transport":      CategoryTransport,
	"transportation": CategoryTransport,
	"shopping":       CategoryShopping,
	"retail":         CategoryShopping,
	"coffee":         CategoryCoffee,
	"entertainment":  CategoryEntertainment,
	"fitness":        CategoryFitness,
	"health":         CategoryHealth,
	"utilities":      CategoryUtilities,
	"other":          CategoryOther,
}

// AllCategoryKinds returns every kind in a fixed order.
func AllCategoryKinds() []CategoryKind {
	return []CategoryKind{
		CategoryDining,
		CategoryGrocery,
		CategoryTransport,
		CategoryShopping,
		CategoryCoffee,
		CategoryEntertainment,
		CategoryFitness,
		CategoryHealth,
		CategoryUtilities,
		CategoryOther,
	}
}

// ClassifyCategory maps free-text category names onto the closed enumeration.
func ClassifyCategory(name string) CategoryKind {
	key := strings.ToLower(strings.TrimSpace(name))
	if kind, ok := categoryAliases[key]; ok {
		return kind
	}
	return CategoryOther
}

// Style returns the presentation tokens for the kind. Unknown kinds get the
// CategoryOther style.
func (k CategoryKind) Style() CategoryStyle {
	if style, ok := categoryStyles[k]; ok {
		return style
	}
	return categoryStyles[CategoryOther]
}

// IsValid reports whether k is a member of the enumeration.
func (k CategoryKind) IsValid() bool {
	_, ok := categoryStyles[k]
	return ok
}
