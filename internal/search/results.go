/*
Package search implements the global dashboard search across brands,
prompts and sources.

Matching is a case-insensitive substring test on each entity's label only
(brand name, prompt query, source domain). Results keep corpus order, are
capped per category and grouped in the fixed order brands, prompts, sources.
*/
package search

// Category names a result group
type Category string

const (
	CategoryBrands  Category = "brands"
	CategoryPrompts Category = "prompts"
	CategorySources Category = "sources"
)

var categoryLabels = map[Category]string{
	CategoryBrands:  "Brands",
	CategoryPrompts: "Prompts",
	CategorySources: "Sources",
}

// Result is a single search hit
type Result struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Color    string   `json:"color,omitempty"`
}

// Group holds the hits of one category
type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Results  []Result `json:"results"`
}

// Results is the grouped answer to a query
type Results struct {
	Groups []Group `json:"groups"`
}

// TotalResults is the number of hits across all groups
func (r Results) TotalResults() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.Results)
	}
	return total
}
