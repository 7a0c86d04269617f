package tasks

// Seed category ids. These categories always exist and are never deleted.
const (
	DefaultCategoryID  = "default"
	WorkCategoryID     = "work"
	PersonalCategoryID = "personal"
)

// DefaultColor is used when a category is created without a color.
const DefaultColor = "#6366f1"

var seedCategories = []Category{
	{ID: DefaultCategoryID, Name: "General", Color: "#6366f1"},
	{ID: WorkCategoryID, Name: "Work", Color: "#f97316"},
	{ID: PersonalCategoryID, Name: "Personal", Color: "#22d3ee"},
}

// SeedCategories returns a fresh copy of the seed set in display order.
func SeedCategories() []Category {
	out := make([]Category, len(seedCategories))
	copy(out, seedCategories)
	return out
}

// IsSeedCategory reports whether id names a seed category.
func IsSeedCategory(id string) bool {
	for _, c := range seedCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// SeedCategory returns the seed category with the given id.
func SeedCategory(id string) (Category, bool) {
	for _, c := range seedCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// DefaultCategory is the fallback every lookup and reassignment resolves to.
func DefaultCategory() Category {
	return seedCategories[0]
}

// WithSeeds appends every seed category missing from cats. Existing entries
// are never replaced, including entries sharing a seed id.
func WithSeeds(cats []Category) []Category {
	present := make(map[string]bool, len(cats))
	for _, c := range cats {
		present[c.ID] = true
	}
	out := make([]Category, len(cats), len(cats)+len(seedCategories))
	copy(out, cats)
	for _, s := range seedCategories {
		if !present[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
