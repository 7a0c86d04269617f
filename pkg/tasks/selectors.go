package tasks

import "strings"

// FilteredTasks returns the tasks matching both filters, in collection order.
func FilteredTasks(tasks []Task, f Filters) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Category != "" && f.Category != AllCategories && t.CategoryID != f.Category {
			continue
		}
		switch f.Status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// TaskCounts totals tasks by completion. Total == Completed + Active always.
func TaskCounts(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Active = c.Total - c.Completed
	return c
}

// CategoryByID looks up a category, falling back to the default category.
func CategoryByID(cats []Category, id string) Category {
	if i := indexOfCategory(cats, id); i >= 0 {
		return cats[i]
	}
	return DefaultCategory()
}

// CategoryByName finds a category by case-insensitive name.
func CategoryByName(cats []Category, name string) (Category, bool) {
	for _, c := range cats {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return Category{}, false
}
