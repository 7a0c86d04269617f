package commands

import (
	"context"
	"fmt"
	"io"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/tasks"
)

// HandleCategoryAdd creates a category.
func HandleCategoryAdd(ctx context.Context, b backend.Backend, w io.Writer, name, color string) error {
	c, err := b.AddCategory(ctx, name, color)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added category %s (%s, %s)\n", c.Name, c.ID, c.Color)
	return nil
}

// HandleCategoryRemove deletes a category by id or name. Its tasks move to
// General.
func HandleCategoryRemove(ctx context.Context, b backend.Backend, w io.Writer, ref string) error {
	c, err := resolveCategory(b.Store().Categories(), ref)
	if err != nil {
		return err
	}
	if err := b.DeleteCategory(ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted category %s\n", c.Name)
	return nil
}

// HandleCategoryList prints every category with its task count.
func HandleCategoryList(b backend.Backend, w io.Writer) {
	store := b.Store()
	counts := make(map[string]int)
	for _, t := range store.Tasks() {
		counts[t.CategoryID]++
	}
	for _, c := range store.Categories() {
		marker := ""
		if tasks.IsSeedCategory(c.ID) {
			marker = " *"
		}
		fmt.Fprintf(w, "%-12s %-16s %s  %d task(s)%s\n", c.ID, c.Name, c.Color, counts[c.ID], marker)
	}
}
