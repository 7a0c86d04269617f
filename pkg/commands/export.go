package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/tasks"
)

// HandleExportCommand writes every task to filename. json is an array of
// tasks, txt a checklist grouped by category that HandleImportCommand reads
// back, yaml the whole snapshot and xlsx one sheet per collection.
func HandleExportCommand(b backend.Backend, w io.Writer, filename, exportType string) error {
	snap := b.Store().Snapshot()

	// Ensure directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	var content []byte
	var err error

	switch exportType {
	case "json":
		content, err = json.MarshalIndent(snap.Tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling tasks to JSON: %w", err)
		}
	case "txt":
		content = []byte(checklist(snap))
	case "yaml", "yml":
		content, err = yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("error marshaling tasks to YAML: %w", err)
		}
	case "xlsx":
		if err := writeWorkbook(snap, filename); err != nil {
			return err
		}
		fmt.Fprintf(w, "Successfully exported %d task(s) to %s\n", len(snap.Tasks), filename)
		return nil
	default:
		return fmt.Errorf("unknown export type: %s", exportType)
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	fmt.Fprintf(w, "Successfully exported %d task(s) to %s\n", len(snap.Tasks), filename)
	return nil
}

func checklist(snap tasks.Snapshot) string {
	var lines []string
	for _, c := range snap.Categories {
		var section []string
		for _, t := range snap.Tasks {
			if t.CategoryID == c.ID {
				section = append(section, fmt.Sprintf("%s %s", checkbox(t.Completed), t.Title))
			}
		}
		if len(section) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n%s:", c.Name))
		lines = append(lines, section...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

func writeWorkbook(snap tasks.Snapshot, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Tasks")
	if _, err := f.NewSheet("Categories"); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	taskRows := [][]interface{}{{"ID", "Title", "Description", "Category", "Completed", "Created"}}
	for _, t := range snap.Tasks {
		taskRows = append(taskRows, []interface{}{
			t.ID, t.Title, t.Description, tasks.CategoryByID(snap.Categories, t.CategoryID).Name, t.Completed, t.CreatedAt,
		})
	}
	catRows := [][]interface{}{{"ID", "Name", "Color"}}
	for _, c := range snap.Categories {
		catRows = append(catRows, []interface{}{c.ID, c.Name, c.Color})
	}

	for sheet, rows := range map[string][][]interface{}{"Tasks": taskRows, "Categories": catRows} {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			row := row
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("error writing %s row %d: %w", sheet, i+1, err)
			}
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	return nil
}
