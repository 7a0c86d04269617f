package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"simpletasks/pkg/tasks"
)

// Collections names the two remote collections.
type Collections struct {
	Tasks      string
	Categories string
}

// DefaultCollections returns the stock collection names.
func DefaultCollections() Collections {
	return Collections{Tasks: "tasks", Categories: "categories"}
}

var (
	taskFields     = []string{"Id", "Name", "title", "description", "completed", "category", "Tags", "CreatedOn"}
	categoryFields = []string{"Id", "Name", "color", "Tags", "CreatedOn"}
)

// TaskInput carries the updateable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	CategoryID  string
	Completed   bool
	Tags        []string
}

// CategoryInput carries the fields of a category to create. ID is only
// meaningful for seed categories, which are never created remotely.
type CategoryInput struct {
	ID    string
	Name  string
	Color string
	Tags  []string
}

// Adapter maps task and category intents onto RecordService calls and
// normalizes the records it gets back.
type Adapter struct {
	svc  RecordService
	coll Collections
	log  zerolog.Logger
}

// NewAdapter wraps a record service. Empty collection names use the defaults.
func NewAdapter(svc RecordService, coll Collections, log zerolog.Logger) *Adapter {
	def := DefaultCollections()
	if coll.Tasks == "" {
		coll.Tasks = def.Tasks
	}
	if coll.Categories == "" {
		coll.Categories = def.Categories
	}
	return &Adapter{svc: svc, coll: coll, log: log}
}

// FetchTasks returns all tasks, newest first.
func (a *Adapter) FetchTasks(ctx context.Context) ([]tasks.Task, error) {
	const op = "fetch tasks"
	resp, err := a.svc.FetchRecords(ctx, a.coll.Tasks, FetchParams{
		Fields:  taskFields,
		OrderBy: []OrderBy{{Field: "CreatedOn", Direction: "DESC"}},
	})
	if err != nil {
		return nil, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	if resp == nil || resp.Data == nil {
		return []tasks.Task{}, nil
	}
	if !resp.Success {
		return nil, &tasks.RemoteOperationError{Op: op, Err: failure(resp.Message)}
	}

	out := make([]tasks.Task, 0, len(resp.Data))
	for _, raw := range resp.Data {
		t, err := taskFromRecord(raw)
		if err != nil {
			a.log.Warn().Err(err).Msg("skipping malformed task record")
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// FetchCategories returns all categories ordered by name. It never fails:
// with no data or on error the seed set is returned, and seed categories
// missing from the service's answer are appended.
func (a *Adapter) FetchCategories(ctx context.Context) []tasks.Category {
	resp, err := a.svc.FetchRecords(ctx, a.coll.Categories, FetchParams{
		Fields:  categoryFields,
		OrderBy: []OrderBy{{Field: "Name", Direction: "ASC"}},
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("fetching categories failed, using seed categories")
		return tasks.SeedCategories()
	}
	if resp == nil || resp.Data == nil || !resp.Success {
		return tasks.SeedCategories()
	}

	cats := make([]tasks.Category, 0, len(resp.Data)+3)
	for _, raw := range resp.Data {
		c, err := categoryFromRecord(raw)
		if err != nil {
			a.log.Warn().Err(err).Msg("skipping malformed category record")
			continue
		}
		cats = append(cats, c)
	}
	return tasks.WithSeeds(cats)
}

// CreateTask creates one task record.
func (a *Adapter) CreateTask(ctx context.Context, in TaskInput) (tasks.Task, error) {
	const op = "create task"
	rec := Record{
		"Name":        in.Title,
		"title":       in.Title,
		"description": in.Description,
		"completed":   false,
		"category":    categoryRef(in.CategoryID),
		"Tags":        tagsOrEmpty(in.Tags),
	}
	resp, err := a.svc.CreateRecord(ctx, a.coll.Tasks, []Record{rec})
	raw, err := firstResult(op, resp, err)
	if err != nil {
		return tasks.Task{}, err
	}
	t, err := taskFromRecord(raw)
	if err != nil {
		return tasks.Task{}, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	return t, nil
}

// UpdateTask writes every updateable field of t.
func (a *Adapter) UpdateTask(ctx context.Context, id string, in TaskInput) (tasks.Task, error) {
	const op = "update task"
	rec := Record{
		"Id":          id,
		"Name":        in.Title,
		"title":       in.Title,
		"description": in.Description,
		"completed":   in.Completed,
		"category":    categoryRef(in.CategoryID),
		"Tags":        tagsOrEmpty(in.Tags),
	}
	resp, err := a.svc.UpdateRecord(ctx, a.coll.Tasks, []Record{rec})
	raw, err := firstResult(op, resp, err)
	if err != nil {
		return tasks.Task{}, err
	}
	t, err := taskFromRecord(raw)
	if err != nil {
		return tasks.Task{}, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	return t, nil
}

// ReassignTask points a task at another category with a partial update.
func (a *Adapter) ReassignTask(ctx context.Context, id, categoryID string) error {
	resp, err := a.svc.UpdateRecord(ctx, a.coll.Tasks, []Record{{"Id": id, "category": categoryRef(categoryID)}})
	_, err = firstResult("reassign task", resp, err)
	return err
}

// ToggleTaskCompletion sets completed to !current and returns the value the
// service confirmed. The caller applies it locally.
func (a *Adapter) ToggleTaskCompletion(ctx context.Context, id string, current bool) (bool, error) {
	resp, err := a.svc.UpdateRecord(ctx, a.coll.Tasks, []Record{{"Id": id, "completed": !current}})
	raw, err := firstResult("toggle task", resp, err)
	if err != nil {
		return current, err
	}
	if c := gjson.GetBytes(raw, "completed"); c.Exists() {
		return c.Bool(), nil
	}
	return !current, nil
}

// DeleteTask deletes a task and returns the service's success flag.
func (a *Adapter) DeleteTask(ctx context.Context, id string) (bool, error) {
	resp, err := a.svc.DeleteRecord(ctx, a.coll.Tasks, []string{id})
	if err != nil {
		return false, &tasks.RemoteOperationError{Op: "delete task", Err: err}
	}
	return resp != nil && resp.Success, nil
}

// CreateCategory creates one category record. Seed ids are answered locally
// without calling the service.
func (a *Adapter) CreateCategory(ctx context.Context, in CategoryInput) (tasks.Category, error) {
	const op = "create category"
	if tasks.IsSeedCategory(in.ID) {
		seed, _ := tasks.SeedCategory(in.ID)
		c := tasks.Category{ID: in.ID, Name: in.Name, Color: in.Color}
		if c.Name == "" {
			c.Name = seed.Name
		}
		if c.Color == "" {
			c.Color = seed.Color
		}
		return c, nil
	}

	rec := Record{
		"Name":  in.Name,
		"color": in.Color,
		"Tags":  tagsOrEmpty(in.Tags),
	}
	resp, err := a.svc.CreateRecord(ctx, a.coll.Categories, []Record{rec})
	raw, err := firstResult(op, resp, err)
	if err != nil {
		return tasks.Category{}, err
	}
	c, err := categoryFromRecord(raw)
	if err != nil {
		return tasks.Category{}, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	return c, nil
}

// UpdateCategory writes a category's name and color. Seed categories are not
// stored remotely, so their edits are answered locally.
func (a *Adapter) UpdateCategory(ctx context.Context, c tasks.Category) (tasks.Category, error) {
	const op = "update category"
	if tasks.IsSeedCategory(c.ID) {
		return c, nil
	}
	resp, err := a.svc.UpdateRecord(ctx, a.coll.Categories, []Record{{"Id": c.ID, "Name": c.Name, "color": c.Color}})
	raw, err := firstResult(op, resp, err)
	if err != nil {
		return tasks.Category{}, err
	}
	got, err := categoryFromRecord(raw)
	if err != nil {
		return tasks.Category{}, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	return got, nil
}

// DeleteCategory deletes a category and returns the service's success flag.
// Seed ids succeed without a call.
func (a *Adapter) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if tasks.IsSeedCategory(id) {
		return true, nil
	}
	resp, err := a.svc.DeleteRecord(ctx, a.coll.Categories, []string{id})
	if err != nil {
		return false, &tasks.RemoteOperationError{Op: "delete category", Err: err}
	}
	return resp != nil && resp.Success, nil
}

func firstResult(op string, resp *MutationResponse, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, &tasks.RemoteOperationError{Op: op, Err: err}
	}
	if resp == nil || !resp.Success || len(resp.Results) == 0 {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		return nil, &tasks.RemoteOperationError{Op: op, Err: failure(msg)}
	}
	r := resp.Results[0]
	if !r.Success || len(r.Data) == 0 {
		return nil, &tasks.RemoteOperationError{Op: op, Err: failure(r.Message)}
	}
	return r.Data, nil
}

func failure(msg string) error {
	if msg == "" {
		return errors.New("service reported failure")
	}
	return errors.New(msg)
}

func taskFromRecord(raw json.RawMessage) (tasks.Task, error) {
	r := gjson.ParseBytes(raw)
	id := r.Get("Id")
	if !id.Exists() || id.String() == "" {
		return tasks.Task{}, fmt.Errorf("task record without Id: %s", truncate(raw))
	}
	title := r.Get("title").String()
	if title == "" {
		title = r.Get("Name").String()
	}
	return tasks.Task{
		ID:          id.String(),
		Title:       title,
		Description: r.Get("description").String(),
		CategoryID:  categoryRef(r.Get("category").String()),
		Completed:   r.Get("completed").Bool(),
		CreatedAt:   createdAt(r.Get("CreatedOn")),
	}, nil
}

func categoryFromRecord(raw json.RawMessage) (tasks.Category, error) {
	r := gjson.ParseBytes(raw)
	id := r.Get("Id")
	if !id.Exists() || id.String() == "" {
		return tasks.Category{}, fmt.Errorf("category record without Id: %s", truncate(raw))
	}
	color := r.Get("color").String()
	if color == "" {
		color = tasks.DefaultColor
	}
	return tasks.Category{ID: id.String(), Name: r.Get("Name").String(), Color: color}, nil
}

// createdAt renders a service timestamp in the local CreatedAt layout,
// keeping the raw text when it is not a known timestamp format. Stamps
// without a zone are taken as local time.
func createdAt(v gjson.Result) string {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return ""
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return tasks.FormatCreatedAt(ts)
	}
	for _, layout := range []string{"2006-01-02T15:04:05", tasks.CreatedAtLayout} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return tasks.FormatCreatedAt(ts)
		}
	}
	return s
}

func categoryRef(id string) string {
	if strings.TrimSpace(id) == "" {
		return tasks.DefaultCategoryID
	}
	return id
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func truncate(raw []byte) string {
	const max = 80
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
