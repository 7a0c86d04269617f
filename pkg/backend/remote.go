package backend

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"simpletasks/pkg/remote"
	"simpletasks/pkg/tasks"
)

var errNotConfirmed = errors.New("service did not confirm the change")

// Remote keeps an in-memory tasks.Store in sync with a record service.
// Every mutation waits for the service and applies the confirmed record;
// nothing is written locally when a call fails.
type Remote struct {
	api      *remote.Adapter
	svc      remote.RecordService
	store    *tasks.Store
	log      zerolog.Logger
	inflight atomic.Int32
	group    singleflight.Group
}

// NewRemote builds a backend over a record service.
func NewRemote(svc remote.RecordService, coll remote.Collections, log zerolog.Logger, opts ...tasks.Option) *Remote {
	opts = append([]tasks.Option{tasks.WithLogger(log)}, opts...)
	return &Remote{
		api:   remote.NewAdapter(svc, coll, log),
		svc:   svc,
		store: tasks.NewStore(tasks.Snapshot{Categories: tasks.SeedCategories()}, nil, opts...),
		log:   log,
	}
}

// begin marks a remote call in flight; call the returned func when done.
func (r *Remote) begin() func() {
	r.inflight.Add(1)
	return func() { r.inflight.Add(-1) }
}

// Load fetches both collections concurrently and installs them only when
// both arrived. Concurrent callers share one fetch.
func (r *Remote) Load(ctx context.Context) error {
	_, err, _ := r.group.Do("load", func() (any, error) {
		return nil, r.load(ctx)
	})
	return err
}

func (r *Remote) load(ctx context.Context) error {
	defer r.begin()()

	var (
		ts   []tasks.Task
		cats []tasks.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ts, err = r.api.FetchTasks(gctx)
		return err
	})
	g.Go(func() error {
		cats = r.api.FetchCategories(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ts = resolveCategoryRefs(ts, cats)
	r.store.Replace(tasks.Snapshot{Tasks: ts, Categories: cats})
	r.log.Debug().Int("tasks", len(ts)).Int("categories", len(cats)).Msg("remote state loaded")
	return nil
}

// resolveCategoryRefs maps tasks that reference a category by name onto that
// category's id. Unknown references are left as they are; they resolve to
// the default category on display.
func resolveCategoryRefs(ts []tasks.Task, cats []tasks.Category) []tasks.Task {
	ids := make(map[string]bool, len(cats))
	for _, c := range cats {
		ids[c.ID] = true
	}
	for i := range ts {
		if ids[ts[i].CategoryID] {
			continue
		}
		if c, ok := tasks.CategoryByName(cats, ts[i].CategoryID); ok {
			ts[i].CategoryID = c.ID
		}
	}
	return ts
}

func (r *Remote) AddTask(ctx context.Context, title, description, categoryID string) (tasks.Task, error) {
	title, err := tasks.ValidateTask(title)
	if err != nil {
		return tasks.Task{}, err
	}
	if strings.TrimSpace(categoryID) == "" {
		categoryID = tasks.DefaultCategoryID
	}

	defer r.begin()()
	t, err := r.api.CreateTask(ctx, remote.TaskInput{Title: title, Description: description, CategoryID: categoryID})
	if err != nil {
		return tasks.Task{}, err
	}
	r.store.InsertTask(t)
	return t, nil
}

func (r *Remote) ToggleTask(ctx context.Context, id string) (tasks.Task, error) {
	t, ok := r.store.Task(id)
	if !ok {
		return tasks.Task{}, tasks.ErrTaskNotFound
	}

	defer r.begin()()
	done, err := r.api.ToggleTaskCompletion(ctx, id, t.Completed)
	if err != nil {
		return tasks.Task{}, err
	}
	r.store.SetTaskCompleted(id, done)
	t.Completed = done
	return t, nil
}

func (r *Remote) UpdateTask(ctx context.Context, id string, p tasks.TaskPatch) (tasks.Task, error) {
	cur, ok := r.store.Task(id)
	if !ok {
		return tasks.Task{}, tasks.ErrTaskNotFound
	}
	next, err := tasks.ApplyPatch(cur, p)
	if err != nil {
		return tasks.Task{}, err
	}

	defer r.begin()()
	got, err := r.api.UpdateTask(ctx, id, remote.TaskInput{
		Title:       next.Title,
		Description: next.Description,
		CategoryID:  next.CategoryID,
		Completed:   next.Completed,
	})
	if err != nil {
		return tasks.Task{}, err
	}
	if got.CreatedAt == "" {
		got.CreatedAt = cur.CreatedAt
	}
	// The service may hand back a different id representation; the store
	// keys on the one it already holds.
	got.ID = id
	r.store.PutTask(got)
	return got, nil
}

func (r *Remote) DeleteTask(ctx context.Context, id string) error {
	if _, ok := r.store.Task(id); !ok {
		return tasks.ErrTaskNotFound
	}

	defer r.begin()()
	ok, err := r.api.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &tasks.RemoteOperationError{Op: "delete task", Err: errNotConfirmed}
	}
	r.store.RemoveTask(id)
	return nil
}

func (r *Remote) AddCategory(ctx context.Context, name, color string) (tasks.Category, error) {
	name, color, err := tasks.ValidateCategory(name, color)
	if err != nil {
		return tasks.Category{}, err
	}

	defer r.begin()()
	c, err := r.api.CreateCategory(ctx, remote.CategoryInput{Name: name, Color: color})
	if err != nil {
		return tasks.Category{}, err
	}
	r.store.InsertCategory(c)
	return c, nil
}

func (r *Remote) EditCategory(ctx context.Context, id, name, color string) (tasks.Category, error) {
	cur, ok := findCategory(r.store, id)
	if !ok {
		return tasks.Category{}, tasks.ErrCategoryNotFound
	}
	next, err := tasks.EditedCategory(cur, name, color)
	if err != nil {
		return tasks.Category{}, err
	}

	defer r.begin()()
	got, err := r.api.UpdateCategory(ctx, next)
	if err != nil {
		return tasks.Category{}, err
	}
	got.ID = id
	r.store.PutCategory(got)
	return got, nil
}

// DeleteCategory points every task of the category at the default category
// on the service, then deletes the category. The first failure aborts and
// leaves local state untouched.
func (r *Remote) DeleteCategory(ctx context.Context, id string) error {
	if tasks.IsSeedCategory(id) {
		return &tasks.ProtectedEntityError{Kind: "category", ID: id}
	}
	if _, ok := findCategory(r.store, id); !ok {
		return tasks.ErrCategoryNotFound
	}

	defer r.begin()()
	for _, t := range r.store.Tasks() {
		if t.CategoryID != id {
			continue
		}
		if err := r.api.ReassignTask(ctx, t.ID, tasks.DefaultCategoryID); err != nil {
			return err
		}
	}
	ok, err := r.api.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &tasks.RemoteOperationError{Op: "delete category", Err: errNotConfirmed}
	}
	r.store.RemoveCategory(id)
	return nil
}

func (r *Remote) Store() *tasks.Store { return r.store }

func (r *Remote) Loading() bool { return r.inflight.Load() > 0 }

func (r *Remote) Close() error {
	return r.svc.Close()
}
