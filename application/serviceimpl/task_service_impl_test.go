package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"taskmanager-api/domain/apperrors"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/ports"
	"taskmanager-api/domain/repositories"
	"taskmanager-api/domain/services"
	"taskmanager-api/infrastructure/postgres"
	"taskmanager-api/infrastructure/sqlite"
)

// recordingPublisher keeps every published event; failNext makes the next
// publish return an error.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []ports.TaskEvent
	failNext bool
}

func (p *recordingPublisher) Publish(_ context.Context, event *ports.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return errors.New("broker down")
	}
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) types() []ports.TaskEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.TaskEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// mapCache is an in-process TaskCachePort.
type mapCache struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]models.Task
}

func newMapCache() *mapCache {
	return &mapCache{tasks: make(map[uuid.UUID]models.Task)}
}

func (c *mapCache) Get(_ context.Context, id uuid.UUID) (*models.Task, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (c *mapCache) Set(_ context.Context, task *models.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[task.ID] = *task
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, id)
	return nil
}

type taskFixture struct {
	service services.TaskService
	repo    repositories.TaskRepository
	cache   *mapCache
	events  *recordingPublisher
	alice   *models.Actor
	bob     *models.Actor
}

func setupTaskService(t *testing.T) *taskFixture {
	t.Helper()
	return newTaskFixture(t, nil)
}

// newTaskFixture wires the service over wrap(repo) when wrap is non-nil.
func newTaskFixture(t *testing.T, wrap func(repositories.TaskRepository) repositories.TaskRepository) *taskFixture {
	t.Helper()

	db, err := sqlite.NewMemoryDatabase()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	users := postgres.NewUserRepository(db)
	actors := make([]*models.Actor, 0, 2)
	for _, name := range []string{"alice", "bob"} {
		u := &models.User{ID: uuid.New(), Username: name, FirstName: name, Password: "x"}
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		actors = append(actors, &models.Actor{UserID: u.ID, Username: u.Username})
	}

	var repo repositories.TaskRepository = postgres.NewTaskRepository(db)
	if wrap != nil {
		repo = wrap(repo)
	}
	cache := newMapCache()
	events := &recordingPublisher{}

	return &taskFixture{
		service: NewTaskService(repo, cache, events, 10, 100),
		repo:    repo,
		cache:   cache,
		events:  events,
		alice:   actors[0],
		bob:     actors[1],
	}
}

func (f *taskFixture) create(t *testing.T, actor *models.Actor, title string) *models.Task {
	t.Helper()
	task, err := f.service.CreateTask(context.Background(), actor, &dto.CreateTaskRequest{Title: dto.Some(title)})
	if err != nil {
		t.Fatalf("CreateTask(%q) error = %v", title, err)
	}
	// Keep created timestamps distinct so newest-first order is deterministic.
	time.Sleep(2 * time.Millisecond)
	return task
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	return verr.Fields
}

func TestCreateTask(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.CreateTask(ctx, f.alice, &dto.CreateTaskRequest{
		Title:       dto.Some("  Buy milk  "),
		Description: dto.Some("2 litres"),
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("Title = %q, want trimmed", task.Title)
	}
	if task.Status != models.TaskStatusNew {
		t.Errorf("Status = %q, want New", task.Status)
	}
	if task.UserID != f.alice.UserID {
		t.Errorf("owner = %s, want caller %s", task.UserID, f.alice.UserID)
	}
	if task.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if got := f.events.types(); len(got) != 1 || got[0] != ports.TaskEventCreated {
		t.Errorf("events = %v, want [created]", got)
	}

	withStatus, err := f.service.CreateTask(ctx, f.alice, &dto.CreateTaskRequest{
		Title:  dto.Some("Started"),
		Status: dto.Some("In Progress"),
	})
	if err != nil || withStatus.Status != models.TaskStatusInProgress {
		t.Errorf("CreateTask(status) = %v, %v", withStatus, err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	f := setupTaskService(t)

	long := make([]rune, 201)
	for i := range long {
		long[i] = 'é'
	}

	tests := []struct {
		name  string
		req   dto.CreateTaskRequest
		field string
	}{
		{"missing title", dto.CreateTaskRequest{}, "title"},
		{"null title", dto.CreateTaskRequest{Title: dto.Null()}, "title"},
		{"blank title", dto.CreateTaskRequest{Title: dto.Some("   ")}, "title"},
		{"long title", dto.CreateTaskRequest{Title: dto.Some(string(long))}, "title"},
		{"bad status", dto.CreateTaskRequest{Title: dto.Some("ok"), Status: dto.Some("Done")}, "status"},
		{"lowercase status", dto.CreateTaskRequest{Title: dto.Some("ok"), Status: dto.Some("new")}, "status"},
		{"null status", dto.CreateTaskRequest{Title: dto.Some("ok"), Status: dto.Null()}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateTask(context.Background(), f.alice, &tt.req)
			fields := fieldErrors(t, err)
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("fields = %v, want an error for %q", fields, tt.field)
			}
		})
	}

	if _, n, _ := f.repo.Page(context.Background(), repositories.TaskFilter{}, 0, 1); n != 0 {
		t.Errorf("rejected creates must not persist, count = %d", n)
	}
}

func TestUnauthenticatedCallsFail(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task := f.create(t, f.alice, "secret")

	calls := map[string]func() error{
		"create": func() error {
			_, err := f.service.CreateTask(ctx, nil, &dto.CreateTaskRequest{Title: dto.Some("x")})
			return err
		},
		"get": func() error {
			_, err := f.service.GetTask(ctx, nil, task.ID)
			return err
		},
		"update": func() error {
			_, err := f.service.UpdateTask(ctx, nil, task.ID, &dto.UpdateTaskRequest{})
			return err
		},
		"patch": func() error {
			_, err := f.service.PatchTask(ctx, nil, task.ID, &dto.UpdateTaskRequest{})
			return err
		},
		"delete":   func() error { return f.service.DeleteTask(ctx, nil, task.ID) },
		"complete": func() error { _, err := f.service.CompleteTask(ctx, nil, task.ID); return err },
		"list": func() error {
			_, err := f.service.ListTasks(ctx, nil, dto.TaskListQuery{})
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, apperrors.ErrUnauthenticated) {
				t.Errorf("error = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestGetTaskUsesCache(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task := f.create(t, f.alice, "cached")

	// Any authenticated user may read any task.
	got, err := f.service.GetTask(ctx, f.bob, task.ID)
	if err != nil || got.ID != task.ID {
		t.Fatalf("GetTask() = %v, %v", got, err)
	}
	if _, found, _ := f.cache.Get(ctx, task.ID); !found {
		t.Error("GetTask should populate the cache")
	}

	if _, err := f.service.PatchTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{Title: dto.Some("renamed")}); err != nil {
		t.Fatalf("PatchTask() error = %v", err)
	}
	if _, found, _ := f.cache.Get(ctx, task.ID); found {
		t.Error("mutation should invalidate the cache entry")
	}

	got, _ = f.service.GetTask(ctx, f.alice, task.ID)
	if got.Title != "renamed" {
		t.Errorf("Title = %q, want fresh value after invalidation", got.Title)
	}

	if _, err := f.service.GetTask(ctx, f.alice, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetTask(unknown) error = %v, want ErrNotFound", err)
	}
}

// pausingRepo holds the first GetByID after arm() until release is closed,
// after the row has been read.
type pausingRepo struct {
	repositories.TaskRepository

	mu      sync.Mutex
	armed   bool
	reached chan struct{}
	release chan struct{}
}

func (r *pausingRepo) arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = true
	r.reached = make(chan struct{})
	r.release = make(chan struct{})
}

func (r *pausingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := r.TaskRepository.GetByID(ctx, id)

	r.mu.Lock()
	hold := r.armed
	r.armed = false
	reached, release := r.reached, r.release
	r.mu.Unlock()

	if hold {
		close(reached)
		<-release
	}
	return task, err
}

func TestGetTaskRacingWriterLeavesNoStaleEntry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *taskFixture, id uuid.UUID) error
		check  func(t *testing.T, task *models.Task, err error)
	}{
		{
			name: "patch",
			mutate: func(f *taskFixture, id uuid.UUID) error {
				_, err := f.service.PatchTask(context.Background(), f.alice, id, &dto.UpdateTaskRequest{Title: dto.Some("new")})
				return err
			},
			check: func(t *testing.T, task *models.Task, err error) {
				if err != nil || task.Title != "new" {
					t.Errorf("GetTask() = %v, %v; want title %q", task, err, "new")
				}
			},
		},
		{
			name: "complete",
			mutate: func(f *taskFixture, id uuid.UUID) error {
				_, err := f.service.CompleteTask(context.Background(), f.alice, id)
				return err
			},
			check: func(t *testing.T, task *models.Task, err error) {
				if err != nil || task.Status != models.TaskStatusCompleted {
					t.Errorf("GetTask() = %v, %v; want Completed", task, err)
				}
			},
		},
		{
			name: "delete",
			mutate: func(f *taskFixture, id uuid.UUID) error {
				return f.service.DeleteTask(context.Background(), f.alice, id)
			},
			check: func(t *testing.T, task *models.Task, err error) {
				if !errors.Is(err, apperrors.ErrNotFound) {
					t.Errorf("GetTask() = %v, %v; want ErrNotFound", task, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paused := &pausingRepo{}
			f := newTaskFixture(t, func(inner repositories.TaskRepository) repositories.TaskRepository {
				paused.TaskRepository = inner
				return paused
			})
			ctx := context.Background()
			task := f.create(t, f.alice, "old")

			type result struct {
				task *models.Task
				err  error
			}
			done := make(chan result, 1)
			paused.arm()
			go func() {
				got, err := f.service.GetTask(ctx, f.bob, task.ID)
				done <- result{got, err}
			}()

			<-paused.reached
			if err := tt.mutate(f, task.ID); err != nil {
				t.Fatalf("mutation error = %v", err)
			}
			close(paused.release)

			res := <-done
			tt.check(t, res.task, res.err)

			// Whatever the racing read returned, a later read must see the store.
			got, err := f.service.GetTask(ctx, f.bob, task.ID)
			tt.check(t, got, err)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task := f.create(t, f.alice, "original")

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, err := f.service.UpdateTask(ctx, f.bob, task.ID, &dto.UpdateTaskRequest{
			Title: dto.Some("x"), Description: dto.Null(), Status: dto.Some("New"),
		})
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("forbidden wins over invalid payload", func(t *testing.T) {
		_, err := f.service.UpdateTask(ctx, f.bob, task.ID, &dto.UpdateTaskRequest{})
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.service.UpdateTask(ctx, f.alice, uuid.New(), &dto.UpdateTaskRequest{})
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("incomplete payload does not partially apply", func(t *testing.T) {
		_, err := f.service.UpdateTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{Title: dto.Some("half")})
		fields := fieldErrors(t, err)
		if fields["description"] == "" || fields["status"] == "" {
			t.Errorf("fields = %v, want description and status", fields)
		}
		stored, _ := f.repo.GetByID(ctx, task.ID)
		if stored.Title != "original" {
			t.Errorf("Title = %q, want unchanged", stored.Title)
		}
	})

	t.Run("full replace", func(t *testing.T) {
		before, _ := f.repo.GetByID(ctx, task.ID)
		updated, err := f.service.UpdateTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{
			Title:       dto.Some("replaced"),
			Description: dto.Some("now with text"),
			Status:      dto.Some("In Progress"),
		})
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}
		stored, _ := f.repo.GetByID(ctx, task.ID)
		if stored.Title != "replaced" || stored.Status != models.TaskStatusInProgress {
			t.Errorf("stored = %+v", stored)
		}
		if stored.UserID != f.alice.UserID || updated.ID != task.ID {
			t.Error("owner and id must be preserved")
		}
		if !stored.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("created changed: %v -> %v", before.CreatedAt, stored.CreatedAt)
		}
	})

	t.Run("null description clears it", func(t *testing.T) {
		_, err := f.service.UpdateTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{
			Title: dto.Some("replaced"), Description: dto.Null(), Status: dto.Some("New"),
		})
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}
		stored, _ := f.repo.GetByID(ctx, task.ID)
		if stored.Description != nil {
			t.Errorf("Description = %q, want nil", *stored.Description)
		}
	})
}

func TestPatchTask(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task, _ := f.service.CreateTask(ctx, f.alice, &dto.CreateTaskRequest{
		Title:       dto.Some("patch me"),
		Description: dto.Some("keep"),
	})

	patched, err := f.service.PatchTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{Status: dto.Some("In Progress")})
	if err != nil {
		t.Fatalf("PatchTask() error = %v", err)
	}
	if patched.Title != "patch me" || patched.Description == nil || *patched.Description != "keep" {
		t.Errorf("unsupplied fields changed: %+v", patched)
	}
	if patched.Status != models.TaskStatusInProgress {
		t.Errorf("Status = %q", patched.Status)
	}

	if _, err := f.service.PatchTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{Title: dto.Some("")}); err == nil {
		t.Error("blank title should be rejected on patch")
	}

	noop, err := f.service.PatchTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{})
	if err != nil || noop.Status != models.TaskStatusInProgress {
		t.Errorf("empty patch = %v, %v", noop, err)
	}

	if _, err := f.service.PatchTask(ctx, f.bob, task.ID, &dto.UpdateTaskRequest{Title: dto.Some("mine now")}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner patch error = %v, want ErrForbidden", err)
	}

	// Patching back to New is allowed; only Complete is single-fire.
	if _, err := f.service.PatchTask(ctx, f.alice, task.ID, &dto.UpdateTaskRequest{Status: dto.Some("New")}); err != nil {
		t.Errorf("PatchTask(New) error = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task := f.create(t, f.alice, "bye")

	if err := f.service.DeleteTask(ctx, f.bob, task.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner delete error = %v, want ErrForbidden", err)
	}
	if err := f.service.DeleteTask(ctx, f.alice, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := f.service.GetTask(ctx, f.alice, task.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetTask after delete error = %v, want ErrNotFound", err)
	}
	if err := f.service.DeleteTask(ctx, f.alice, task.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	types := f.events.types()
	if types[len(types)-1] != ports.TaskEventDeleted {
		t.Errorf("last event = %v, want deleted", types[len(types)-1])
	}
}

func TestCompleteTask(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	task := f.create(t, f.alice, "finish")

	if _, err := f.service.CompleteTask(ctx, f.bob, task.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner complete error = %v, want ErrForbidden", err)
	}
	if _, err := f.service.CompleteTask(ctx, f.alice, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown complete error = %v, want ErrNotFound", err)
	}

	done, err := f.service.CompleteTask(ctx, f.alice, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if done.Status != models.TaskStatusCompleted {
		t.Errorf("Status = %q", done.Status)
	}

	_, err = f.service.CompleteTask(ctx, f.alice, task.ID)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("repeat complete error = %v, want ErrConflict", err)
	}
	if apperrors.Message(err) != "Already done!" {
		t.Errorf("message = %q", apperrors.Message(err))
	}

	// Non-owner is told Forbidden even when the task is already completed.
	if _, err := f.service.CompleteTask(ctx, f.bob, task.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner on completed task error = %v, want ErrForbidden", err)
	}
}

func TestCompleteTaskConcurrent(t *testing.T) {
	f := setupTaskService(t)
	task := f.create(t, f.alice, "race")

	const callers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CompleteTask(context.Background(), f.alice, task.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != callers-1 {
		t.Errorf("successes=%d conflicts=%d, want 1 and %d", successes, conflicts, callers-1)
	}

	completed := 0
	for _, typ := range f.events.types() {
		if typ == ports.TaskEventCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("completed events = %d, want 1", completed)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := setupTaskService(t)
	f.events.failNext = true

	task, err := f.service.CreateTask(context.Background(), f.alice, &dto.CreateTaskRequest{Title: dto.Some("still saved")})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := f.repo.GetByID(context.Background(), task.ID); err != nil {
		t.Errorf("task should be stored despite the broker error: %v", err)
	}
}

func TestListTasksPagination(t *testing.T) {
	tests := []struct {
		name string
		mine bool
	}{
		{"all tasks", false},
		{"my tasks", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTaskService(t)
			ctx := context.Background()
			for i := 0; i < 13; i++ {
				f.create(t, f.alice, fmt.Sprintf("task-%02d", i))
			}

			first, err := f.service.ListTasks(ctx, f.alice, dto.TaskListQuery{Mine: tt.mine})
			if err != nil {
				t.Fatalf("ListTasks() error = %v", err)
			}
			if first.Count != 13 || len(first.Results) != 10 {
				t.Fatalf("page 1: count=%d len=%d", first.Count, len(first.Results))
			}
			if first.Results[0].Title != "task-12" {
				t.Errorf("newest first: got %q", first.Results[0].Title)
			}
			if first.NextPage == nil || *first.NextPage != 2 || first.PreviousPage != nil {
				t.Errorf("page 1 navigation: next=%v prev=%v", first.NextPage, first.PreviousPage)
			}

			second, err := f.service.ListTasks(ctx, f.alice, dto.TaskListQuery{Mine: tt.mine, Page: 2})
			if err != nil {
				t.Fatalf("ListTasks(page 2) error = %v", err)
			}
			if len(second.Results) != 3 || second.NextPage != nil || second.PreviousPage == nil || *second.PreviousPage != 1 {
				t.Errorf("page 2: len=%d next=%v prev=%v", len(second.Results), second.NextPage, second.PreviousPage)
			}
			for _, r := range append(first.Results, second.Results...) {
				if r.UserID != f.alice.UserID {
					t.Errorf("unexpected owner %s for %q", r.UserID, r.Title)
				}
			}

			if _, err := f.service.ListTasks(ctx, f.alice, dto.TaskListQuery{Mine: tt.mine, Page: 3}); !errors.Is(err, apperrors.ErrNotFound) {
				t.Errorf("page 3 error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListTasksPageBounds(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()
	for i := 0; i < 13; i++ {
		f.create(t, f.alice, fmt.Sprintf("task-%02d", i))
	}

	if _, err := f.service.ListTasks(ctx, f.bob, dto.TaskListQuery{Page: -1}); err == nil {
		t.Error("negative page should be rejected")
	}
	if _, err := f.service.ListTasks(ctx, f.bob, dto.TaskListQuery{PageSize: 101}); err == nil {
		t.Error("page_size above the maximum should be rejected")
	}

	custom, err := f.service.ListTasks(ctx, f.bob, dto.TaskListQuery{PageSize: 5, Page: 3})
	if err != nil || len(custom.Results) != 3 {
		t.Errorf("page_size=5 page=3: %v, %v", custom, err)
	}
}

func TestListTasksStatusFilter(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	f.create(t, f.alice, "fresh")
	busy := f.create(t, f.alice, "busy")
	done := f.create(t, f.alice, "done")
	if _, err := f.service.PatchTask(ctx, f.alice, busy.ID, &dto.UpdateTaskRequest{Status: dto.Some("In Progress")}); err != nil {
		t.Fatalf("PatchTask() error = %v", err)
	}
	if _, err := f.service.CompleteTask(ctx, f.alice, done.ID); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	tests := []struct {
		status string
		titles []string
	}{
		{"New", []string{"fresh"}},
		{"In Progress", []string{"busy"}},
		{"Completed", []string{"done"}},
		{"", []string{"done", "busy", "fresh"}},
	}

	for _, mine := range []bool{false, true} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("mine=%v/status=%q", mine, tt.status), func(t *testing.T) {
				page, err := f.service.ListTasks(ctx, f.alice, dto.TaskListQuery{Mine: mine, Status: tt.status})
				if err != nil {
					t.Fatalf("ListTasks() error = %v", err)
				}
				if page.Count != int64(len(tt.titles)) || len(page.Results) != len(tt.titles) {
					t.Fatalf("count=%d len=%d, want %d", page.Count, len(page.Results), len(tt.titles))
				}
				for i, want := range tt.titles {
					if page.Results[i].Title != want {
						t.Errorf("results[%d] = %q, want %q", i, page.Results[i].Title, want)
					}
				}
			})
		}
	}
}

func TestListTasksEmptyFirstPage(t *testing.T) {
	f := setupTaskService(t)

	page, err := f.service.ListTasks(context.Background(), f.alice, dto.TaskListQuery{Mine: true})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if page.Count != 0 || len(page.Results) != 0 || page.NextPage != nil {
		t.Errorf("empty page = %+v", page)
	}
	if page.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
}

func TestListMineWithStatusFilter(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	a1 := f.create(t, f.alice, "a1")
	f.create(t, f.alice, "a2")
	b1 := f.create(t, f.bob, "b1")
	f.service.PatchTask(ctx, f.alice, a1.ID, &dto.UpdateTaskRequest{Status: dto.Some("In Progress")})
	f.service.PatchTask(ctx, f.bob, b1.ID, &dto.UpdateTaskRequest{Status: dto.Some("In Progress")})

	tests := []struct {
		name   string
		query  dto.TaskListQuery
		titles []string
	}{
		{"mine", dto.TaskListQuery{Mine: true}, []string{"a2", "a1"}},
		{"mine in progress", dto.TaskListQuery{Mine: true, Status: "in progress"}, []string{"a1"}},
		{"mine substring", dto.TaskListQuery{Mine: true, Status: "NE"}, []string{"a2"}},
		{"all in progress", dto.TaskListQuery{Status: "PROG"}, []string{"b1", "a1"}},
		{"no match", dto.TaskListQuery{Mine: true, Status: "completed"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.service.ListTasks(ctx, f.alice, tt.query)
			if err != nil {
				t.Fatalf("ListTasks() error = %v", err)
			}
			if len(page.Results) != len(tt.titles) {
				t.Fatalf("results = %d, want %d", len(page.Results), len(tt.titles))
			}
			for i, want := range tt.titles {
				if page.Results[i].Title != want {
					t.Errorf("results[%d] = %q, want %q", i, page.Results[i].Title, want)
				}
			}
			for _, r := range page.Results {
				if tt.query.Mine && r.UserID != f.alice.UserID {
					t.Errorf("ListMine returned a task owned by %s", r.UserID)
				}
			}
		})
	}
}
