package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*repository.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*repository.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *repository.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*repository.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) ListByFarm(_ context.Context, farmID string) ([]*repository.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Task
	for _, t := range r.tasks {
		if t.FarmID == farmID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *repository.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) CountOpenByFarm(_ context.Context, farmID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.FarmID == farmID && t.Status != types.TaskDone {
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) FindDueSoon(_ context.Context, _ time.Duration) ([]*repository.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) MarkReminderSent(_ context.Context, _ string) error {
	return nil
}

// spyDashboard records cache invalidations.
type spyDashboard struct {
	mu          sync.Mutex
	invalidated []string
}

func (d *spyDashboard) Summary(_ context.Context, _ string) (*DashboardSummary, error) {
	return nil, nil
}

func (d *spyDashboard) Invalidate(_ context.Context, farmID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidated = append(d.invalidated, farmID)
}

func (d *spyDashboard) farms() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.invalidated...)
}

func newTaskFixture(t *testing.T) (*world, *fakeTaskRepo, *spyDashboard, TaskService) {
	t.Helper()
	w := newWorld()
	repo := newFakeTaskRepo()
	dash := &spyDashboard{}
	svc := NewTaskService(repo, newAccessGuard(w.users), dash)
	return w, repo, dash, svc
}

func TestTaskLifecycle(t *testing.T) {
	w, repo, _, svc := newTaskFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")

	task, err := svc.Create(ctx, owner.ID, &repository.Task{Title: "Fix fence"})
	require.NoError(t, err)
	assert.Equal(t, types.TaskTodo, task.Status)
	assert.Equal(t, farm.ID, task.FarmID)

	done, err := svc.Complete(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskDone, done.Status)

	open, _ := repo.CountOpenByFarm(ctx, farm.ID)
	assert.Equal(t, 0, open)

	require.NoError(t, svc.Delete(ctx, owner.ID, task.ID))
	gone, _ := repo.FindByID(ctx, task.ID)
	assert.Nil(t, gone)
}

func TestTaskWritesAreWriterOnly(t *testing.T) {
	w, _, _, svc := newTaskFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	viewer := w.addUser("Vic", "vic@example.com")
	w.addStaff(farm, viewer, types.RoleViewer)

	_, err := svc.Create(ctx, viewer.ID, &repository.Task{Title: "Fix fence"})
	assert.ErrorIs(t, err, ErrForbidden)

	task, err := svc.Create(ctx, owner.ID, &repository.Task{Title: "Fix fence"})
	require.NoError(t, err)

	// Viewers still read.
	got, err := svc.Get(ctx, viewer.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = svc.Complete(ctx, viewer.ID, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTaskWritesDropDashboardCache(t *testing.T) {
	w, _, dash, svc := newTaskFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")

	task, err := svc.Create(ctx, owner.ID, &repository.Task{Title: "Fix fence"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, owner.ID, task.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, task.ID))

	// Create, complete and delete each dropped the farm's cached summary.
	farms := dash.farms()
	require.Len(t, farms, 3)
	for _, id := range farms {
		assert.Equal(t, farm.ID, id)
	}

	// Failed writes leave the cache alone.
	_, err = svc.Complete(ctx, owner.ID, "no-such-task")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, dash.farms(), 3)
}
