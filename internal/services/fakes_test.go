package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/services"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*models.User)}
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == types.NormalizeEmail(email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByWorkspace(ctx context.Context, workspaceName string) (*models.User, error) {
	users, err := f.ListByWorkspace(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return &users[0], nil
}

func (f *fakeUsers) ListByWorkspace(_ context.Context, workspaceName string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.users {
		if u.WorkspaceKey == types.WorkspaceKey(workspaceName) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(user)
}

func (f *fakeUsers) CreateOwner(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Role == types.RoleAdmin && u.WorkspaceKey == types.WorkspaceKey(user.WorkspaceName) {
			return repository.ErrDuplicateWorkspace
		}
	}
	return f.insert(user)
}

func (f *fakeUsers) insert(user *models.User) error {
	if f.err != nil {
		return f.err
	}
	user.Email = types.NormalizeEmail(user.Email)
	user.WorkspaceKey = types.WorkspaceKey(user.WorkspaceName)
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, changes repository.ProfileChanges) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.JobTitle != nil {
		u.JobTitle = *changes.JobTitle
	}
	clone := *u
	return &clone, nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks []models.Task
	err   error
}

func (f *fakeTasks) List(_ context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Task{}
	for i := len(f.tasks) - 1; i >= 0; i-- {
		t := f.tasks[i]
		if t.WorkspaceName != filter.WorkspaceName {
			continue
		}
		if filter.Assignee != "" && t.Assignee != filter.Assignee {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTasks) Create(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	f.tasks = append(f.tasks, *task)
	return nil
}

func (f *fakeTasks) find(scope repository.TaskScope) int {
	for i, t := range f.tasks {
		if t.ID == scope.ID && t.WorkspaceName == scope.WorkspaceName && (scope.Assignee == "" || t.Assignee == scope.Assignee) {
			return i
		}
	}
	return -1
}

func (f *fakeTasks) Update(_ context.Context, scope repository.TaskScope, changes map[string]any) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(scope)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	t := &f.tasks[i]
	for column, value := range changes {
		switch column {
		case "name":
			t.Name = value.(string)
		case "description":
			t.Description = value.(string)
		case "priority":
			t.Priority = value.(string)
		case "status":
			t.Status = value.(string)
		case "due_date":
			due := value.(time.Time)
			t.DueDate = &due
		default:
			return nil, errors.New("unexpected column " + column)
		}
	}
	t.UpdatedAt = time.Now()
	clone := *t
	return &clone, nil
}

func (f *fakeTasks) Delete(_ context.Context, scope repository.TaskScope) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(scope)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	task := f.tasks[i]
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return &task, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []services.TaskEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event services.TaskEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingNotifier) Events() []services.TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]services.TaskEvent(nil), r.events...)
}
