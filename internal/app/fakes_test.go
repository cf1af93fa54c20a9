package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

var fakeEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, common.NewError(common.CodeConflict, "email already registered", nil)
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = fakeEpoch.Add(time.Duration(u.ID) * time.Second)
	u.UpdatedAt = u.CreatedAt
	stored := u
	r.byID[u.ID] = &stored
	return &u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

func (r *fakeUserRepo) add(email string, role user.Role) user.Identity {
	u, err := r.Create(context.Background(), user.User{Email: email, PasswordHash: "hashed:secret", Name: "User " + email, Role: role})
	if err != nil {
		panic(err)
	}
	return user.Identity{ID: u.ID, Role: u.Role}
}

type fakeJobRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*job.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{byID: make(map[int64]*job.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	j.ID = r.nextID
	j.CreatedAt = fakeEpoch.Add(time.Duration(j.ID) * time.Second)
	j.UpdatedAt = j.CreatedAt
	stored := j
	r.byID[j.ID] = &stored
	return &j, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[j.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	stored := j
	r.byID[j.ID] = &stored
	return &j, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.NewError(common.CodeNotFound, "job not found", nil)
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	copied := *j
	return &copied, nil
}

func (r *fakeJobRepo) FindOpenByTitle(ctx context.Context, title string, excludeID int64) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.byID {
		if j.Title == title && j.Status != job.StatusClosed && j.ID != excludeID {
			copied := *j
			return &copied, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "job not found", nil)
}

func (r *fakeJobRepo) List(ctx context.Context, filter job.Filter) ([]job.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []job.Job
	for _, j := range r.byID {
		if filter.Title != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.Type != "" && j.Type != filter.Type {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, j.Status) {
			continue
		}
		matched = append(matched, *j)
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].ID > matched[b].ID })
	return window(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *fakeJobRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *fakeJobRepo) add(title string, status job.Status) *job.Job {
	j, _ := r.Create(context.Background(), job.Job{
		Title: title, Description: "Description of " + title, Company: "Acme", Location: "Berlin",
		Type: job.TypeFullTime, Status: status, PostedBy: 1,
	})
	return j
}

func containsStatus(list []job.Status, s job.Status) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

type fakeApplicationRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{byID: make(map[int64]*application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.JobID == app.JobID && existing.UserID == app.UserID {
			return nil, common.NewError(common.CodeConflict, "already applied to this job", nil)
		}
	}
	r.nextID++
	app.ID = r.nextID
	app.CreatedAt = fakeEpoch.Add(time.Duration(app.ID) * time.Second)
	app.UpdatedAt = app.CreatedAt
	stored := app
	r.byID[app.ID] = &stored
	return &app, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	copied := *app
	return &copied, nil
}

func (r *fakeApplicationRepo) FindByJobAndUser(ctx context.Context, jobID, userID int64) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.byID {
		if app.JobID == jobID && app.UserID == userID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id int64, status application.Status) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.Status = status
	app.UpdatedAt = app.UpdatedAt.Add(time.Minute)
	copied := *app
	return &copied, nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, filter application.Filter) ([]application.Application, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []application.Application
	for _, app := range r.byID {
		if filter.JobID != 0 && app.JobID != filter.JobID {
			continue
		}
		if filter.UserID != 0 && app.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		matched = append(matched, *app)
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].ID > matched[b].ID })
	return window(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *fakeApplicationRepo) CountByJob(ctx context.Context, jobID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, app := range r.byID {
		if app.JobID == jobID {
			count++
		}
	}
	return count, nil
}

func (r *fakeApplicationRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// racyApplicationRepo never sees an existing row on lookup, so only the
// insert can detect a duplicate.
type racyApplicationRepo struct {
	*fakeApplicationRepo
}

func (r racyApplicationRepo) FindByJobAndUser(ctx context.Context, jobID, userID int64) (*application.Application, error) {
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(userID int64, role string, ttl time.Duration) (string, time.Time, error) {
	return fmt.Sprintf("token-%d-%s", userID, role), fakeEpoch.Add(ttl), nil
}
