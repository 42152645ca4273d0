package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/events"
	"github.com/aquanet/water-service/internal/repository"
)

// In-memory repository fakes backing the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		for _, role := range roles {
			if user.Role == role {
				result = append(result, *user)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memUserRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type memComplaintRepo struct {
	mu         sync.Mutex
	complaints []*domain.Complaint
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{}
}

func (r *memComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	complaint.ID = uuid.NewString()
	complaint.CreatedAt = time.Now()
	complaint.UpdatedAt = complaint.CreatedAt
	clone := *complaint
	r.complaints = append(r.complaints, &clone)
	return nil
}

func (r *memComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.complaints {
		if existing.ID == complaint.ID {
			clone := *complaint
			r.complaints[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, complaint := range r.complaints {
		if complaint.ID == id {
			clone := *complaint
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memComplaintRepo) matches(complaint *domain.Complaint, filter repository.ComplaintFilter) bool {
	if filter.SubmittedBy != nil && complaint.SubmittedBy != *filter.SubmittedBy {
		return false
	}
	if filter.AssignedTo != nil && (complaint.AssignedTo == nil || *complaint.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.Status != nil && complaint.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && complaint.Category != *filter.Category {
		return false
	}
	if filter.Location != nil && !strings.Contains(strings.ToLower(complaint.Location), strings.ToLower(*filter.Location)) {
		return false
	}
	return true
}

func (r *memComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Complaint
	for _, complaint := range r.complaints {
		if r.matches(complaint, filter) {
			result = append(result, *complaint)
		}
	}
	return result, nil
}

func (r *memComplaintRepo) CountWithFilter(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return int64(len(items)), err
}

func (r *memComplaintRepo) ListAll(_ context.Context) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Complaint, 0, len(r.complaints))
	for _, complaint := range r.complaints {
		result = append(result, *complaint)
	}
	return result, nil
}

func (r *memComplaintRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.complaints)), nil
}

func (r *memComplaintRepo) CountByStatus(_ context.Context, status domain.ComplaintStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, complaint := range r.complaints {
		if complaint.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memComplaintRepo) CountByStatusNot(_ context.Context, status domain.ComplaintStatus) (int64, error) {
	total, _ := r.CountAll(context.Background())
	matching, _ := r.CountByStatus(context.Background(), status)
	return total - matching, nil
}

func (r *memComplaintRepo) GroupByCategory(_ context.Context) ([]repository.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return groupCounts(r.complaints, func(c *domain.Complaint) string { return string(c.Category) }), nil
}

func (r *memComplaintRepo) GroupByStatus(_ context.Context) ([]repository.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return groupCounts(r.complaints, func(c *domain.Complaint) string { return string(c.Status) }), nil
}

func (r *memComplaintRepo) TopLocations(_ context.Context, limit int) ([]repository.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := groupCounts(r.complaints, func(c *domain.Complaint) string { return c.Location })
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

func groupCounts[T any](items []*T, key func(*T) string) []repository.GroupCount {
	byKey := map[string]int64{}
	for _, item := range items {
		byKey[key(item)]++
	}
	result := make([]repository.GroupCount, 0, len(byKey))
	for k, count := range byKey {
		result = append(result, repository.GroupCount{Key: k, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks []*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{}
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	r.tasks = append(r.tasks, &clone)
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tasks {
		if existing.ID == task.ID {
			clone := *task
			r.tasks[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.ID == id {
			clone := *task
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTaskRepo) matches(task *domain.Task, filter repository.TaskFilter) bool {
	if filter.AssignedTo != nil && task.AssignedTo != *filter.AssignedTo {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	return true
}

func (r *memTaskRepo) ListWithFilter(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Task
	for _, task := range r.tasks {
		if r.matches(task, filter) {
			result = append(result, *task)
		}
	}
	return result, nil
}

func (r *memTaskRepo) CountWithFilter(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return int64(len(items)), err
}

func (r *memTaskRepo) ListAll(_ context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		result = append(result, *task)
	}
	return result, nil
}

func (r *memTaskRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tasks)), nil
}

func (r *memTaskRepo) CountByStatuses(_ context.Context, statuses []domain.TaskStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, task := range r.tasks {
		for _, status := range statuses {
			if task.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *memTaskRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, task := range r.tasks {
		if task.DueDate != nil && task.DueDate.Before(now) && !task.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (r *memTaskRepo) GroupByStatus(_ context.Context) ([]repository.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return groupCounts(r.tasks, func(t *domain.Task) string { return string(t.Status) }), nil
}

func (r *memTaskRepo) GroupByPriority(_ context.Context) ([]repository.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return groupCounts(r.tasks, func(t *domain.Task) string { return string(t.Priority) }), nil
}

type memReadingRepo struct {
	mu       sync.Mutex
	readings []*domain.MeterReading
}

func newMemReadingRepo() *memReadingRepo {
	return &memReadingRepo{}
}

func (r *memReadingRepo) Create(_ context.Context, reading *domain.MeterReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = uuid.NewString()
	reading.CreatedAt = time.Now()
	reading.UpdatedAt = reading.CreatedAt
	clone := *reading
	r.readings = append(r.readings, &clone)
	return nil
}

func (r *memReadingRepo) UpdateStatus(_ context.Context, id string, status domain.ReadingStatus) (*domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reading := range r.readings {
		if reading.ID == id {
			reading.Status = status
			reading.UpdatedAt = time.Now()
			clone := *reading
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memReadingRepo) GetByID(_ context.Context, id string) (*domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reading := range r.readings {
		if reading.ID == id {
			clone := *reading
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memReadingRepo) LatestForMeter(_ context.Context, meterNumber string) (*domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.MeterReading
	for _, reading := range r.readings {
		if reading.MeterNumber != meterNumber {
			continue
		}
		if latest == nil || reading.ReadingDate.After(latest.ReadingDate) ||
			(reading.ReadingDate.Equal(latest.ReadingDate) && reading.CreatedAt.After(latest.CreatedAt)) {
			latest = reading
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *latest
	return &clone, nil
}

func (r *memReadingRepo) ListWithFilter(_ context.Context, filter repository.ReadingFilter) ([]domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.MeterReading
	for _, reading := range r.readings {
		if filter.MeterNumber != nil && !strings.Contains(strings.ToLower(reading.MeterNumber), strings.ToLower(*filter.MeterNumber)) {
			continue
		}
		if filter.Status != nil && reading.Status != *filter.Status {
			continue
		}
		result = append(result, *reading)
	}
	return result, nil
}

func (r *memReadingRepo) CountWithFilter(ctx context.Context, filter repository.ReadingFilter) (int64, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return int64(len(items)), err
}

func (r *memReadingRepo) ListByMeter(_ context.Context, meterNumber string) ([]domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.MeterReading
	for _, reading := range r.readings {
		if reading.MeterNumber == meterNumber {
			result = append(result, *reading)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReadingDate.After(result[j].ReadingDate) })
	return result, nil
}

func (r *memReadingRepo) ListAll(_ context.Context) ([]domain.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.MeterReading, 0, len(r.readings))
	for _, reading := range r.readings {
		result = append(result, *reading)
	}
	return result, nil
}

func (r *memReadingRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.readings)), nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// memCache is an in-memory SummaryCache.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}}
}

func (c *memCache) GetValue(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.values[key]
	return val, ok, nil
}

func (c *memCache) SetValue(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}
