package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/repository"
)

const summaryCacheKey = "dashboard:summary"

// SummaryCache is the read-through cache for the dashboard summary.
// *persistence.Redis satisfies it; a nil cache disables caching.
type SummaryCache interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error
}

// DashboardSummary is the aggregate view over all collections.
type DashboardSummary struct {
	Complaints struct {
		Total    int64 `json:"total"`
		Open     int64 `json:"open"`
		Resolved int64 `json:"resolved"`
	} `json:"complaints"`
	MeterReadings struct {
		Total int64 `json:"total"`
	} `json:"meter_readings"`
	Tasks struct {
		Total     int64 `json:"total"`
		Pending   int64 `json:"pending"`
		Completed int64 `json:"completed"`
	} `json:"tasks"`
	Users struct {
		Total int64 `json:"total"`
	} `json:"users"`
	Charts struct {
		ComplaintsByCategory []repository.GroupCount `json:"complaints_by_category"`
		ComplaintsByStatus   []repository.GroupCount `json:"complaints_by_status"`
		ComplaintsByLocation []repository.GroupCount `json:"complaints_by_location"`
		TasksByStatus        []repository.GroupCount `json:"tasks_by_status"`
	} `json:"charts"`
}

// DashboardService computes read-side aggregations.
type DashboardService struct {
	complaints repository.ComplaintRepository
	tasks      repository.TaskRepository
	readings   repository.MeterReadingRepository
	users      repository.UserRepository
	cache      SummaryCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(
	complaints repository.ComplaintRepository,
	tasks repository.TaskRepository,
	readings repository.MeterReadingRepository,
	users repository.UserRepository,
	cache SummaryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		complaints: complaints,
		tasks:      tasks,
		readings:   readings,
		users:      users,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Summary builds the dashboard aggregate, serving from cache when fresh.
// Cache failures degrade to a direct database read.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if raw, ok, err := s.cache.GetValue(ctx, summaryCacheKey); err == nil && ok {
			var cached DashboardSummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.SetValue(ctx, summaryCacheKey, string(raw), s.cacheTTL); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	if summary.Complaints.Total, err = s.complaints.CountAll(ctx); err != nil {
		return nil, err
	}
	if summary.Complaints.Open, err = s.complaints.CountByStatusNot(ctx, domain.ComplaintStatusResolved); err != nil {
		return nil, err
	}
	if summary.Complaints.Resolved, err = s.complaints.CountByStatus(ctx, domain.ComplaintStatusResolved); err != nil {
		return nil, err
	}
	if summary.MeterReadings.Total, err = s.readings.CountAll(ctx); err != nil {
		return nil, err
	}
	if summary.Tasks.Total, err = s.tasks.CountAll(ctx); err != nil {
		return nil, err
	}
	if summary.Tasks.Pending, err = s.tasks.CountByStatuses(ctx, []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress}); err != nil {
		return nil, err
	}
	if summary.Tasks.Completed, err = s.tasks.CountByStatuses(ctx, []domain.TaskStatus{domain.TaskStatusCompleted}); err != nil {
		return nil, err
	}
	if summary.Users.Total, err = s.users.CountAll(ctx); err != nil {
		return nil, err
	}
	if summary.Charts.ComplaintsByCategory, err = s.complaints.GroupByCategory(ctx); err != nil {
		return nil, err
	}
	if summary.Charts.ComplaintsByStatus, err = s.complaints.GroupByStatus(ctx); err != nil {
		return nil, err
	}
	if summary.Charts.ComplaintsByLocation, err = s.complaints.TopLocations(ctx, 10); err != nil {
		return nil, err
	}
	if summary.Charts.TasksByStatus, err = s.tasks.GroupByStatus(ctx); err != nil {
		return nil, err
	}
	return &summary, nil
}
