package service

import (
	"context"
	"time"

	"taskagent/internal/recurrence"
	"taskagent/internal/repository"
)

// ProductivityReport is the dashboard payload: headline numbers plus the
// 30-day trend.
type ProductivityReport struct {
	Summary     *repository.ProductivitySummary `json:"summary"`
	DailyTrends []repository.DailyTrendRow      `json:"daily_trends"`
}

// ReportService resolves report periods and runs the aggregation
// queries.
type ReportService struct {
	repo *repository.ReportRepository
	now  func() time.Time
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo, now: time.Now}
}

// TimeReport lists tracked tasks for a named period (today, week, month)
// or an explicit start/end range. An explicit range wins over the period.
func (s *ReportService) TimeReport(ctx context.Context, period, startDate, endDate string) ([]repository.TimeReportRow, error) {
	if startDate != "" || endDate != "" {
		if _, err := recurrence.ParseDate(startDate); err != nil {
			return nil, invalidf("%v", err)
		}
		if _, err := recurrence.ParseDate(endDate); err != nil {
			return nil, invalidf("%v", err)
		}
		return s.repo.TimeReport(ctx, startDate, endDate)
	}

	now := s.now()
	today := now.Format(recurrence.DateLayout)
	switch period {
	case "", "week":
		monday := now.AddDate(0, 0, -mondayOffset(now.Weekday()))
		return s.repo.TimeReport(ctx, monday.Format(recurrence.DateLayout), today)
	case "today":
		return s.repo.TimeReport(ctx, today, today)
	case "month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return s.repo.TimeReport(ctx, first.Format(recurrence.DateLayout), today)
	default:
		return nil, invalidf("unknown report period %q", period)
	}
}

func (s *ReportService) ProjectReport(ctx context.Context) ([]repository.ProjectReportRow, error) {
	return s.repo.ProjectReport(ctx)
}

func (s *ReportService) ClientReport(ctx context.Context) ([]repository.ClientReportRow, error) {
	return s.repo.ClientReport(ctx)
}

func (s *ReportService) Productivity(ctx context.Context) (*ProductivityReport, error) {
	summary, err := s.repo.ProductivitySummary(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.repo.DailyTrends(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductivityReport{Summary: summary, DailyTrends: trends}, nil
}

// mondayOffset is how many days back the week's Monday is.
func mondayOffset(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}
