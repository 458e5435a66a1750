package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TimeReportRow is one task's tracked time with its project/client names.
type TimeReportRow struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	TimeSpent   int64   `json:"time_spent"`
	ProjectName *string `json:"project_name"`
	ClientName  *string `json:"client_name"`
	Date        string  `json:"date"`
}

// ProjectReportRow aggregates tracked time per project.
type ProjectReportRow struct {
	ID             uint    `json:"id"`
	ProjectName    string  `json:"project_name"`
	ClientName     *string `json:"client_name"`
	TaskCount      int64   `json:"task_count"`
	TotalTime      int64   `json:"total_time"`
	AvgTimePerTask float64 `json:"avg_time_per_task"`
	FirstTask      string  `json:"first_task"`
	LastActivity   string  `json:"last_activity"`
}

// ClientReportRow aggregates tracked time per client.
type ClientReportRow struct {
	ID             uint    `json:"id"`
	ClientName     string  `json:"client_name"`
	ProjectCount   int64   `json:"project_count"`
	TaskCount      int64   `json:"task_count"`
	TotalTime      int64   `json:"total_time"`
	AvgTimePerTask float64 `json:"avg_time_per_task"`
}

// ProductivitySummary is the headline dashboard numbers.
type ProductivitySummary struct {
	TotalTasks    int64   `json:"total_tasks"`
	TotalTime     int64   `json:"total_time"`
	AvgTaskTime   float64 `json:"avg_task_time"`
	TrackedTasks  int64   `json:"tracked_tasks"`
	ActiveTasks   int64   `json:"active_tasks"`
	TasksToday    int64   `json:"tasks_today"`
	TasksThisWeek int64   `json:"tasks_this_week"`
}

// DailyTrendRow is one day's tracked activity over the last 30 days.
type DailyTrendRow struct {
	Date           string `json:"date"`
	TasksWorked    int64  `json:"tasks_worked"`
	TimeSpent      int64  `json:"time_spent"`
	ProjectsActive int64  `json:"projects_active"`
}

// ReportRepository runs the read-only aggregation queries.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TimeReport lists tasks with tracked time created between the two dates
// (inclusive, YYYY-MM-DD).
func (r *ReportRepository) TimeReport(ctx context.Context, startDate, endDate string) ([]TimeReportRow, error) {
	var rows []TimeReportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.title, t.time_spent,
		       p.name AS project_name,
		       c.name AS client_name,
		       date(t.created_at) AS date
		FROM tasks t
		LEFT JOIN projects p ON t.project_id = p.id
		LEFT JOIN clients c ON p.client_id = c.id
		WHERE t.time_spent > 0
		  AND date(t.created_at) BETWEEN ? AND ?
		ORDER BY t.created_at DESC`, startDate, endDate).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("time report: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) ProjectReport(ctx context.Context) ([]ProjectReportRow, error) {
	var rows []ProjectReportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.name AS project_name,
		       c.name AS client_name,
		       COUNT(t.id) AS task_count,
		       COALESCE(SUM(t.time_spent), 0) AS total_time,
		       COALESCE(AVG(t.time_spent), 0) AS avg_time_per_task,
		       COALESCE(MIN(date(t.created_at)), '') AS first_task,
		       COALESCE(MAX(date(t.created_at)), '') AS last_activity
		FROM projects p
		LEFT JOIN clients c ON p.client_id = c.id
		LEFT JOIN tasks t ON p.id = t.project_id
		GROUP BY p.id, p.name, c.name
		HAVING task_count > 0
		ORDER BY total_time DESC`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("project report: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) ClientReport(ctx context.Context) ([]ClientReportRow, error) {
	var rows []ClientReportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.name AS client_name,
		       COUNT(DISTINCT p.id) AS project_count,
		       COUNT(t.id) AS task_count,
		       COALESCE(SUM(t.time_spent), 0) AS total_time,
		       COALESCE(AVG(t.time_spent), 0) AS avg_time_per_task
		FROM clients c
		LEFT JOIN projects p ON c.id = p.client_id
		LEFT JOIN tasks t ON p.id = t.project_id
		GROUP BY c.id, c.name
		HAVING task_count > 0
		ORDER BY total_time DESC`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("client report: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) ProductivitySummary(ctx context.Context) (*ProductivitySummary, error) {
	var s ProductivitySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(id) AS total_tasks,
		       COALESCE(SUM(time_spent), 0) AS total_time,
		       COALESCE(AVG(time_spent), 0) AS avg_task_time,
		       COUNT(CASE WHEN time_spent > 0 THEN 1 END) AS tracked_tasks,
		       COUNT(CASE WHEN last_start IS NOT NULL THEN 1 END) AS active_tasks,
		       COUNT(CASE WHEN date(created_at) = date('now') THEN 1 END) AS tasks_today,
		       COUNT(CASE WHEN strftime('%Y-%W', created_at) = strftime('%Y-%W', 'now') THEN 1 END) AS tasks_this_week
		FROM tasks`).Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("productivity summary: %w", err)
	}
	return &s, nil
}

// DailyTrends returns per-day tracked activity for the last 30 days.
func (r *ReportRepository) DailyTrends(ctx context.Context) ([]DailyTrendRow, error) {
	var rows []DailyTrendRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT date(created_at) AS date,
		       COUNT(id) AS tasks_worked,
		       COALESCE(SUM(time_spent), 0) AS time_spent,
		       COUNT(DISTINCT CASE WHEN project_id IS NOT NULL THEN project_id END) AS projects_active
		FROM tasks
		WHERE time_spent > 0
		  AND created_at >= date('now', '-30 days')
		GROUP BY date(created_at)
		ORDER BY date DESC
		LIMIT 30`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily trends: %w", err)
	}
	return rows, nil
}
