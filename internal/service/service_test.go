package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskagent/internal/model"
	"taskagent/internal/repository"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database. cache=shared keeps every
// pooled connection on the same store; the unique name isolates tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type fixture struct {
	db         *gorm.DB
	taskRepo   *repository.TaskRepository
	compRepo   *repository.CompletionRepository
	hiddenRepo *repository.HiddenDateRepository
	tasks      *TaskService
	overlay    *CompletionService
	timers     *TimerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	compRepo := repository.NewCompletionRepository(db)
	hiddenRepo := repository.NewHiddenDateRepository(db)
	return &fixture{
		db:         db,
		taskRepo:   taskRepo,
		compRepo:   compRepo,
		hiddenRepo: hiddenRepo,
		tasks:      NewTaskService(taskRepo, hiddenRepo),
		overlay:    NewCompletionService(compRepo, hiddenRepo),
		timers:     NewTimerService(taskRepo, compRepo),
	}
}

func (f *fixture) createRecurring(t *testing.T, freq string, interval int, startDate string) *model.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), TaskInput{
		Title:              "recurring " + freq,
		IsRecurring:        true,
		RecurrenceType:     freq,
		RecurrenceInterval: interval,
		StartDate:          startDate,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) createOneOff(t *testing.T, title, startDate string) *model.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), TaskInput{Title: title, StartDate: startDate})
	require.NoError(t, err)
	return task
}

// fixedClock pins a service clock to a settable instant.
type fixedClock struct {
	at time.Time
}

func (c *fixedClock) now() time.Time { return c.at }

func (c *fixedClock) advance(d time.Duration) { c.at = c.at.Add(d) }
