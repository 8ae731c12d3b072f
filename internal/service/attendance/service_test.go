package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository/memory"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

type fixture struct {
	svc      *Service
	events   *memory.EventRepository
	students *memory.StudentRepository
	records  *memory.AttendanceRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		events:   memory.NewEventRepository(),
		students: memory.NewStudentRepository(),
		records:  memory.NewAttendanceRepository(),
	}
	mtr := metrics.NewMetrics(prometheus.NewRegistry(), "test", "attendance")
	f.svc = NewService(f.events, f.students, f.records, mtr, zerolog.Nop())

	require.NoError(t, f.events.Create(context.Background(), &model.Event{
		ID:        "evt-1",
		Name:      "General Assembly",
		Date:      time.Now().UTC(),
		StartTime: "09:00",
		EndTime:   "17:00",
	}))
	require.NoError(t, f.students.Create(context.Background(), &model.Student{
		ID: "2023-0001", Name: "Ana Reyes", Email: "ana@school.edu", Program: "BSIT", Year: "3",
	}))
	require.NoError(t, f.students.Create(context.Background(), &model.Student{
		ID: "2023-0002", Name: "Ben Cruz", Email: "ben@school.edu", Program: "BSCS", Year: "2",
	}))
	return f
}

func TestRecord(t *testing.T) {
	f := newFixture(t)

	record, err := f.svc.Record(context.Background(), "evt-1", "2023-0001", model.ActionIn)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", record.EventID)
	assert.Equal(t, "2023-0001", record.StudentID)
	assert.False(t, record.Timestamp.IsZero(), "store assigns the timestamp")
}

func TestRecordUnknownEventAndStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), "evt-missing", "2023-0001", model.ActionIn)
	assert.ErrorIs(t, err, model.ErrEventNotFound)

	_, err = f.svc.Record(context.Background(), "evt-1", "9999-0000", model.ActionIn)
	assert.ErrorIs(t, err, model.ErrStudentNotFound)
}

func TestRecordDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), "evt-1", "2023-0001", model.ActionIn)
	require.NoError(t, err)

	_, err = f.svc.Record(context.Background(), "evt-1", "2023-0001", model.ActionIn)
	assert.ErrorIs(t, err, model.ErrDuplicateRecord)

	// Same student, other action is a distinct tuple.
	_, err = f.svc.Record(context.Background(), "evt-1", "2023-0001", model.ActionOut)
	assert.NoError(t, err)
}

func TestRecordConcurrentSameTuple(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Record(context.Background(), "evt-1", "2023-0001", model.ActionIn)
		}(i)
	}
	wg.Wait()

	accepted, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, model.ErrDuplicateRecord):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted, "exactly one submission wins the race")
	assert.Equal(t, workers-1, duplicates)

	records, err := f.records.QueryByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecordByEmail(t *testing.T) {
	f := newFixture(t)

	record, err := f.svc.RecordByEmail(context.Background(), "evt-1", "ANA@school.edu", model.ActionIn)
	require.NoError(t, err)
	assert.Equal(t, "2023-0001", record.StudentID)

	_, err = f.svc.RecordByEmail(context.Background(), "evt-1", "nobody@school.edu", model.ActionIn)
	assert.ErrorIs(t, err, model.ErrStudentNotFound)
}

func TestGetByEventOrdered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, "evt-1", "2023-0001", model.ActionIn)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, "evt-1", "2023-0002", model.ActionIn)
	require.NoError(t, err)

	records, err := f.svc.GetByEvent(ctx, "evt-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[1].Timestamp.Before(records[0].Timestamp), "oldest first")
}

func TestEventSheetPivot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, "evt-1", "2023-0001", model.ActionIn)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, "evt-1", "2023-0002", model.ActionIn)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, "evt-1", "2023-0001", model.ActionOut)
	require.NoError(t, err)

	rows, err := f.svc.EventSheet(ctx, "evt-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2023-0001", rows[0].StudentID)
	assert.Equal(t, "Ana Reyes", rows[0].Name)
	require.NotNil(t, rows[0].TimeIn)
	require.NotNil(t, rows[0].TimeOut)
	assert.False(t, rows[0].TimeOut.Before(*rows[0].TimeIn))

	assert.Equal(t, "2023-0002", rows[1].StudentID)
	require.NotNil(t, rows[1].TimeIn)
	assert.Nil(t, rows[1].TimeOut)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, "evt-1", "2023-0001", model.ActionIn)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.UpcomingEvents)
	assert.Equal(t, 1, stats.TodayAttendance)
	require.Len(t, stats.DailyCounts, 30)
	last := stats.DailyCounts[len(stats.DailyCounts)-1]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), last.Date)
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, 0, stats.DailyCounts[0].Count)
}
