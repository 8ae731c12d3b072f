package postgres

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

func TestTrackDatabaseOperations(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "attend", "test")
	repo := &attendanceRepository{metrics: m}

	repo.track("insert_attendance", nil)
	repo.track("insert_attendance", nil)
	repo.track("insert_attendance", model.ErrDuplicateRecord)
	repo.track("insert_attendance", errors.New("connection reset"))
	repo.track("count_attendance", nil)

	ops := m.DatabaseOperations
	assert.Equal(t, 2.0, testutil.ToFloat64(ops.WithLabelValues("insert_attendance", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("insert_attendance", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("insert_attendance", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("count_attendance", "success")))
}

func TestTrackWithoutMetrics(t *testing.T) {
	repo := &attendanceRepository{}

	assert.NotPanics(t, func() {
		repo.track("insert_attendance", nil)
	})
}
