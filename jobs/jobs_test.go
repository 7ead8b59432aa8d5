package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/availability"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
)

type stubReconciler struct {
	report services.ReconcileReport
	err    error
	calls  int
}

func (s *stubReconciler) ReconcileRoomStatuses(context.Context) (services.ReconcileReport, error) {
	s.calls++
	return s.report, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestReconcileJob_RecordsRepairs(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	stub := &stubReconciler{report: services.ReconcileReport{
		Checked: 3,
		Repaired: []services.RoomRepair{
			{RoomID: 1, From: models.RoomAvailable, To: models.RoomOccupied},
			{RoomID: 2, From: models.RoomOccupied, To: models.RoomAvailable},
		},
		Anomalies: []availability.Anomaly{{RoomID: 3, BookingRoomIDs: []uint{7, 8}}},
	}}
	job := NewReconcileJob(stub, testLogger(), metrics)

	require.NoError(t, job.Handle(context.Background(), NewRoomStatusReconcileTask()))

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.repairs))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.overlaps))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(TaskRoomStatusReconcile, "success")))
}

func TestReconcileJob_Failure(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	boom := errors.New("db down")
	job := NewReconcileJob(&stubReconciler{err: boom}, testLogger(), metrics)

	err := job.Handle(context.Background(), NewRoomStatusReconcileTask())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues(TaskRoomStatusReconcile)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(TaskRoomStatusReconcile, "failure")))
}

func TestReconcileJob_NotConfigured(t *testing.T) {
	var job *ReconcileJob
	assert.Error(t, job.Handle(context.Background(), NewRoomStatusReconcileTask()))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddRepairs(3)
	m.AddOverlaps(1)
	assert.NoError(t, m.Track("x").End(nil))
}

func TestNewWorker_RegistersCron(t *testing.T) {
	mr := miniredis.RunT(t)

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Logger:    testLogger(),
		Handlers:  []TaskHandler{{Type: TaskRoomStatusReconcile, Handler: func(context.Context, *asynq.Task) error { return nil }}},
		Cron:      []CronRegistration{{Spec: "*/15 * * * *", Task: NewRoomStatusReconcileTask()}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Logger:    testLogger(),
		Cron:      []CronRegistration{{Spec: "not a cron", Task: NewRoomStatusReconcileTask()}},
	})
	assert.Error(t, err)
}
