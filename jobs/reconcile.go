package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"hotel-frontdesk/services"
)

// TaskRoomStatusReconcile rewrites cached room statuses from booking rows.
const TaskRoomStatusReconcile = "rooms:reconcile"

// RoomReconciler is implemented by services.AvailabilityService.
type RoomReconciler interface {
	ReconcileRoomStatuses(ctx context.Context) (services.ReconcileReport, error)
}

// NewRoomStatusReconcileTask builds the task scheduled by cron.
func NewRoomStatusReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskRoomStatusReconcile, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(0), asynq.Timeout(2*time.Minute))
}

// ReconcileJob is the asynq handler for TaskRoomStatusReconcile.
type ReconcileJob struct {
	Reconciler RoomReconciler
	Logger     *logrus.Logger
	Metrics    *Metrics
}

func NewReconcileJob(reconciler RoomReconciler, logger *logrus.Logger, metrics *Metrics) *ReconcileJob {
	return &ReconcileJob{Reconciler: reconciler, Logger: logger, Metrics: metrics}
}

// Handle executes one reconciliation pass.
func (j *ReconcileJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Reconciler == nil {
		return errors.New("room reconcile: handler not configured")
	}
	tracker := j.Metrics.Track(TaskRoomStatusReconcile)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	report, err := j.Reconciler.ReconcileRoomStatuses(ctx)
	if err != nil {
		j.logger().WithError(err).Error("room status reconciliation failed")
		return err
	}

	j.Metrics.AddRepairs(len(report.Repaired))
	j.Metrics.AddOverlaps(len(report.Anomalies))
	j.logger().WithFields(logrus.Fields{
		"rooms":       report.Checked,
		"repaired":    len(report.Repaired),
		"anomalies":   len(report.Anomalies),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("room status reconciliation completed")
	return nil
}

func (j *ReconcileJob) logger() *logrus.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return logrus.StandardLogger()
}
