package jobs

import (
	"fmt"
)

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	paymentSweepJob      *PaymentSweepJob
	notificationRelayJob *NotificationRelayJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(paymentSweepJob *PaymentSweepJob, notificationRelayJob *NotificationRelayJob) *JobManager {
	return &JobManager{
		paymentSweepJob:      paymentSweepJob,
		notificationRelayJob: notificationRelayJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start; jobs already started are stopped.
func (jm *JobManager) StartAll() error {
	return startAll(
		namedJob{"notification relay", jm.notificationRelayJob},
		namedJob{"payment sweep", jm.paymentSweepJob},
	)
}

// StopAll stops all scheduled jobs and waits for running passes to finish.
func (jm *JobManager) StopAll() {
	jm.paymentSweepJob.Stop()
	jm.notificationRelayJob.Stop()
}

type namedJob struct {
	name string
	job  job
}

func startAll(jobs ...namedJob) error {
	for i, j := range jobs {
		if err := j.job.Start(); err != nil {
			for _, started := range jobs[:i] {
				started.job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	return nil
}
