// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// (six-field specs, seconds first).
//
// # Available Jobs
//
// 1. PaymentSweepJob - reconciles orders still awaiting payment with the gateway,
// expires stale ones and sends one payment reminder per order
// 2. NotificationRelayJob - publishes pending notification outbox rows to the broker
//
// # Usage
//
//	sweep := jobs.NewPaymentSweepJob(sweepHandler, cfg.SweepSchedule, time.Minute, logger)
//	relay := jobs.NewNotificationRelayJob(relayHandler, cfg.RelaySchedule, 30*time.Second, logger)
//	jobManager := jobs.NewJobManager(sweep, relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Overlap
//
// Both jobs skip a tick while the previous pass is still running. The sweep is
// safe to re-run over the same orders; the relay locks the rows it publishes.
//
// # Error Handling
//
// - Sweep failures for single orders are logged as warnings and the pass continues
// - An empty outbox or no unpaid orders is not logged above debug level
// - Failed job starts will stop any already running jobs
package jobs
