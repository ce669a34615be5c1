// Package jobs provides the scheduled background sweeps of the fulfillment
// service.
//
// The jobs are cron-based (github.com/robfig/cron/v3, seconds precision) and
// drive the file lifecycle independently of the orchestrator.
//
// # Available Jobs
//
//  1. ExpiredFilesJob - deletes expired files of every enabled order type
//  2. FailedOrdersJob - deletes every file of failed product orders
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(uowFactory, deleteFilesHandler, settings, jobs.Config{
//		ExpiredFilesSchedule: "0 */10 * * * *",
//		FailedOrdersSchedule: "0 0 * * * *",
//	}, logger)
//	if err != nil {
//		return err
//	}
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll(ctx)
//
// # Error Handling
//
// A failed batch never stops a sweep: the remaining batches are still
// processed, the failure is logged, and the deletion handler raises the
// operational alert. A run that is still in progress when its schedule fires
// again is skipped.
package jobs
