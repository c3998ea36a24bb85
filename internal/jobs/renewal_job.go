package jobs

import (
	"context"
	"time"

	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// RenewalScanJobName is the name of the renewal scanner job
const RenewalScanJobName = "renewal_scan"

// RenewalScanService defines the interface the renewal job drives.
type RenewalScanService interface {
	// SyncFromPolicyBook refreshes the local renewal table from the policy
	// administration system. Returns counts for synced and failed policies.
	SyncFromPolicyBook(ctx context.Context) (synced int, failed int, err error)

	// Scan runs one reminder/lapse pass over the tracked policies.
	Scan(ctx context.Context) (*service.RenewalScanResult, error)
}

// RenewalJob runs the daily renewal pipeline: policy book sync followed by
// the reminder/lapse scan.
type RenewalJob struct {
	renewalService RenewalScanService
	logger         *zap.Logger
	timeout        time.Duration
}

// NewRenewalJob creates a new renewal scanner job.
// The timeout bounds a single run.
func NewRenewalJob(renewalService RenewalScanService, logger *zap.Logger, timeout time.Duration) *RenewalJob {
	return &RenewalJob{
		renewalService: renewalService,
		logger:         logger,
		timeout:        timeout,
	}
}

// Run executes the renewal job.
// This is called by the scheduler according to the cron expression.
func (j *RenewalJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting renewal job")

	synced, failed, err := j.renewalService.SyncFromPolicyBook(ctx)
	if err != nil {
		j.logger.Error("policy book sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Run the scan anyway over whatever the table already holds
	}

	result, err := j.renewalService.Scan(ctx)
	if err != nil {
		j.logger.Error("renewal scan failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("renewal job completed",
		zap.Int("policies_synced", synced),
		zap.Int("policies_failed", failed),
		zap.Int("scanned", result.Scanned),
		zap.Int("reminders_30", result.Reminders30),
		zap.Int("reminders_15", result.Reminders15),
		zap.Int("pool_assigned", result.PoolAssigned),
		zap.Duration("duration", time.Since(start)))
}

// RegisterRenewalJob registers the renewal job with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 0 7 * * *" for
// 07:00 daily with the seconds field). If runOnStartup is true, one pass
// runs immediately in a background goroutine so it doesn't block startup.
func RegisterRenewalJob(scheduler *Scheduler, renewalService RenewalScanService, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewRenewalJob(renewalService, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(RenewalScanJobName, cronExpr, job.Run)
}
