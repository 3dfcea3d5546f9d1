package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Jobs is the work the scheduler triggers
type Jobs interface {
	RunReport(ctx context.Context) error
	RunAlertCheck(ctx context.Context) error
}

// Service handles scheduling of reporting tasks
type Service struct {
	config *config.Config
	jobs   Jobs
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, jobs Jobs) *Service {
	var opts []cron.Option
	opts = append(opts, cron.WithSeconds())
	if loc, err := time.LoadLocation(cfg.TimeZone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logrus.Warnf("Unknown time zone %q, scheduling in UTC", cfg.TimeZone)
		opts = append(opts, cron.WithLocation(time.UTC))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config: cfg,
		jobs:   jobs,
		cron:   cron.New(opts...),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ReportExpression returns the cron expression for the configured report schedule
func ReportExpression(schedule string) string {
	switch schedule {
	case "daily":
		// 9 AM every day
		return "0 0 9 * * *"
	default:
		// 9 AM on Mondays
		return "0 0 9 * * MON"
	}
}

// AlertExpression returns the cron expression for the visibility alert check
func AlertExpression(hours int) string {
	if hours <= 0 || hours > 23 {
		hours = 4
	}
	return fmt.Sprintf("0 0 */%d * * *", hours)
}

// Start begins the scheduled reporting
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(ReportExpression(s.config.ReportSchedule), func() {
		logrus.Info("Starting scheduled visibility report")
		if err := s.jobs.RunReport(s.ctx); err != nil {
			logrus.Errorf("Scheduled visibility report failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule report: %w", err)
	}

	_, err = s.cron.AddFunc(AlertExpression(s.config.AlertWindowHours), func() {
		logrus.Infof("Starting visibility alert check (%d-hour frequency)", s.config.AlertWindowHours)
		if err := s.jobs.RunAlertCheck(s.ctx); err != nil {
			logrus.Errorf("Visibility alert check failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule alert check: %w", err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s schedule (plus alert checks every %d hours)",
		s.config.ReportSchedule, s.config.AlertWindowHours)
	return nil
}

// Entries returns the number of registered jobs
func (s *Service) Entries() int {
	return len(s.cron.Entries())
}

// Stop stops the scheduler and cancels running jobs
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cancel()
		logrus.Info("Scheduler stopped")
	}
}
