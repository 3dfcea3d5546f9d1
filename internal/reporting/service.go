package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/aiseo/brand-visibility/internal/metrics"
	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/notifications"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const topSourcesInReport = 5

// Service builds periodic visibility reports and watches the primary brand
// for sudden visibility drops
type Service struct {
	config              *config.Config
	facade              *analytics.Facade
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	metrics             *Metrics
	mu                  sync.RWMutex
	now                 func() time.Time
}

// Metrics holds reporting run metrics
type Metrics struct {
	ReportsGenerated int                `json:"reports_generated"`
	AlertsSent       int                `json:"alerts_sent"`
	LastRun          time.Time          `json:"last_run"`
	LastRunDuration  string             `json:"last_run_duration"`
	LastReportID     string             `json:"last_report_id"`
	Visibility       map[string]float64 `json:"visibility"`
	ErrorCount       int                `json:"error_count"`
}

// NewService creates a new reporting service. notificationService may be nil
// when no channel is configured; reports are then only archived.
func NewService(cfg *config.Config, facade *analytics.Facade, storage storage.StorageInterface, notificationService notifications.NotificationInterface) *Service {
	return &Service{
		config:              cfg,
		facade:              facade,
		storage:             storage,
		notificationService: notificationService,
		metrics: &Metrics{
			Visibility: make(map[string]float64),
		},
		now: time.Now,
	}
}

// ReportWindow is the window covered by a scheduled report ending at now
func (s *Service) ReportWindow(now time.Time) models.Window {
	switch s.config.ReportSchedule {
	case "daily":
		return models.LastN(now, 24*time.Hour)
	default:
		return models.LastN(now, 7*24*time.Hour)
	}
}

// RunReport generates, archives and sends the report for the configured period
func (s *Service) RunReport(ctx context.Context) error {
	start := s.now()
	window := s.ReportWindow(start)
	logrus.Infof("Starting %s visibility report for %s - %s",
		s.config.ReportSchedule, window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))

	report, err := s.GenerateReport(window)
	if err != nil {
		s.recordError()
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if err := s.storeReport(ctx, report); err != nil {
		s.recordError()
		logrus.Errorf("Failed to archive report %s: %v", report.ID, err)
		return err
	}

	s.updateMetrics(report, s.now().Sub(start))

	if s.notificationService != nil {
		if err := s.notificationService.SendReport(report); err != nil {
			s.recordError()
			logrus.Errorf("Failed to send report %s: %v", report.ID, err)
			return err
		}
	}

	logrus.Infof("Visibility report %s completed in %v", report.ID, s.now().Sub(start))
	return nil
}

// GenerateReport builds a report over window without side effects
func (s *Service) GenerateReport(window models.Window) (*models.Report, error) {
	brands, err := s.facade.ListBrandsWithMetrics(window)
	if err != nil {
		return nil, err
	}
	sources, err := s.facade.ListSources()
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		Period:      s.config.ReportSchedule,
		Window:      window,
		Brands:      make([]models.BrandSummary, 0, len(brands)),
		TopSources:  sources,
	}
	if len(report.TopSources) > topSourcesInReport {
		report.TopSources = report.TopSources[:topSourcesInReport]
	}

	for _, bm := range brands {
		summary := summarize(bm)
		report.Brands = append(report.Brands, summary)
		if bm.Brand.Kind == models.BrandPrimary && report.Primary == nil {
			primary := summary
			report.Primary = &primary
		}
		if bm.Metric.TotalRuns > report.TotalRuns {
			report.TotalRuns = bm.Metric.TotalRuns
		}
	}

	return report, nil
}

func summarize(bm analytics.BrandMetrics) models.BrandSummary {
	return models.BrandSummary{
		BrandID:     bm.Brand.ID,
		Name:        bm.Brand.DisplayName,
		Kind:        bm.Brand.Kind,
		Visibility:  bm.Metric.Visibility,
		AvgPosition: analytics.RoundTenth(bm.Metric.AvgPosition),
		Mentions:    bm.Metric.MentionCount,
		Sentiment:   bm.Metric.SentimentCounts,
		Trend:       bm.Trend,
	}
}

func (s *Service) storeReport(ctx context.Context, report *models.Report) error {
	if s.storage == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return s.storage.Store(ctx, storage.ReportBlobName(report.GeneratedAt), data)
}

// RunAlertCheck compares the primary brand's visibility over the alert window
// with the window before it and sends an alert on a drop beyond the
// configured threshold
func (s *Service) RunAlertCheck(ctx context.Context) error {
	now := s.now()
	window := models.LastN(now, time.Duration(s.config.AlertWindowHours)*time.Hour)
	logrus.Infof("Starting visibility alert check (%dh window)", s.config.AlertWindowHours)

	brands, err := s.facade.ListBrandsWithMetrics(window)
	if err != nil {
		s.recordError()
		return fmt.Errorf("failed to aggregate brands: %w", err)
	}

	alert := s.evaluateAlert(brands, now)
	if alert == nil {
		logrus.Info("No visibility alerts")
		return nil
	}

	logrus.Infof("Visibility alert %s: %s", alert.Type, alert.Message)

	if s.storage != nil {
		data, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		if err := s.storage.Store(ctx, storage.AlertBlobName(now), data); err != nil {
			s.recordError()
			return fmt.Errorf("failed to archive alert: %w", err)
		}
	}

	if s.notificationService != nil {
		if err := s.notificationService.SendAlert(alert); err != nil {
			s.recordError()
			return fmt.Errorf("failed to send alert: %w", err)
		}
	}

	s.mu.Lock()
	s.metrics.AlertsSent++
	s.mu.Unlock()
	metrics.AlertsSent.WithLabelValues(alert.Type).Inc()

	return nil
}

// evaluateAlert returns an alert when the primary brand dropped by at least
// the threshold. Provisional trends never alert.
func (s *Service) evaluateAlert(brands []analytics.BrandMetrics, now time.Time) *models.Alert {
	for _, bm := range brands {
		if bm.Brand.Kind != models.BrandPrimary {
			continue
		}
		if bm.Trend.Provisional || bm.Trend.Direction != models.TrendDown {
			return nil
		}

		drop := -bm.Trend.Delta
		if drop < s.config.AlertDropThreshold {
			return nil
		}

		alertType := "urgent"
		if drop >= 2*s.config.AlertDropThreshold || bm.Metric.Visibility == 0 {
			alertType = "critical"
		}

		summary := summarize(bm)
		return &models.Alert{
			ID:    uuid.NewString(),
			Type:  alertType,
			Title: fmt.Sprintf("%s visibility dropped %.1f points", bm.Brand.DisplayName, drop),
			Message: fmt.Sprintf("Visibility of %s in AI answers fell to %.1f%% over the last %d hours (%.1f points below the previous period)",
				bm.Brand.DisplayName, bm.Metric.Visibility, s.config.AlertWindowHours, drop),
			Brand:     &summary,
			CreatedAt: now,
		}
	}
	return nil
}

func (s *Service) updateMetrics(report *models.Report, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ReportsGenerated++
	s.metrics.LastRun = report.GeneratedAt
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastReportID = report.ID

	s.metrics.Visibility = make(map[string]float64, len(report.Brands))
	for _, b := range report.Brands {
		s.metrics.Visibility[b.BrandID] = b.Visibility
		metrics.BrandVisibility.WithLabelValues(b.BrandID).Set(b.Visibility)
	}
	metrics.ReportsGenerated.Inc()
}

func (s *Service) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
