package scheduler

import (
	"context"
	"testing"

	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJobs struct {
	mock.Mock
}

func (m *MockJobs) RunReport(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockJobs) RunAlertCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestReportExpression(t *testing.T) {
	assert.Equal(t, "0 0 9 * * *", ReportExpression("daily"))
	assert.Equal(t, "0 0 9 * * MON", ReportExpression("weekly"))
	assert.Equal(t, "0 0 9 * * MON", ReportExpression(""))
}

func TestAlertExpression(t *testing.T) {
	tests := []struct {
		hours    int
		expected string
	}{
		{4, "0 0 */4 * * *"},
		{1, "0 0 */1 * * *"},
		{23, "0 0 */23 * * *"},
		{0, "0 0 */4 * * *"},
		{-2, "0 0 */4 * * *"},
		{48, "0 0 */4 * * *"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, AlertExpression(tt.hours), "hours=%d", tt.hours)
	}
}

func TestService_StartStop(t *testing.T) {
	jobs := &MockJobs{}
	svc := NewService(&config.Config{ReportSchedule: "daily", TimeZone: "UTC", AlertWindowHours: 6}, jobs)

	require.NoError(t, svc.Start())
	assert.Equal(t, 2, svc.Entries())

	svc.Stop()
	assert.Error(t, svc.ctx.Err(), "stop cancels the job context")

	// no job fires within the test
	jobs.AssertNotCalled(t, "RunReport", mock.Anything)
}

func TestService_UnknownTimeZone(t *testing.T) {
	svc := NewService(&config.Config{ReportSchedule: "weekly", TimeZone: "Mars/Olympus", AlertWindowHours: 4}, &MockJobs{})

	require.NoError(t, svc.Start())
	defer svc.Stop()
	assert.Equal(t, 2, svc.Entries())
}
