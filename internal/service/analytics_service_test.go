package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/spec-kit/enquiry-service/internal/config"
	"github.com/spec-kit/enquiry-service/internal/domain"
	"github.com/spec-kit/enquiry-service/internal/service"
)

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{WindowDays: 7, TopLimit: 3, CacheTTLSeconds: 60}
}

func TestAnalyticsService_TopPerformers(t *testing.T) {
	t.Run("defaults window and limit from config", func(t *testing.T) {
		enquiries := new(EnquiryRepoMock)
		enquiries.On("TopPerformers", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
			expected := time.Now().AddDate(0, 0, -7)
			return since.Sub(expected).Abs() < time.Minute
		}), 3).Return([]domain.PerformerStat{
			{UserID: "user-1", Name: "Jane", ClosedCount: 4},
		}, nil).Once()

		svc := service.NewAnalyticsService(testAnalyticsConfig(), enquiries, nil, zap.NewNop())
		stats, err := svc.TopPerformers(context.Background(), 0, 0)
		assert.NoError(t, err)
		assert.Len(t, stats, 1)
		assert.Equal(t, 4, stats[0].ClosedCount)
		enquiries.AssertExpectations(t)
	})

	t.Run("passes explicit window and limit through", func(t *testing.T) {
		enquiries := new(EnquiryRepoMock)
		enquiries.On("TopPerformers", mock.Anything, mock.Anything, 5).
			Return([]domain.PerformerStat{}, nil).Once()

		svc := service.NewAnalyticsService(testAnalyticsConfig(), enquiries, nil, zap.NewNop())
		_, err := svc.TopPerformers(context.Background(), 30, 5)
		assert.NoError(t, err)
		enquiries.AssertExpectations(t)
	})

	t.Run("nil result becomes empty slice", func(t *testing.T) {
		enquiries := new(EnquiryRepoMock)
		enquiries.On("TopPerformers", mock.Anything, mock.Anything, 3).
			Return(nil, nil).Once()

		svc := service.NewAnalyticsService(testAnalyticsConfig(), enquiries, nil, zap.NewNop())
		stats, err := svc.TopPerformers(context.Background(), 0, 0)
		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})
}
