package batch_test

import (
	"context"
	"customer-service/internal/batch"
	"customer-service/internal/infrastructure/monitoring"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockOrphanFinder struct {
	mock.Mock
}

func (m *MockOrphanFinder) FindOrphanedIdentities(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]int64); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestIntegrityAuditJob_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("reports orphans", func(t *testing.T) {
		finder := new(MockOrphanFinder)
		finder.On("FindOrphanedIdentities", ctx).Return([]int64{3, 9}, nil).Once()
		before := testutil.ToFloat64(monitoring.Business.IntegrityRiskTotal.WithLabelValues("audit"))

		count, err := batch.NewIntegrityAuditJob(finder, logger).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, float64(2), testutil.ToFloat64(monitoring.Business.OrphanedIdentities))
		assert.Equal(t, before+1, testutil.ToFloat64(monitoring.Business.IntegrityRiskTotal.WithLabelValues("audit")))
		finder.AssertExpectations(t)
	})

	t.Run("clean database resets gauge", func(t *testing.T) {
		finder := new(MockOrphanFinder)
		finder.On("FindOrphanedIdentities", ctx).Return([]int64{}, nil).Once()

		count, err := batch.NewIntegrityAuditJob(finder, logger).Run(ctx)

		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Equal(t, float64(0), testutil.ToFloat64(monitoring.Business.OrphanedIdentities))
	})

	t.Run("query failure", func(t *testing.T) {
		finder := new(MockOrphanFinder)
		finder.On("FindOrphanedIdentities", ctx).Return(nil, errors.New("db down")).Once()

		_, err := batch.NewIntegrityAuditJob(finder, logger).Run(ctx)

		assert.ErrorContains(t, err, "cannot run integrity audit")
	})
}

func TestNewIntegrityAuditJob_Panics(t *testing.T) {
	assert.Panics(t, func() { batch.NewIntegrityAuditJob(nil, logger) })
}
