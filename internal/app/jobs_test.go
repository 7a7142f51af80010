package app

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProductRepo struct {
	products     []*domain.Product
	err          error
	gotThreshold int
	gotLimit     int
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, threshold, limit int) ([]*domain.Product, error) {
	r.gotThreshold, r.gotLimit = threshold, limit
	return r.products, r.err
}

func TestSchedLowStockTask(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	repo := &fakeProductRepo{products: []*domain.Product{
		{ID: "p1", Name: "Cast Iron Skillet", Stock: 0},
		{ID: "p2", Name: "Oak Side Table", Stock: 3},
	}}

	n, err := SchedLowStockTask(context.Background(), repo, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 5, repo.gotThreshold)
	assert.Equal(t, lowStockReportLimit, repo.gotLimit)

	entries := logs.FilterMessage("product stock low").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ContextMap()["product_id"])
}

func TestSchedLowStockTaskError(t *testing.T) {
	repo := &fakeProductRepo{err: errors.New("db down")}
	n, err := SchedLowStockTask(context.Background(), repo, 5)
	assert.Zero(t, n)
	assert.EqualError(t, err, "db down")
}

func TestInitJobRejectsBadSchedule(t *testing.T) {
	cfg := *config.DefaultAppConfig
	cfg.Checkout.LowStockSchedule = "every now and then"
	a := NewApplication(&cfg)

	err := a.initJob()
	assert.ErrorContains(t, err, "schedule low stock job")
}

func TestInitJobStartsScheduler(t *testing.T) {
	cfg := *config.DefaultAppConfig
	a := NewApplication(&cfg)

	require.NoError(t, a.initJob())
	assert.Len(t, a.Scheduler().Entries(), 1)
	a.Release()
}

func TestNewLoggerModes(t *testing.T) {
	dev := NewLogger(config.LogConfig{Mode: "development"})
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod := NewLogger(config.LogConfig{Mode: "production"})
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))
}

func TestDemoProductsAreValid(t *testing.T) {
	seen := map[domain.Category]bool{}
	for _, p := range demoProducts() {
		assert.True(t, p.Category.IsValid(), p.Name)
		assert.GreaterOrEqual(t, p.Stock, 0)
		assert.False(t, p.Price.IsNegative())
		seen[p.Category] = true
	}
	assert.Len(t, seen, len(domain.Categories))
}
