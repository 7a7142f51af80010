package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/internal/repository"
	"go.uber.org/zap"
)

const lowStockReportLimit = 50

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() error {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	products := repository.NewGormProductRepository(a.gormDB)
	threshold := a.appConfig.Checkout.LowStockThreshold
	_, err := a.sched.AddFunc(a.appConfig.Checkout.LowStockSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := SchedLowStockTask(ctx, products, threshold); err != nil {
			zap.L().Error("low stock check failed", zap.String("namespace", "job"), zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrapf(err, "schedule low stock job %q", a.appConfig.Checkout.LowStockSchedule)
	}

	a.sched.Start()
	return nil
}

// SchedLowStockTask logs a warning for every product at or below threshold
// and returns how many were found.
func SchedLowStockTask(ctx context.Context, repo repository.ProductRepository, threshold int) (int, error) {
	products, err := repo.ListLowStock(ctx, threshold, lowStockReportLimit)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		zap.L().Warn("product stock low",
			zap.String("namespace", "job"),
			zap.String("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock),
			zap.Int("threshold", threshold),
		)
	}
	return len(products), nil
}
