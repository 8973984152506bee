package repository

import (
	"context"
	"time"

	"github.com/Harshul8824/BIM/pkg/metrics"
	"github.com/Harshul8824/BIM/pkg/otel"
)

// Observe 为一次存储操作记录 span 和耗时指标
func Observe(ctx context.Context, driver, operation, table string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.StoreOp(ctx, driver, operation, table, fn)
	metrics.RecordDBQueryDuration(driver, operation, table, time.Since(start))
	return err
}
