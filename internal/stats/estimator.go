package stats

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/flowr-app/flowr/internal/catalog"
)

// ReviewRecordReader reads raw review records for a product from the
// per-product sub-collection and from the global collection.
type ReviewRecordReader interface {
	ProductReviewRecords(ctx context.Context, productID string) ([]catalog.Record, error)
	ReviewRecordsByProduct(ctx context.Context, productID string) ([]catalog.Record, error)
}

// Estimator resolves a product's average potency from the first source that
// yields a value.
type Estimator struct {
	reader ReviewRecordReader
	log    *zap.Logger
	group  singleflight.Group
}

func NewEstimator(reader ReviewRecordReader, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{reader: reader, log: log}
}

// EstimatePotency tries the hint, then the product's review sub-collection,
// then the global reviews. A failed read is treated as an empty source; if
// nothing produced a value the read errors are returned alongside the
// unknown estimate.
func (e *Estimator) EstimatePotency(ctx context.Context, productID string, hint *float64) (Estimate, error) {
	if validHint(hint) {
		return Estimate{Value: *hint, Known: true, Source: SourcePrecomputed}, nil
	}

	var errs []error
	sources := []struct {
		source Source
		read   func(context.Context, string) ([]catalog.Record, error)
	}{
		{SourceProductReviews, e.reader.ProductReviewRecords},
		{SourceGlobalReviews, e.reader.ReviewRecordsByProduct},
	}
	for _, src := range sources {
		records, err := src.read(ctx, productID)
		if err != nil {
			e.log.Warn("potency source unavailable",
				zap.String("product_id", productID),
				zap.Stringer("source", src.source),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("read %s: %w", src.source, err))
			continue
		}
		if est := MeanPotency(records); est.Known {
			est.Source = src.source
			e.log.Debug("potency estimated",
				zap.String("product_id", productID),
				zap.Stringer("source", src.source),
				zap.Int("records", len(records)),
			)
			return est, nil
		}
	}

	return Estimate{}, errors.Join(errs...)
}

// EstimatePotencyAsync runs EstimatePotency in the background and calls done
// once with the result. A valid hint is delivered immediately. Concurrent
// review lookups for the same product share one read. If ctx ends first,
// done is never called.
func (e *Estimator) EstimatePotencyAsync(ctx context.Context, productID string, hint *float64, done func(Estimate, error)) {
	if ctx.Err() != nil {
		return
	}
	if validHint(hint) {
		done(Estimate{Value: *hint, Known: true, Source: SourcePrecomputed}, nil)
		return
	}
	ch := e.group.DoChan(productID, func() (any, error) {
		return e.EstimatePotency(context.WithoutCancel(ctx), productID, nil)
	})

	go func() {
		select {
		case <-ctx.Done():
			e.log.Debug("potency estimate dropped", zap.String("product_id", productID))
		case res := <-ch:
			if ctx.Err() != nil {
				return
			}
			est, _ := res.Val.(Estimate)
			done(est, res.Err)
		}
	}()
}
