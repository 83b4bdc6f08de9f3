package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/stats"
)

var productCmd = &cobra.Command{
	Use:   "product ID",
	Short: "Show a product with its potency estimate, rating and reviews",
	Example: `  flowr product blue-dream-3g
  flowr product blue-dream-3g --json`,
	Args: cobra.ExactArgs(1),
	RunE: runProduct,
}

func init() {
	rootCmd.AddCommand(productCmd)
}

func runProduct(cmd *cobra.Command, args []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := loadProductDetail(a.context(cmd.Context()), a, args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return display.PrintProductDetailJSON(cmd.OutOrStdout(), detail)
	}
	display.PrintProductDetail(cmd.OutOrStdout(), detail)
	return nil
}

func loadProductDetail(ctx context.Context, a *app, rawID string) (display.ProductDetail, error) {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return display.ProductDetail{}, invalidArgsError("product id must not be empty", "flowr product blue-dream-3g")
	}

	p, err := a.repo.Product(ctx, id)
	if err != nil {
		return display.ProductDetail{}, productLookupError(id, err)
	}

	// A failed review read leaves the rating unknown instead of failing the
	// whole detail.
	reviews, rerr := a.repo.Reviews(ctx, id)
	if rerr != nil {
		a.log.Warn("reviews unavailable", zap.String("product_id", id), zap.Error(rerr))
		reviews = nil
	}

	potency, perr := a.estimator.EstimatePotency(ctx, id, p.AvgTHC)
	return display.ProductDetail{
		Product:            p,
		Potency:            potency,
		Rating:             stats.AverageRating(reviews),
		Reviews:            reviews,
		PotencyUnavailable: perr != nil,
		ReviewsUnavailable: rerr != nil,
	}, nil
}

func productLookupError(id string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return notFoundError(
			fmt.Sprintf("no product with id %q", id),
			"List product ids with `flowr --json`.",
		)
	}
	return storeError(err)
}
