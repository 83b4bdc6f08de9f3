package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flowr-app/flowr/internal/display"
)

const maxCompareProducts = 10

type compareProductResult struct {
	Rank     int                  `json:"rank"`
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Category string               `json:"category"`
	Potency  display.EstimateJSON `json:"averagePotency"`
	Rating   display.EstimateJSON `json:"averageRating"`
	Reviews  int                  `json:"reviews"`

	ReviewsUnavailable bool `json:"reviewsUnavailable,omitempty"`

	potency float64
	rating  float64
}

var compareCmd = &cobra.Command{
	Use:   "compare ID ID [ID...]",
	Short: "Compare products side by side by potency and rating",
	Example: `  flowr compare blue-dream-3g sour-diesel-1g
  flowr compare gummies-10 gummies-5 --json`,
	Args: cobra.RangeArgs(2, maxCompareProducts),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	results := make([]compareProductResult, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range args {
		g.Go(func() error {
			detail, err := loadProductDetail(gctx, a, id)
			if err != nil {
				return err
			}
			results[i] = compareProductResult{
				ID:       detail.Product.ID,
				Title:    display.ProductTitle(detail.Product),
				Category: display.CategoryLabel(detail.Product.Category),
				Potency:  display.ToEstimateJSON(detail.Potency),
				Rating:   display.ToEstimateJSON(detail.Rating),
				Reviews:  len(detail.Reviews),
				potency:  knownOr(detail.Potency.Known, detail.Potency.Value),
				rating:   knownOr(detail.Rating.Known, detail.Rating.Value),

				ReviewsUnavailable: detail.ReviewsUnavailable,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].potency != results[j].potency {
			return results[i].potency > results[j].potency
		}
		if results[i].rating != results[j].rating {
			return results[i].rating > results[j].rating
		}
		return results[i].Reviews > results[j].Reviews
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nProduct comparison (%d products)\n\n", len(results))
	missing := 0
	for _, r := range results {
		if r.ReviewsUnavailable {
			missing++
		}
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"%d. %s [%s]\n   avg thc: %s | rating: %s | reviews: %d\n   id: %s\n\n",
			r.Rank,
			r.Title,
			r.Category,
			emptyIf(estimateText(r.Potency, "%"), "—"),
			emptyIf(estimateText(r.Rating, "/5"), "—"),
			r.Reviews,
			r.ID,
		)
	}
	if missing > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Reviews could not be loaded for %d of %d products.\n", missing, len(results))
	}
	return nil
}

func knownOr(known bool, v float64) float64 {
	if !known {
		return -1
	}
	return v
}

func estimateText(e display.EstimateJSON, unit string) string {
	if e.Value == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%s", *e.Value, unit)
}

func emptyIf(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
