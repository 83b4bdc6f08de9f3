package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/suggest"
)

var (
	flagRating         int
	flagFeels          string
	flagReviewActivity string
	flagTHC            float64
	flagBody           string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Add, edit or delete your product reviews",
	Long:  "Reviews belong to the signed-in user (see `flowr login`). Only the owner may edit or delete a review.",
}

var reviewAddCmd = &cobra.Command{
	Use:   "add PRODUCT",
	Short: "Review a product",
	Example: `  flowr review add blue-dream-3g --rating 4
  flowr review add blue-dream-3g --rating 5 --feels "relaxed, giggly" --activity hiking --thc 21.5 --body "Smooth."`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewAdd,
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit one of your reviews; unset flags keep their current values",
	Example: `  flowr review edit 2f1c... --rating 3
  flowr review edit 2f1c... --body "Harsher than I remembered."`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewEdit,
}

var reviewDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete one of your reviews",
	Example: `  flowr review delete 2f1c...`,
	Args:    cobra.ExactArgs(1),
	RunE:    runReviewDelete,
}

func init() {
	registerReviewFlags(reviewAddCmd.Flags())
	registerReviewFlags(reviewEditCmd.Flags())
	reviewCmd.AddCommand(reviewAddCmd, reviewEditCmd, reviewDeleteCmd)
	rootCmd.AddCommand(reviewCmd)
}

func registerReviewFlags(f *pflag.FlagSet) {
	f.IntVar(&flagRating, "rating", 0, "Star rating from 1 to 5")
	f.StringVar(&flagFeels, "feels", "", "Comma-separated feels (e.g., relaxed,sleepy)")
	f.StringVar(&flagReviewActivity, "activity", "", "What you did (e.g., hiking)")
	f.Float64Var(&flagTHC, "thc", 0, "THC percentage you observed (0-100)")
	f.StringVar(&flagBody, "body", "", fmt.Sprintf("Free-text review (up to %d characters)", catalog.MaxReviewBodyLength))
}

func resetReviewFlags() {
	flagRating = 0
	flagFeels = ""
	flagReviewActivity = ""
	flagTHC = 0
	flagBody = ""
}

// reviewInputFromFlags overlays the flags the user set onto base.
func reviewInputFromFlags(f *pflag.FlagSet, base catalog.ReviewInput) catalog.ReviewInput {
	in := base
	if f.Changed("rating") {
		in.Rating = flagRating
	}
	if f.Changed("feels") {
		in.Feels = suggest.SplitTokens(flagFeels)
	}
	if f.Changed("activity") {
		in.Activity = flagReviewActivity
	}
	if f.Changed("thc") {
		thc := flagTHC
		in.ReportedTHC = &thc
	}
	if f.Changed("body") {
		in.Body = flagBody
	}
	return in
}

func runReviewAdd(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("rating") {
		return invalidArgsError(
			"--rating is required",
			fmt.Sprintf("flowr review add %s --rating 4", args[0]),
		)
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	userID, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	in := reviewInputFromFlags(cmd.Flags(), catalog.ReviewInput{ProductID: args[0]})
	rev, err := a.reviews.Submit(ctx, userID, in)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return productLookupError(args[0], err)
		}
		return reviewError(args[0], err)
	}
	return printReview(cmd, rev)
}

func runReviewEdit(cmd *cobra.Command, args []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	userID, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	current, err := a.repo.Review(ctx, args[0])
	if err != nil {
		return reviewError(args[0], err)
	}
	base := catalog.ReviewInput{
		ProductID:   current.ProductID,
		Rating:      current.Rating,
		Feels:       current.Feels,
		Activity:    current.Activity,
		ReportedTHC: current.ReportedTHC,
		Body:        current.Body,
	}

	rev, err := a.reviews.Edit(ctx, userID, args[0], reviewInputFromFlags(cmd.Flags(), base))
	if err != nil {
		return reviewError(args[0], err)
	}
	return printReview(cmd, rev)
}

func runReviewDelete(cmd *cobra.Command, args []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	userID, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	if err := a.reviews.Delete(ctx, userID, args[0]); err != nil {
		return reviewError(args[0], err)
	}

	if flagJSON {
		return printJSON(cmd, map[string]any{"id": args[0], "deleted": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted review %s.\n", args[0])
	return nil
}

// reviewError maps review lifecycle failures onto CLI error codes.
func reviewError(id string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotOwner):
		return forbiddenError(
			fmt.Sprintf("review %s belongs to another user", id),
			"Only the author may edit or delete a review.",
			"flowr whoami",
		)
	case errors.Is(err, catalog.ErrInvalidReview):
		return invalidArgsError(err.Error(), "flowr review add PRODUCT --rating 4")
	case errors.Is(err, catalog.ErrNotFound):
		return notFoundError(fmt.Sprintf("no review with id %q", id))
	case errors.Is(err, context.Canceled):
		return err
	default:
		return storeError(err)
	}
}

func printReview(cmd *cobra.Command, rev catalog.Review) error {
	if flagJSON {
		return display.PrintReviewJSON(cmd.OutOrStdout(), rev)
	}
	display.PrintReview(cmd.OutOrStdout(), rev)
	return nil
}
