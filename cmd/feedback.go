package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/practice-intel/internal/feedback"
	"github.com/sells-group/practice-intel/internal/model"
)

var (
	fbID              string
	fbType            string
	fbActualPractice  string
	fbActualWebsite   string
	fbActualLocation  string
	fbConfirmPractice string
	fbConfirmWebsite  string
	fbConfirmOfficial bool
	patternsLimit     int
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record a verdict on a past verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		sub := feedback.Submission{
			VerificationID: fbID,
			Type:           model.FeedbackType(fbType),
		}
		if fbActualPractice != "" || fbActualWebsite != "" || fbActualLocation != "" {
			sub.Corrections = &model.Corrections{
				ActualPracticeName: fbActualPractice,
				ActualWebsite:      fbActualWebsite,
				ActualLocation:     fbActualLocation,
			}
		}
		if fbConfirmPractice != "" || fbConfirmWebsite != "" {
			sub.Confirmed = &model.ConfirmedData{
				PracticeName:      fbConfirmPractice,
				Website:           fbConfirmWebsite,
				IsOfficialWebsite: fbConfirmOfficial,
			}
		}

		out, err := e.Feedback.Submit(ctx, sub)
		if err != nil {
			return eris.Wrap(err, "submit feedback")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List learned patterns by confidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		patterns, err := e.Feedback.Patterns(ctx, patternsLimit)
		if err != nil {
			return eris.Wrap(err, "list patterns")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(patterns)
	},
}

func init() {
	feedbackCmd.Flags().StringVar(&fbID, "id", "", "verification id (required)")
	feedbackCmd.Flags().StringVar(&fbType, "type", "", "correct, incorrect or partial (required)")
	feedbackCmd.Flags().StringVar(&fbActualPractice, "actual-practice", "", "correction: the actual practice name")
	feedbackCmd.Flags().StringVar(&fbActualWebsite, "actual-website", "", "correction: the actual website")
	feedbackCmd.Flags().StringVar(&fbActualLocation, "actual-location", "", "correction: the actual location")
	feedbackCmd.Flags().StringVar(&fbConfirmPractice, "confirm-practice", "", "confirmed practice name")
	feedbackCmd.Flags().StringVar(&fbConfirmWebsite, "confirm-website", "", "confirmed website")
	feedbackCmd.Flags().BoolVar(&fbConfirmOfficial, "confirm-official", false, "confirmed website is the official practice site")
	_ = feedbackCmd.MarkFlagRequired("id")
	_ = feedbackCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(feedbackCmd)

	patternsCmd.Flags().IntVar(&patternsLimit, "limit", 50, "max patterns to list")
	rootCmd.AddCommand(patternsCmd)
}
