package main

import (
	"encoding/csv"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/practice-intel/internal/leads"
	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/verify"
)

var (
	batchInput  string
	batchOutput string
	batchDepth  string
	batchLimit  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Verify a lead list from an XLSX or CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		list, err := leads.Load(batchInput)
		if err != nil {
			return eris.Wrap(err, "load leads")
		}
		if batchLimit > 0 && len(list) > batchLimit {
			list = list[:batchLimit]
		}
		zap.L().Info("batch: starting", zap.Int("leads", len(list)))

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		results := make([]*model.VerificationResult, len(list))

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrent)

		var mu sync.Mutex
		failed := 0
		for i, lead := range list {
			g.Go(func() error {
				result, err := e.Orchestrator.Verify(gCtx, verify.Request{
					DoctorName: lead.Name,
					NPI:        lead.NPI,
					Hints: model.SearchHints{
						PracticeName: lead.Practice,
						Location:     lead.Location,
					},
					Depth: model.Depth(batchDepth),
				})
				if err != nil {
					zap.L().Error("batch: lead failed",
						zap.String("doctor", lead.Name),
						zap.Error(err),
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch run")
		}

		if err := writeBatchCSV(batchOutput, list, results); err != nil {
			return err
		}

		zap.L().Info("batch: finished",
			zap.Int("leads", len(list)),
			zap.Int("failed", failed),
			zap.String("output", batchOutput),
		)
		return nil
	},
}

// writeBatchCSV emits one row per input lead, preserving input order.
func writeBatchCSV(path string, list []leads.Lead, results []*model.VerificationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "batch: create output")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	header := []string{"name", "npi", "status", "confidence", "practice", "website", "phone", "verification_id"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "batch: write header")
	}

	for i, lead := range list {
		row := []string{lead.Name, lead.NPI, "error", "0", "", "", "", ""}
		if r := results[i]; r != nil {
			row = []string{
				lead.Name,
				r.Doctor.NPI,
				string(r.Status),
				strconv.Itoa(r.OverallConfidence),
				r.Practice.Name,
				r.Practice.Website,
				r.Practice.Phone,
				r.VerificationID,
			}
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "batch: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "batch: flush output")
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "lead list file, .xlsx or .csv (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "verified.csv", "output CSV path")
	batchCmd.Flags().StringVar(&batchDepth, "depth", "quick", "search depth per lead")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max leads to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
