package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/practice-intel/internal/brief"
	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/verify"
	anthropicpkg "github.com/sells-group/practice-intel/pkg/anthropic"
)

var (
	verifyName      string
	verifyNPI       string
	verifyPractice  string
	verifyLocation  string
	verifySpecialty string
	verifyDepth     string
	verifyBrief     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single practitioner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Orchestrator.Verify(ctx, verify.Request{
			DoctorName: verifyName,
			NPI:        verifyNPI,
			Hints: model.SearchHints{
				PracticeName: verifyPractice,
				Location:     verifyLocation,
				Specialty:    verifySpecialty,
			},
			Depth: model.Depth(verifyDepth),
		})
		if err != nil {
			return eris.Wrap(err, "verify run")
		}

		out := struct {
			*model.VerificationResult
			SalesBrief string `json:"sales_brief,omitempty"`
		}{VerificationResult: result}

		if verifyBrief {
			if cfg.Anthropic.Key == "" {
				return eris.New("verify: --brief requires an anthropic api key")
			}
			synth := brief.New(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
			text, err := synth.Generate(ctx, result)
			if err != nil {
				zap.L().Warn("sales brief generation failed", zap.Error(err))
			} else {
				out.SalesBrief = text
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "doctor name (required)")
	verifyCmd.Flags().StringVar(&verifyNPI, "npi", "", "10-digit NPI number")
	verifyCmd.Flags().StringVar(&verifyPractice, "practice", "", "known practice name")
	verifyCmd.Flags().StringVar(&verifyLocation, "location", "", "location hint, e.g. \"Austin, TX\"")
	verifyCmd.Flags().StringVar(&verifySpecialty, "specialty", "", "specialty hint")
	verifyCmd.Flags().StringVar(&verifyDepth, "depth", "standard", fmt.Sprintf("search depth: %s, %s or %s", model.DepthQuick, model.DepthStandard, model.DepthDeep))
	verifyCmd.Flags().BoolVar(&verifyBrief, "brief", false, "generate a sales brief from the result")
	_ = verifyCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(verifyCmd)
}
