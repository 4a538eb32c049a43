package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	findTerms    string
	findPractice string
	findLocation string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find a practice's official website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Finder.Find(ctx, findTerms, findPractice, findLocation)
		if err != nil {
			return eris.Wrap(err, "find run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	findCmd.Flags().StringVar(&findTerms, "terms", "", "free-form search terms, e.g. \"Dr Smith dentist\"")
	findCmd.Flags().StringVar(&findPractice, "practice", "", "known practice name")
	findCmd.Flags().StringVar(&findLocation, "location", "", "location hint")
	rootCmd.AddCommand(findCmd)
}
