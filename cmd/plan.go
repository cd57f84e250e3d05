package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/productionplan/core/dispatch"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/infra/logger"
)

var (
	payloadPath string
	outputPath  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute one production plan from a payload file",
	Args:  cobra.NoArgs,
	RunE:  planOnce,
}

func init() {
	planCmd.Flags().StringVarP(&payloadPath, "file", "f", "", "request payload (json), - for stdin")
	planCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the plan to this file instead of stdout")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func planOnce(cmd *cobra.Command, _ []string) error {
	var in io.Reader = cmd.InOrStdin()
	if payloadPath != "-" {
		f, err := os.Open(payloadPath)
		if err != nil {
			return fmt.Errorf("open payload: %w", err)
		}
		defer f.Close()
		in = f
	}
	var req model.ProductionPlanRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	planner := dispatch.NewPlanner(dispatch.WithLogger(logger.New("planner")))
	plan, err := planner.Plan(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
