package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/sourcing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Source, score, and draft outreach for a single job description",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("job", "", "the job description to source candidates for")
	runCmd.Flags().IntP("top", "t", 0, "number of top candidates to generate outreach for")
	runCmd.Flags().StringP("output", "o", "", "write the full result as JSON to this file")

	runCmd.MarkFlagRequired("job")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	zl.Info("starting synapse", zap.String("version", version))

	jobDescription, _ := cmd.Flags().GetString("job")
	if jobDescription == "" {
		zl.Fatal("a job description is required")
	}

	topN, _ := cmd.Flags().GetInt("top")

	agent, cleanup, err := buildAgent(ctx, config, zl)
	if err != nil {
		zl.Fatal("building the sourcing agent", zap.Error(err))
	}
	defer cleanup()

	result := agent.ProcessJob(ctx, jobDescription, topN)

	printResult(&result)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeResultFile(output, []sourcing.JobResult{result}); err != nil {
			zl.Fatal("writing result file", zap.Error(err))
		}
		zl.Info("result written", zap.String("filename", output))
	}
}

func writeResultFile(filename string, results []sourcing.JobResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
