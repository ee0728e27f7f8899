package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process several job descriptions concurrently",
	Run: func(cmd *cobra.Command, _ []string) {
		batch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringArray("job", nil, "a job description, may be repeated")
	batchCmd.Flags().StringP("file", "f", "", "file with one job description per line")
	batchCmd.Flags().IntP("top", "t", 0, "number of top candidates per job")
	batchCmd.Flags().StringP("output", "o", "", "write all results as JSON to this file")
}

func batch(cmd *cobra.Command) {
	ctx := context.Background()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	jobs, _ := cmd.Flags().GetStringArray("job")
	if filename, _ := cmd.Flags().GetString("file"); filename != "" {
		fromFile, err := readJobsFile(filename)
		if err != nil {
			zl.Fatal("reading jobs file", zap.Error(err))
		}
		jobs = append(jobs, fromFile...)
	}
	if len(jobs) == 0 {
		zl.Fatal("at least one job description is required, via --job or --file")
	}

	topN, _ := cmd.Flags().GetInt("top")

	agent, cleanup, err := buildAgent(ctx, config, zl)
	if err != nil {
		zl.Fatal("building the sourcing agent", zap.Error(err))
	}
	defer cleanup()

	zl.Info("processing jobs", zap.Int("count", len(jobs)))

	results := agent.ProcessBatch(ctx, jobs, topN)

	for i := range results {
		fmt.Printf("\n=== Job %d of %d ===\n", i+1, len(results))
		printResult(&results[i])
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeResultFile(output, results); err != nil {
			zl.Fatal("writing result file", zap.Error(err))
		}
		zl.Info("results written", zap.String("filename", output))
	}
}

func readJobsFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening jobs file: %w", err)
	}
	defer f.Close()

	var jobs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		jobs = append(jobs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}
	return jobs, nil
}
