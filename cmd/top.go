package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the best scored candidates from previous runs",
	Run: func(cmd *cobra.Command, _ []string) {
		top(cmd)
	},
}

func init() {
	rootCmd.AddCommand(topCmd)

	topCmd.Flags().IntP("limit", "n", 10, "how many candidates to show")
}

func top(cmd *cobra.Command) {
	ctx := context.Background()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	db, err := openStore(config)
	if err != nil {
		zl.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	candidates, err := db.TopCandidates(ctx, limit)
	if err != nil {
		zl.Fatal("loading top candidates", zap.Error(err))
	}
	if len(candidates) == 0 {
		zl.Info("no scored candidates in the store yet")
		return
	}

	for i, candidate := range candidates {
		printStoredCandidate(i+1, candidate)
	}
}
