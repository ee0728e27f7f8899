package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/sourcing"
)

const (
	PromptProcessJob    = "Process a job description"
	PromptProcessBatch  = "Process several job descriptions"
	PromptShowTop       = "Show top candidates from the store"
	PromptShowCandidate = "Show a stored candidate"
	PromptQuit          = "Quit"
)

var errExit = errors.New("exit requested")

var mainPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptProcessJob, PromptProcessBatch, PromptShowTop, PromptShowCandidate, PromptQuit},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run synapse as an interactive session",
	Run: func(cmd *cobra.Command, _ []string) {
		interactive(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().IntP("top", "t", 0, "number of top candidates to generate outreach for")
}

func interactive(cmd *cobra.Command) {
	ctx := context.Background()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	topN, _ := cmd.Flags().GetInt("top")

	agent, cleanup, err := buildAgent(ctx, config, zl)
	if err != nil {
		zl.Fatal("building the sourcing agent", zap.Error(err))
	}
	defer cleanup()

	for {
		if err := interactiveStep(ctx, agent, config, topN); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			zl.Error("interactive step failed", zap.Error(err))
		}
	}
}

func interactiveStep(ctx context.Context, agent *sourcing.Agent, config *Config, topN int) error {
	_, selected, err := mainPrompt.Run()
	if err != nil {
		return errExit
	}

	switch selected {
	case PromptQuit:
		return errExit
	case PromptProcessJob:
		jobPrompt := promptui.Prompt{
			Label: "Job description",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("a job description can not be empty")
				}
				return nil
			},
		}

		job, err := jobPrompt.Run()
		if err != nil {
			return errExit
		}

		result := agent.ProcessJob(ctx, job, topN)
		printResult(&result)
	case PromptProcessBatch:
		batchPrompt := promptui.Prompt{
			Label: "Job descriptions, separated by |",
			Validate: func(input string) error {
				if len(splitJobList(input)) == 0 {
					return errors.New("at least one job description is required")
				}
				return nil
			},
		}

		input, err := batchPrompt.Run()
		if err != nil {
			return errExit
		}

		jobs := splitJobList(input)
		results := agent.ProcessBatch(ctx, jobs, topN)
		for i := range results {
			fmt.Printf("\n=== Job %d of %d ===\n", i+1, len(results))
			printResult(&results[i])
		}
	case PromptShowTop:
		limitPrompt := promptui.Prompt{
			Label:   "How many candidates",
			Default: "10",
		}

		answer, err := limitPrompt.Run()
		if err != nil {
			return errExit
		}

		limit, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || limit <= 0 {
			limit = 10
		}

		db, err := openStore(config)
		if err != nil {
			return err
		}
		defer db.Close()

		candidates, err := db.TopCandidates(ctx, limit)
		if err != nil {
			return err
		}
		for i, candidate := range candidates {
			printStoredCandidate(i+1, candidate)
		}
	case PromptShowCandidate:
		urlPrompt := promptui.Prompt{
			Label: "Profile URL",
		}

		profileURL, err := urlPrompt.Run()
		if err != nil {
			return errExit
		}

		db, err := openStore(config)
		if err != nil {
			return err
		}
		defer db.Close()

		candidate, err := db.GetCandidate(ctx, strings.TrimSpace(profileURL))
		if err != nil {
			return err
		}
		if candidate == nil {
			return errors.New("no stored candidate with that profile URL")
		}
		printStoredCandidate(1, candidate)
	}

	return nil
}

// splitJobList splits "|"-separated job descriptions, dropping empty entries.
func splitJobList(input string) []string {
	var jobs []string
	for _, part := range strings.Split(input, "|") {
		if part = strings.TrimSpace(part); part != "" {
			jobs = append(jobs, part)
		}
	}
	return jobs
}
