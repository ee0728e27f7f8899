package cmd

import (
	"fmt"

	"github.com/Ujjwal-Bajpayee/synapse/internal/sourcing"
	"github.com/Ujjwal-Bajpayee/synapse/internal/store"
)

func printResult(result *sourcing.JobResult) {
	if result.Error != "" {
		fmt.Printf("error: %s\n", result.Error)
		return
	}

	fmt.Printf("\nResults summary:\n")
	fmt.Printf("  total candidates: %d\n", result.Summary.TotalCandidates)
	fmt.Printf("  top candidates:   %d\n", result.Summary.TopCandidatesCount)
	fmt.Printf("  average score:    %.1f/10\n", result.Summary.AverageScore)

	fmt.Printf("\nTop %d candidates:\n", len(result.TopCandidates))
	for i, candidate := range result.TopCandidates {
		printCandidate(i+1, &candidate)
	}
}

func printCandidate(index int, c *sourcing.ScoredCandidate) {
	fmt.Printf("\n%d. %s\n", index, c.Name)
	if c.Headline != "" {
		fmt.Printf("   %s\n", c.Headline)
	}
	fmt.Printf("   %s\n", c.ProfileURL)
	fmt.Printf("   score: %.1f/10\n", c.Score)
	fmt.Printf("   breakdown: education %.1f / trajectory %.1f / company %.1f / skills %.1f / location %.1f / tenure %.1f\n",
		c.Breakdown.Education, c.Breakdown.Trajectory, c.Breakdown.Company,
		c.Breakdown.Skills, c.Breakdown.Location, c.Breakdown.Tenure,
	)
	if c.OutreachMessage != "" {
		fmt.Printf("   message: %s\n", c.OutreachMessage)
	}
}

func printStoredCandidate(index int, c *store.Candidate) {
	fmt.Printf("\n%d. %s\n", index, c.Name)
	if c.Headline != "" {
		fmt.Printf("   %s\n", c.Headline)
	}
	fmt.Printf("   %s\n", c.ProfileURL)
	if c.Score != nil {
		fmt.Printf("   score: %.1f/10\n", *c.Score)
	}
	if c.Breakdown != nil {
		fmt.Printf("   breakdown: education %.1f / trajectory %.1f / company %.1f / skills %.1f / location %.1f / tenure %.1f\n",
			c.Breakdown.Education, c.Breakdown.Trajectory, c.Breakdown.Company,
			c.Breakdown.Skills, c.Breakdown.Location, c.Breakdown.Tenure,
		)
	}
}
