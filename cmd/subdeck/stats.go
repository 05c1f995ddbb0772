package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/subdeck/internal/learning"
)

const recentSessionLimit = 20

func newStatsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics and today's recommendation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			manager, err := newSessionManager(cfg)
			if err != nil {
				return err
			}
			db, repo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			cards, err := repo.FindAll(ctx)
			if err != nil {
				return fmt.Errorf("repo.FindAll() > %w", err)
			}
			sessions, err := repo.FindRecentSessions(ctx, recentSessionLimit)
			if err != nil {
				return fmt.Errorf("repo.FindRecentSessions() > %w", err)
			}

			stat := manager.Service().GetLearningStat(cards)
			_, _ = bold.Fprintln(out, "Cards")
			_, _ = fmt.Fprintf(out, "  total: %d  new: %d  review: %d  due: %d\n",
				stat.TotalCards, stat.NewCards, stat.ReviewCards, stat.DueCards)
			_, _ = fmt.Fprintf(out, "  average difficulty: %.2f  average stability: %.1f days\n",
				stat.AverageDifficulty, stat.AverageStability)

			rec := manager.GetLearningRecommendations(cards, sessions)
			_, _ = bold.Fprintln(out, "Today")
			_, _ = fmt.Fprintf(out, "  reviews: %d  new: %d  about %s  load: %s\n",
				rec.SuggestedReviewCards, rec.SuggestedNewCards, rec.EstimatedStudyTime, loadColor(rec.StudyLoad.Level).Sprint(rec.StudyLoad.Level))
			for _, card := range rec.PriorityCards {
				_, _ = fmt.Fprintf(out, "  priority: %s (difficulty %.1f, due %s)\n",
					card.ID, card.Difficulty, card.DueDate.Local().Format("2006-01-02"))
			}
			for _, tip := range rec.Tips {
				_, _ = fmt.Fprintf(out, "  tip: %s\n", tip)
			}
			return nil
		},
	}
	return command
}

func loadColor(level learning.StudyLoadLevel) *color.Color {
	switch level {
	case learning.StudyLoadHeavy:
		return color.New(color.FgRed)
	case learning.StudyLoadModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
