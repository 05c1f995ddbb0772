package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/subdeck/internal/cli"
	"github.com/at-ishikawa/subdeck/internal/vocabulary"
)

func newReviewCommand() *cobra.Command {
	var maxNew, maxReview int

	command := &cobra.Command{
		Use:   "review",
		Short: "Review due and new words in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Vocabulary.File == "" {
				return fmt.Errorf("vocabulary.file is not configured")
			}
			if !cmd.Flags().Changed("new") {
				maxNew = cfg.Session.MaxNewCards
			}
			if !cmd.Flags().Changed("reviews") {
				maxReview = cfg.Session.MaxReviewCards
			}

			words, err := vocabulary.Load(cfg.Vocabulary.File)
			if err != nil {
				return fmt.Errorf("vocabulary.Load() > %w", err)
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

			reviewCLI, err := cli.NewReviewCLI(ctx, manager, repo, words, maxNew, maxReview,
				cli.WithReviewIO(cmd.InOrStdin(), cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			session := reviewCLI.Current()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting review session with %d cards\n\n", len(session.Queue))
			return reviewCLI.Run(ctx, reviewCLI)
		},
	}

	command.Flags().IntVar(&maxNew, "new", 0, "maximum number of new cards (default from config)")
	command.Flags().IntVar(&maxReview, "reviews", 0, "maximum number of due cards (default from config)")
	return command
}
