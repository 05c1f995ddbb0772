package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/subdeck/internal/anki"
	"github.com/at-ishikawa/subdeck/internal/fsrs"
	"github.com/at-ishikawa/subdeck/internal/vocabulary"
)

func newExportCommand() *cobra.Command {
	var (
		format   formatFlag
		dual     bool
		deckName string
	)

	command := &cobra.Command{
		Use:   "export <output.apkg>",
		Short: "Export the vocabulary and its review schedule as an Anki package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Vocabulary.File == "" {
				return fmt.Errorf("vocabulary.file is not configured")
			}
			version, err := format.resolve(cfg.Export.Format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dual") {
				dual = cfg.Export.DualFormat
			}
			if deckName == "" {
				deckName = cfg.Export.DeckName
			}

			words, err := vocabulary.Load(cfg.Vocabulary.File)
			if err != nil {
				return fmt.Errorf("vocabulary.Load() > %w", err)
			}
			audioDir := audioDirectory(cfg)
			result := vocabulary.Validate(words, audioDir)
			for _, w := range result.Warnings {
				_, _ = color.New(color.FgYellow).Fprintf(out, "warning: %s\n", w.Error())
			}
			if result.HasErrors() {
				for _, e := range result.Errors {
					_, _ = color.New(color.FgRed).Fprintf(out, "error: %s\n", e.Error())
				}
				return fmt.Errorf("%d invalid entries in %s", len(result.Errors), cfg.Vocabulary.File)
			}

			db, repo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()
			stored, err := repo.FindAll(ctx)
			if err != nil {
				return fmt.Errorf("repo.FindAll() > %w", err)
			}
			cards := make(map[string]fsrs.FlashCard, len(stored))
			for _, card := range stored {
				cards[card.ID] = card
			}

			creator := anki.NewCreator(
				anki.WithDesiredRetention(cfg.FSRS.RequestRetention),
				anki.WithFSRSWeights(cfg.FSRS.Params),
				anki.WithLogger(slog.Default()),
			)
			creator.SetFormatVersion(version)
			deckID := creator.AddDeck(anki.Deck{Name: deckName})
			model := anki.CreateWordModel()
			model.ID = creator.AddModel(model)

			notes, media, err := vocabulary.ToNotes(words, model, audioDir)
			if err != nil {
				return fmt.Errorf("vocabulary.ToNotes() > %w", err)
			}
			var scheduled int
			for i, note := range notes {
				if card, ok := cards[words[i].CardID()]; ok {
					note.Schedule = anki.ScheduleFromCard(card)
				}
				if note.Schedule != nil {
					scheduled++
				}
				if err := creator.AddNote(note, deckID); err != nil {
					return fmt.Errorf("creator.AddNote(%s) > %w", words[i].Word, err)
				}
			}
			for _, m := range media {
				creator.AddMediaFile(m.Name, m.Data)
			}

			if err := creator.CreateApkg(ctx, args[0], dual); err != nil {
				return fmt.Errorf("creator.CreateApkg() > %w", err)
			}

			formatName := version.String()
			if dual {
				formatName = "legacy+latest"
			}
			_, _ = fmt.Fprintf(out, "Exported %d notes (%d scheduled, %d media files) to %s [%s]\n",
				len(notes), scheduled, len(media), args[0], formatName)
			return nil
		},
	}

	command.Flags().Var(&format, "format", "collection format: legacy, transitional or latest")
	command.Flags().BoolVar(&dual, "dual", false, "write both legacy and latest collections")
	command.Flags().StringVar(&deckName, "deck", "", "deck name (default from config)")
	return command
}
