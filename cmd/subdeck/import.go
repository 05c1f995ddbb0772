package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/subdeck/internal/anki"
	"github.com/at-ishikawa/subdeck/internal/vocabulary"
)

func newImportCommand() *cobra.Command {
	var (
		audioDir     string
		withSchedule bool
	)

	command := &cobra.Command{
		Use:   "import <file.apkg> <output.yml>",
		Short: "Convert an Anki package into a vocabulary file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			parser := anki.NewParser(anki.WithMaxDecompressedSize(cfg.Export.MaxDecompressedSize))
			pkg, err := parser.ParseApkg(ctx, args[0])
			if err != nil {
				return fmt.Errorf("parser.ParseApkg() > %w", err)
			}

			words := vocabulary.FromPackage(pkg)
			if err := vocabulary.Write(args[1], words); err != nil {
				return fmt.Errorf("vocabulary.Write() > %w", err)
			}
			_, _ = fmt.Fprintf(out, "Imported %d words into %s\n", len(words), args[1])

			if audioDir != "" {
				n, err := vocabulary.ExportAudio(pkg, words, audioDir)
				if err != nil {
					return fmt.Errorf("vocabulary.ExportAudio() > %w", err)
				}
				_, _ = fmt.Fprintf(out, "Wrote %d audio files into %s\n", n, audioDir)
			}

			if !withSchedule {
				return nil
			}
			db, repo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			// Only the first card of each note carries the word's schedule.
			wordByNote := make(map[int64]vocabulary.Word, len(pkg.Notes))
			for i, n := range pkg.Notes {
				wordByNote[n.ID] = words[i]
			}
			var saved int
			for _, c := range pkg.Cards {
				if c.Ord != 0 {
					continue
				}
				card, ok := c.ToFlashCard(wordByNote[c.NoteID].CardID())
				if !ok || card.ID == "" {
					continue
				}
				if err := repo.Save(ctx, card); err != nil {
					return fmt.Errorf("repo.Save(%s) > %w", card.ID, err)
				}
				saved++
			}
			_, _ = fmt.Fprintf(out, "Imported %d review schedules\n", saved)
			return nil
		},
	}

	command.Flags().StringVar(&audioDir, "audio-dir", "", "directory to write referenced audio files into")
	command.Flags().BoolVar(&withSchedule, "with-schedule", false, "store FSRS state of studied cards in the card store")
	return command
}
