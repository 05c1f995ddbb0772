package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/subdeck/internal/anki"
)

func newInspectCommand() *cobra.Command {
	var (
		full  bool
		limit int
	)

	command := &cobra.Command{
		Use:   "inspect <file.apkg>",
		Short: "Show what an Anki package contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			parser := anki.NewParser(anki.WithMaxDecompressedSize(cfg.Export.MaxDecompressedSize))
			if !parser.IsValidApkg(args[0]) {
				return fmt.Errorf("%s is not a valid apkg", args[0])
			}

			info, err := parser.GetApkgInfo(ctx, args[0])
			if err != nil {
				return fmt.Errorf("parser.GetApkgInfo() > %w", err)
			}
			_, _ = bold.Fprintln(out, args[0])
			_, _ = fmt.Fprintf(out, "  schema version: %d\n", info.Version)
			_, _ = fmt.Fprintf(out, "  created:        %s\n", info.CreatedAt.Format("2006-01-02"))
			_, _ = fmt.Fprintf(out, "  decks:          %d\n", info.DeckCount)
			_, _ = fmt.Fprintf(out, "  notes:          %d\n", info.NoteCount)
			_, _ = fmt.Fprintf(out, "  cards:          %d\n", info.CardCount)
			if !full {
				return nil
			}

			pkg, err := parser.ParseApkg(ctx, args[0])
			if err != nil {
				return fmt.Errorf("parser.ParseApkg() > %w", err)
			}
			_, _ = fmt.Fprintf(out, "  media files:    %d\n", len(pkg.MediaFiles))
			for _, d := range pkg.Decks {
				_, _ = fmt.Fprintf(out, "  deck %d: %s\n", d.ID, d.Name)
			}
			for _, m := range pkg.Models {
				names := make([]string, 0, len(m.Fields))
				for _, f := range m.Fields {
					names = append(names, f.Name)
				}
				_, _ = fmt.Fprintf(out, "  model %d: %s [%s]\n", m.ID, m.Name, strings.Join(names, ", "))
			}
			for i, n := range pkg.Notes {
				if i == limit {
					_, _ = fmt.Fprintf(out, "  ... %d more notes\n", len(pkg.Notes)-limit)
					break
				}
				_, _ = fmt.Fprintf(out, "  note %d: %s\n", n.ID, strings.Join(n.Fields, " | "))
			}
			return nil
		},
	}

	command.Flags().BoolVar(&full, "full", false, "parse the whole package and list its content")
	command.Flags().IntVar(&limit, "limit", 10, "number of notes listed with --full")
	return command
}
