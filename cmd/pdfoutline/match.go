package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/export"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/pdfsource"
)

func matchCmd() *cobra.Command {
	var out string
	var format string
	var input string
	var extractor string
	var fuzzy bool
	var threshold float64

	cmd := &cobra.Command{
		Use:   "match <pdf> <bookmarks>",
		Short: "Locate the titles of a bookmark file (json|txt|csv) in a PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			if input == "" {
				input = export.FormatFromPath(args[1])
			}
			bf, err := os.Open(args[1])
			if err != nil {
				return err
			}
			want, err := export.ParseBookmarks(bf, input)
			bf.Close()
			if err != nil {
				return err
			}

			src, err := pdfsource.Open(args[0], extractor)
			if err != nil {
				return err
			}
			defer src.Close()
			frags, err := outline.Collect(cmd.Context(), src)
			if err != nil {
				return err
			}

			cands, diags := outline.MatchTitles(want, frags, fuzzy, threshold)
			_, bms, d := outline.Emit(cands, src.PageCount())
			diags = append(diags, d...)
			for _, x := range diags {
				log.Debug("diagnostic", zap.String("stage", x.Stage), zap.String("title", x.Title), zap.String("reason", x.Reason))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "matched %d of %d titles\n", len(cands), len(want))
			return writeBookmarks(cmd, bms, out, format)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json|txt|csv|md")
	cmd.Flags().StringVar(&input, "input-format", "", "bookmark file format: json|txt|csv (default from extension)")
	cmd.Flags().StringVar(&extractor, "extractor", "glyphs", "text extractor: glyphs|ledongthuc")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", true, "fall back to similarity matching")
	cmd.Flags().Float64Var(&threshold, "threshold", outline.DefaultMatchThreshold, "minimum similarity for a fuzzy match")
	return cmd
}
