package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/pdfsource"
)

func buildCmd() *cobra.Command {
	var out string
	var format string
	var extractor string
	var alignTolerance float64
	var levelIndent float64
	var fontTolerance float64
	var maxDepth int
	var noAlign bool
	var noFontBand bool
	var excludeTitle bool
	var include []string
	var exclude []string
	var refine string
	var model string
	var endpoint string
	var printTree bool

	cmd := &cobra.Command{
		Use:   "build <pdf>",
		Short: "Infer the outline of a PDF and write it as bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			f := cmd.Flags()
			p := &cfg.Pipeline
			if f.Changed("align-tolerance") {
				p.Alignment.Tolerance = alignTolerance
			}
			if f.Changed("level-indent") {
				p.Alignment.LevelIndent = levelIndent
			}
			if f.Changed("font-tolerance") {
				p.FontBand.Tolerance = fontTolerance
				p.Sequence.FontTolerance = fontTolerance
			}
			if f.Changed("max-depth") {
				p.MaxDepth = maxDepth
			}
			if noAlign {
				p.Alignment.Enabled = false
			}
			if noFontBand {
				p.FontBand.Enabled = false
			}
			if excludeTitle {
				p.Alignment.ExcludeDocumentTitle = true
			}
			p.Filter.Include = append(p.Filter.Include, include...)
			p.Filter.Exclude = append(p.Filter.Exclude, exclude...)
			if f.Changed("refine") {
				cfg.Refine.Provider = refine
			}
			if f.Changed("model") {
				cfg.Refine.Model = model
			}
			if f.Changed("endpoint") {
				cfg.Refine.Endpoint = endpoint
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			refiner, err := cfg.Refine.NewRefiner(ctx, log)
			if err != nil {
				return err
			}

			src, err := pdfsource.Open(args[0], extractor)
			if err != nil {
				return err
			}
			defer src.Close()

			res, err := outline.Run(ctx, src, outline.Options{Config: cfg.Pipeline, Refiner: refiner, Logger: log})
			if err != nil {
				return err
			}
			log.Info("outline built",
				zap.String("run_id", res.RunID),
				zap.Int("bookmarks", len(res.Bookmarks)),
				zap.Int("rejections", res.Diagnostics.Count(outline.ValidationRejection)))

			if printTree {
				renderTree(cmd.ErrOrStderr(), res.Tree)
				renderSummary(cmd.ErrOrStderr(), res.Diagnostics)
			}
			return writeBookmarks(cmd, res.Bookmarks, out, format)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json|txt|csv|md (default from --out extension, else json)")
	cmd.Flags().StringVar(&extractor, "extractor", "glyphs", "text extractor: glyphs|ledongthuc")
	cmd.Flags().Float64Var(&alignTolerance, "align-tolerance", 5, "x distance from the reference column a heading may have")
	cmd.Flags().Float64Var(&levelIndent, "level-indent", outline.DefaultConfig().Alignment.LevelIndent, "extra x allowance per level below 1")
	cmd.Flags().Float64Var(&fontTolerance, "font-tolerance", 0.5, "font size tolerance in points")
	cmd.Flags().IntVar(&maxDepth, "max-depth", outline.MaxDepth, "deepest level kept in the outline")
	cmd.Flags().BoolVar(&noAlign, "no-align", false, "disable the alignment filter")
	cmd.Flags().BoolVar(&noFontBand, "no-font-band", false, "disable the font band filter")
	cmd.Flags().BoolVar(&excludeTitle, "exclude-title", false, "drop the document title used as alignment reference")
	cmd.Flags().StringSliceVar(&include, "include", nil, "titles to force into the outline")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "titles to drop from the outline")
	cmd.Flags().StringVar(&refine, "refine", "off", "semantic refinement: off|openai|gemini")
	cmd.Flags().StringVar(&model, "model", "", "model for the refinement service")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OpenAI-compatible chat completions URL")
	cmd.Flags().BoolVar(&printTree, "print", false, "print the outline tree and a rejection summary to stderr")
	return cmd
}
