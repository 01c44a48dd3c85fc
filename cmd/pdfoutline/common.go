package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/config"
	"github.com/thywilljoshua/pdf-outline/internal/export"
	"github.com/thywilljoshua/pdf-outline/internal/logging"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// setup loads the config file and environment, then builds the logger.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Log.Level = "debug"
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// writeBookmarks writes to out, or stdout when out is empty. An empty format
// is taken from out's extension.
func writeBookmarks(cmd *cobra.Command, bms []outline.Bookmark, out, format string) error {
	if format == "" {
		format = export.FormatFromPath(out)
	}
	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	ow, err := export.NewWriter(format, w)
	if err != nil {
		return err
	}
	if err := ow.WriteOutline(bms); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}
	if out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bookmarks to %s\n", len(bms), out)
	}
	return nil
}
