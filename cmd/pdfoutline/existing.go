package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-outline/internal/pdfsource"
)

func existingCmd() *cobra.Command {
	var out string
	var format string

	cmd := &cobra.Command{
		Use:   "existing <pdf>",
		Short: "Export the bookmarks already stored in a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bms, err := pdfsource.ReadOutline(args[0])
			if err != nil {
				return err
			}
			return writeBookmarks(cmd, bms, out, format)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json|txt|csv|md")
	return cmd
}
