package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "pdfoutline",
		Short:         "Infer a bookmark outline from a PDF's text layout",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "log level: debug|info|warn|error (default from config)")
	root.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(buildCmd(), matchCmd(), existingCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
