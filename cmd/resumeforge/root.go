package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "resumeforge",
		Short: "Convert resumes into a fixed two-part PDF layout",
		Long: `resumeforge extracts text from PDF, DOCX, HTML, Markdown or plain text
resumes, structures it with a generative model and renders a PDF whose
first page holds as many experience entries as fit.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(newServeCmd(logger), newConvertCmd(logger))
	return root
}
