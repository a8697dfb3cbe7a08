package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spigell/resume-scorer/internal/result"
	"github.com/spigell/resume-scorer/internal/scorer"
	"github.com/spigell/resume-scorer/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the result of the last scored resume",
	Run: func(cmd *cobra.Command, _ []string) {
		results(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func results(cmd *cobra.Command) {
	logger, config := setup()

	store := session.NewFileStore(config.SessionFile)
	saved, ok := session.Restore(store)
	if !ok {
		logger.Debug("no saved results", zap.String("path", store.Path()))
		fmt.Fprintln(cmd.OutOrStdout(), result.NoResults)
		return
	}

	client := newClient(config, logger)
	if err := report(cmd.Context(), cmd.OutOrStdout(), config, client, logger, saved, ""); err != nil {
		logger.Fatal("printing report", zap.Error(err))
	}
}

// report prints the interpreted score and, when enabled, the AI reviewer note.
func report(ctx context.Context, w io.Writer, config *Config, client *scorer.Client, logger *zap.Logger, saved *session.Saved, jobDescription string) error {
	candidate := result.CandidateName(saved.FileName)
	view := result.Interpret(*saved.Response)

	renderer := result.Renderer{Color: config.Color}
	if err := renderer.Render(w, candidate, view); err != nil {
		return err
	}

	note, err := review(ctx, config, client, logger, candidate, jobDescription, saved.Response, view)
	if err != nil {
		logger.Warn("skipping reviewer note", zap.Error(err))
		return nil
	}

	if note != nil {
		return printNote(w, note)
	}

	return nil
}
