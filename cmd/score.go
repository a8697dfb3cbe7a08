package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/resume-scorer/internal/scorer"
	"github.com/spigell/resume-scorer/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "resume file (PDF or DOCX)")
	scoreCmd.Flags().String("job-description", "", "job description text")
	scoreCmd.Flags().String("job-file", "", "file containing the job description")
	scoreCmd.Flags().BoolP("semantic", "s", false, "also run semantic (BERT) matching; slower but more accurate")
	scoreCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before submitting")
}

func score(cmd *cobra.Command) {
	ctx := cmd.Context()
	logger, config := setup()

	flags := cmd.Flags()
	resumePath, _ := flags.GetString("resume")
	jobText, _ := flags.GetString("job-description")
	jobFile, _ := flags.GetString("job-file")
	semantic, _ := flags.GetBool("semantic")
	yes, _ := flags.GetBool("yes")

	if strings.TrimSpace(resumePath) == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass it with --resume"))
	}

	resume, err := scorer.LoadResumeFile(resumePath)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	jobDescription, err := resolveJobDescription(jobText, jobFile, promptJobDescription)
	if err != nil {
		logger.Fatal("getting job description", zap.Error(err))
	}

	req := scorer.ScoreRequest{
		Resume:              resume,
		JobDescription:      jobDescription,
		UseSemanticMatching: semantic,
	}

	if !req.Submittable() {
		logger.Fatal("resume file and a non-empty job description are required")
	}

	logger.Debug("prepared request",
		zap.String("resume", resume.Name),
		zap.String("size", fmt.Sprintf("%.2f KB", resume.SizeKB())),
		zap.Int("job_description_chars", len([]rune(jobDescription))),
	)

	if !yes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Submit %s (%.2f KB) to %s", resume.Name, resume.SizeKB(), config.APIURL),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			logger.Info("exiting", zap.String("reason", "submission not confirmed"))
			return
		}
	}

	client := newClient(config, logger)

	response, err := client.Submit(ctx, req).Result()
	if err != nil {
		fields := []zap.Field{zap.String("error", err.Error())}
		if hint := failureHint(err); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Fatal("scoring failed", fields...)
	}

	store := session.NewFileStore(config.SessionFile)
	if err := session.Persist(store, response, resume.Name); err != nil {
		logger.Warn("saving results for the results command", zap.Error(err), zap.String("path", store.Path()))
	}

	saved := &session.Saved{Response: response, FileName: resume.Name}
	if err := report(ctx, cmd.OutOrStdout(), config, client, logger, saved, jobDescription); err != nil {
		logger.Fatal("printing report", zap.Error(err))
	}
}

// resolveJobDescription picks the job text from the flag, then the file, then the prompt.
func resolveJobDescription(text, file string, prompt func() (string, error)) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if strings.TrimSpace(file) != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading job description file: %w", err)
		}
		return string(data), nil
	}

	if prompt == nil {
		return "", errors.New("job description is required")
	}

	return prompt()
}

func promptJobDescription() (string, error) {
	p := promptui.Prompt{
		Label: "Job description",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("job description must not be empty")
			}
			return nil
		},
	}

	return p.Run()
}

// failureHint suggests what the operator can do about a failed submission.
func failureHint(err error) string {
	var clientErr *scorer.ClientError
	if !errors.As(err, &clientErr) {
		return ""
	}

	switch clientErr.Kind {
	case scorer.KindTimeout:
		return "the scoring service may be busy; semantic matching is slower, try again without --semantic"
	case scorer.KindNetworkUnreachable:
		return "check that the scoring service is running and that api-url points at it"
	case scorer.KindMalformedResponse:
		return "the scoring service replied with an unexpected payload; check client and service versions"
	case scorer.KindServerError:
		if clientErr.StatusCode >= 500 {
			return "the scoring service failed internally; check its logs"
		}
		return "fix the submission and run the command again"
	}

	return ""
}
