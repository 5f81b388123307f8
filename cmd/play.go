package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/app"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/screens/home"
	"github.com/abhisek/studyloop/internal/tutor"
)

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Start an interactive practice session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func addPlayFlags(cmd *cobra.Command) {
	addMaterialFlags(cmd)
	cmd.Flags().IntP("count", "n", tutor.DefaultQuestionCount, "Questions per round")
	cmd.Flags().StringSliceP("type", "t", nil, "Question types: multiple_choice, short_answer, true_false")
}

func init() {
	addPlayFlags(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if err := checkCount(count); err != nil {
		return err
	}
	types, err := typesFlag(cmd)
	if err != nil {
		return err
	}

	// The UI owns the terminal, so only errors are logged while it runs.
	tuiLog, err := logger.New(appConfig.LogMode, "error")
	if err != nil {
		return err
	}
	e, err := openEnv(cmd, tuiLog)
	if err != nil {
		return err
	}
	defer e.close()

	s, err := loadSession(cmd, e.tutor, args)
	if err != nil {
		return err
	}

	log.Info("starting practice", "session_id", s.ID, "user_id", appConfig.UserID, "chunks", len(s.Chunks))
	return app.Run(app.Options{
		Service: e.tutor,
		Home: home.Options{
			UserID:    appConfig.UserID,
			SessionID: s.ID,
			Source:    s.Source,
			Count:     count,
			Types:     types,
		},
	})
}

func checkCount(n int) error {
	if n < 1 || n > maxQuestions {
		return fmt.Errorf("--count must be between 1 and %d", maxQuestions)
	}
	return nil
}
