package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/tutor"
)

// maxQuestions caps one generation request.
const maxQuestions = 20

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate questions from study material and print them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if err := checkCount(count); err != nil {
			return err
		}
		types, err := typesFlag(cmd)
		if err != nil {
			return err
		}
		mixFlag, _ := cmd.Flags().GetString("mix")
		mix, err := tutor.ParseMix(mixFlag)
		if err != nil {
			return err
		}
		stream, _ := cmd.Flags().GetBool("stream")
		if !cmd.Flags().Changed("stream") {
			stream = appConfig.Stream
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.close()

		s, err := loadSession(cmd, e.tutor, args)
		if err != nil {
			return err
		}
		req := tutor.GenerateRequest{SessionID: s.ID, Count: count, Types: types, Mix: mix}
		out := cmd.OutOrStdout()

		var questions []*questiongen.Question
		if stream && !asJSON {
			questions, err = streamQuestions(cmd, e.tutor, req)
		} else {
			questions, err = e.tutor.GenerateQuestions(cmd.Context(), req)
		}
		if err != nil && len(questions) == 0 {
			return err
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "generation stopped early:", err)
		}

		if asJSON {
			return writeJSON(out, struct {
				SessionID string                  `json:"session_id"`
				Questions []*questiongen.Question `json:"questions"`
			}{s.ID, questions})
		}
		if !stream {
			for i, q := range questions {
				printQuestion(out, i+1, q)
			}
		}
		fmt.Fprintf(out, "\nSession %s: %d question(s).\n", s.ID, len(questions))
		return nil
	},
}

// streamQuestions prints questions as they are generated. Raw model output
// is shown on stderr so stdout only carries finished questions.
func streamQuestions(cmd *cobra.Command, t *tutor.Tutor, req tutor.GenerateRequest) ([]*questiongen.Question, error) {
	var questions []*questiongen.Question
	progress := cmd.ErrOrStderr()
	for ev, err := range t.StreamQuestions(cmd.Context(), req) {
		if err != nil {
			return questions, err
		}
		switch ev := ev.(type) {
		case questiongen.Started:
			fmt.Fprintf(progress, "Generating question %d of %d...\n", ev.Index, ev.Total)
		case questiongen.Delta:
			fmt.Fprint(progress, ev.Text)
		case questiongen.Completed:
			fmt.Fprintln(progress)
			questions = append(questions, ev.Question)
			printQuestion(cmd.OutOrStdout(), len(questions), ev.Question)
		}
	}
	return questions, nil
}

func printQuestion(w io.Writer, n int, q *questiongen.Question) {
	fmt.Fprintf(w, "\n%d. [%s, %s] %s\n", n, q.Type(), q.Difficulty, q.Content)
	for i, opt := range q.Options() {
		fmt.Fprintf(w, "   %c) %s\n", 'a'+i, opt)
	}
	fmt.Fprintf(w, "   Answer: %s\n", q.CorrectAnswer)
	if q.Explanation != "" {
		fmt.Fprintf(w, "   Why: %s\n", q.Explanation)
	}
	if len(q.Tags) > 0 {
		fmt.Fprintf(w, "   Tags: %s\n", strings.Join(q.Tags, ", "))
	}
	fmt.Fprintf(w, "   ID: %s\n", q.ID)
}

func typesFlag(cmd *cobra.Command) ([]questiongen.Type, error) {
	raw, _ := cmd.Flags().GetStringSlice("type")
	types := make([]questiongen.Type, 0, len(raw))
	for _, s := range raw {
		t, err := questiongen.ParseType(s)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	addMaterialFlags(generateCmd)
	generateCmd.Flags().IntP("count", "n", tutor.DefaultQuestionCount, "Number of questions")
	generateCmd.Flags().StringSliceP("type", "t", nil, "Question types: multiple_choice, short_answer, true_false")
	generateCmd.Flags().String("mix", "", "Difficulty mix when no type is given: adaptive, easy, challenge")
	generateCmd.Flags().Bool("stream", true, "Print questions as they are generated (default from STUDYLOOP_STREAM)")
	generateCmd.Flags().Bool("json", false, "Print JSON instead of text")
}
