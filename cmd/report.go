package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/weakness"
)

// The reporting commands read the performance store only and never need a
// model provider.

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.PerformanceRepo().UserStatistics(cmd.Context(), appConfig.UserID)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List questions you have answered wrong and not yet mastered",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		wrong, err := s.PerformanceRepo().WrongQuestions(cmd.Context(), appConfig.UserID, store.WrongQuery{Limit: limit, Tags: tags})
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), wrong)
		}
		printWrongQuestions(cmd.OutOrStdout(), wrong)
		return nil
	},
}

var weaknessCmd = &cobra.Command{
	Use:   "weakness",
	Short: "Analyze weak topics over a trailing window",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("--days must be positive")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := weakness.NewAnalyzer(s.PerformanceRepo()).Analyze(cmd.Context(), appConfig.UserID, days)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printWeaknessReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a study plan from your weak topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := weakness.NewAnalyzer(s.PerformanceRepo()).Analyze(cmd.Context(), appConfig.UserID, weakness.DefaultWindowDays)
		if err != nil {
			return err
		}
		var plan *weakness.Plan
		if len(report.Weaknesses) > 0 {
			plan = weakness.StudyPlan(report.Weaknesses)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), plan)
		}
		printPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, reviewCmd, weaknessCmd, planCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of text")
	}
	reviewCmd.Flags().IntP("limit", "n", store.DefaultWrongLimit, "Maximum entries to show")
	reviewCmd.Flags().StringSlice("tag", nil, "Only entries carrying one of these tags")
	weaknessCmd.Flags().Int("days", weakness.DefaultWindowDays, "Trailing window in days")
}

var rule = strings.Repeat("─", 60)

func printStats(w io.Writer, s *store.UserStats) {
	if s.TotalAttempts == 0 {
		fmt.Fprintln(w, "No attempts recorded yet.")
		return
	}
	fmt.Fprintf(w, "Attempts:   %d\n", s.TotalAttempts)
	fmt.Fprintf(w, "Correct:    %d (%.1f%%)\n", s.CorrectAttempts, s.OverallAccuracy*100)
	fmt.Fprintf(w, "To review:  %d\n", s.UnmasteredWrong)

	if len(s.ByDifficulty) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-12s  %6s  %8s  %8s\n", "Difficulty", "Total", "Correct", "Accuracy")
		fmt.Fprintln(w, rule)
		for _, d := range s.ByDifficulty {
			fmt.Fprintf(w, "%-12s  %6d  %8d  %7.1f%%\n", d.Difficulty, d.Total, d.Correct, d.Accuracy*100)
		}
	}
	if len(s.TopTags) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-28s  %6s  %8s  %8s\n", "Tag", "Total", "Correct", "Accuracy")
		fmt.Fprintln(w, rule)
		for _, t := range s.TopTags {
			fmt.Fprintf(w, "%-28s  %6d  %8d  %7.1f%%\n", truncate(t.Tag, 28), t.Total, t.Correct, t.Accuracy*100)
		}
	}
}

func printWrongQuestions(w io.Writer, wrong []store.WrongQuestion) {
	if len(wrong) == 0 {
		fmt.Fprintln(w, "Nothing to review.")
		return
	}
	for i, q := range wrong {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.QuestionText)
		fmt.Fprintf(w, "   You said:  %s\n", q.UserAnswer)
		fmt.Fprintf(w, "   Answer:    %s\n", q.CorrectAnswer)
		if q.SuggestedImprovement != "" {
			fmt.Fprintf(w, "   Tip:       %s\n", q.SuggestedImprovement)
		}
		fmt.Fprintf(w, "   Missed %d time(s), last %s", q.WrongCount, q.LastWrongAt.Local().Format("2006-01-02"))
		if len(q.Tags) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(q.Tags, ", "))
		}
		fmt.Fprintln(w)
	}
}

func printWeaknessReport(w io.Writer, r *weakness.Report) {
	if r.Status == weakness.StatusNoData {
		fmt.Fprintln(w, r.Message)
		return
	}
	fmt.Fprintf(w, "Last %d days: %d attempts, %.1f%% correct\n", r.WindowDays, r.TotalAttempts, r.OverallAccuracy)
	fmt.Fprintf(w, "Trend: %s", r.Trend.Direction)
	if r.Trend.Message != "" {
		fmt.Fprintf(w, " (%s)", r.Trend.Message)
	}
	fmt.Fprintln(w)

	if len(r.Weaknesses) == 0 {
		fmt.Fprintln(w, "\nNo weak topics. Keep going.")
	} else {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-28s  %8s  %8s\n", "Weak topic", "Attempts", "Accuracy")
		fmt.Fprintln(w, rule)
		for _, wk := range r.Weaknesses {
			fmt.Fprintf(w, "%-28s  %8d  %7.1f%%\n", truncate(wk.Tag, 28), wk.TotalAttempts, wk.Accuracy)
		}
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w)
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "- %s\n", rec)
		}
	}
}

func printPlan(w io.Writer, p *weakness.Plan) {
	if p == nil {
		fmt.Fprintln(w, "Nothing needs improving right now.")
		return
	}
	fmt.Fprintln(w, "Focus areas")
	fmt.Fprintln(w, rule)
	for _, a := range p.PriorityAreas {
		fmt.Fprintf(w, "%s: %s -> %s\n", a.Area, a.CurrentLevel, a.TargetLevel)
		for _, act := range a.SuggestedActions {
			fmt.Fprintf(w, "  - %s\n", act)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Daily goals")
	fmt.Fprintln(w, rule)
	for _, g := range p.DailyGoals {
		fmt.Fprintf(w, "Day %d: %s\n", g.Day, g.Focus)
		for _, task := range g.Tasks {
			fmt.Fprintf(w, "  - %s\n", task)
		}
	}
	if p.Timeline != "" {
		fmt.Fprintf(w, "\nTimeline: %s\n", p.Timeline)
	}
}
