package weakness

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/abhisek/studyloop/internal/questiongen"
)

// TargetAccuracy is the goal set for every priority area.
const TargetAccuracy = 85.0

const maxTargeted = 5

// Recommendations returns severity-tiered advice for the top weaknesses
// followed by general study habits.
func Recommendations(weaknesses []Weakness) []string {
	if len(weaknesses) == 0 {
		return []string{"Great work! You're ready for harder questions."}
	}

	var recs []string
	for _, w := range top(weaknesses) {
		switch {
		case w.Accuracy < 50:
			recs = append(recs, fmt.Sprintf("[Urgent] %s is a weak area (accuracy %.1f%%). Review the core concepts systematically.", w.Tag, w.Accuracy))
		case w.Accuracy < 70:
			recs = append(recs, fmt.Sprintf("[Priority] %s needs more work (accuracy %.1f%%).", w.Tag, w.Accuracy))
		default:
			recs = append(recs, fmt.Sprintf("[Consolidate] %s is mostly understood. Keep practising.", w.Tag))
		}
	}
	return append(recs,
		"Spend 30 minutes a day reviewing wrong questions.",
		"Connect related concepts into a bigger picture.",
		"Try explaining concepts to someone else.",
	)
}

// Plan is a one-week study plan.
type Plan struct {
	PriorityAreas []PriorityArea `json:"priority_areas"`
	DailyGoals    []DailyGoal    `json:"daily_goals"`
	Timeline      string         `json:"timeline"`
}

// PriorityArea is one weak tag to focus on.
type PriorityArea struct {
	Area             string   `json:"area"`
	CurrentLevel     string   `json:"current_level"`
	TargetLevel      string   `json:"target_level"`
	SuggestedActions []string `json:"suggested_actions"`
}

// DailyGoal is the focus for one day.
type DailyGoal struct {
	Day   int      `json:"day"`
	Focus string   `json:"focus"`
	Tasks []string `json:"tasks"`
}

var dailyTasks = []string{
	"Answer 10 practice questions",
	"Review your wrong questions",
	"Summarise the key points",
}

// StudyPlan builds a plan around the top weaknesses. Daily goals rotate
// through weaknesses starting at index 1 for day 1.
func StudyPlan(weaknesses []Weakness) *Plan {
	plan := &Plan{
		PriorityAreas: []PriorityArea{},
		Timeline:      "2-week improvement plan",
	}

	for _, w := range top(weaknesses) {
		plan.PriorityAreas = append(plan.PriorityAreas, PriorityArea{
			Area:         w.Tag,
			CurrentLevel: fmt.Sprintf("%.1f%%", w.Accuracy),
			TargetLevel:  fmt.Sprintf("%.0f%%", TargetAccuracy),
			SuggestedActions: []string{
				fmt.Sprintf("Review the concepts behind %s", w.Tag),
				fmt.Sprintf("Redo the related practice questions (%d)", len(w.ErrorQuestions)),
				"Write up notes on your mistakes",
			},
		})
	}

	for day := 1; day <= 7; day++ {
		focus := "comprehensive review"
		if len(weaknesses) > 0 {
			focus = weaknesses[day%len(weaknesses)].Tag
		}
		plan.DailyGoals = append(plan.DailyGoals, DailyGoal{
			Day:   day,
			Focus: focus,
			Tasks: slices.Clone(dailyTasks),
		})
	}
	return plan
}

// Targeted picks up to five pool questions tagged with any of the top
// three weak tags, in pool order.
func Targeted(weaknesses []Weakness, pool []*questiongen.Question) []*questiongen.Question {
	weakTags := lo.Map(top(weaknesses), func(w Weakness, _ int) string { return w.Tag })
	if len(weakTags) == 0 {
		return nil
	}

	matched := lo.Filter(pool, func(q *questiongen.Question, _ int) bool {
		return lo.Some(q.Tags, weakTags)
	})
	return matched[:min(len(matched), maxTargeted)]
}

func top(weaknesses []Weakness) []Weakness {
	return weaknesses[:min(len(weaknesses), topWeaknesses)]
}
