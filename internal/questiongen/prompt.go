package questiongen

import (
	"fmt"
	"strings"
)

const baseRules = `You are an experienced teacher writing assessment questions from a learner's study material.

Rules:
- Base every question strictly on the provided material. Do not test facts the material does not contain.
- Test understanding of the core concepts, not trivia or wording.
- Match the requested difficulty: "easy" checks recall of a single fact, "medium" asks the learner to relate two ideas, "hard" asks them to apply or reason about a concept in a new situation.
- Write in the same language as the material.`

var systemPrompts = map[Type]string{
	TypeMultipleChoice: baseRules + `
- Provide exactly 4 options with exactly one correct answer.
- Distractors should be plausible misconceptions, not obviously wrong.
- correct_answer must repeat the correct option's text exactly.
- The explanation says why the correct option is right and why the others are wrong.`,

	TypeShortAnswer: baseRules + `
- Ask a question that needs a few sentences to answer well.
- The reference answer must cover every scoring criterion.
- Give 2 to 4 scoring criteria, each a key point a grader can check for.`,

	TypeTrueFalse: baseRules + `
- Write one declarative statement that is clearly either true or false according to the material.
- Avoid double negatives and statements that are only partly true.`,
}

var typeLabels = map[Type]string{
	TypeMultipleChoice: "multiple-choice question",
	TypeShortAnswer:    "short-answer question",
	TypeTrueFalse:      "true/false statement",
}

// buildUserMessage renders the per-question request.
func buildUserMessage(t Type, difficulty Difficulty, excerpts []string, conceptContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write one %s of %s difficulty.\n", typeLabels[t], difficulty)

	if conceptContext != "" {
		b.WriteString("\nOverview of the whole material:\n")
		b.WriteString(conceptContext)
	}

	b.WriteString("\nStudy material:\n")
	b.WriteString(strings.Join(excerpts, "\n"))

	return b.String()
}
