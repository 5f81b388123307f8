package questiongen

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQuestionID(t *testing.T) {
	a := QuestionID("What is overfitting?", DifficultyEasy)
	if len(a) != 12 {
		t.Fatalf("id length = %d", len(a))
	}
	if a != QuestionID("What is overfitting?", DifficultyEasy) {
		t.Error("id should be deterministic")
	}
	if a == QuestionID("What is overfitting?", DifficultyHard) {
		t.Error("difficulty should change the id")
	}
}

func TestQuestionJSON_ShortAnswer(t *testing.T) {
	q := &Question{
		ID:            "abc",
		Content:       "Explain overfitting.",
		CorrectAnswer: "The model memorises noise.",
		Difficulty:    DifficultyMedium,
		Tags:          []string{"overfitting"},
		Body:          &ShortAnswer{Criteria: []string{"mentions noise", "mentions generalisation"}},
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"short_answer"`) || !strings.Contains(string(data), `"options":[]`) {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back Question
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Type() != TypeShortAnswer || len(back.Criteria()) != 2 {
		t.Errorf("decoded = %+v", back)
	}
}

func TestQuestionJSON_UnknownType(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"type":"essay"}`), &q); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestOptions(t *testing.T) {
	tf := &Question{Body: &TrueFalse{}}
	if got := tf.Options(); len(got) != 2 || got[0] != "True" {
		t.Errorf("true/false options = %v", got)
	}
	sa := &Question{Body: &ShortAnswer{}}
	if sa.Options() != nil {
		t.Error("short answer has no options")
	}
}
