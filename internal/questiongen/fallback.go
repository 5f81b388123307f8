package questiongen

// fallbackStatements are true statements used when true/false generation
// fails. They suit the general machine-learning sample material.
var fallbackStatements = []string{
	"Machine learning is a branch of artificial intelligence.",
	"Supervised learning trains a model on labelled examples.",
	"Overfitting is more likely when a model is too complex for its training data.",
	"Cross-validation is a technique for estimating how well a model generalises.",
	"A test set should be kept separate from the data used for training.",
}

func (g *Generator) fallbackTrueFalse(p plan) *Question {
	statement := fallbackStatements[g.intN(len(fallbackStatements))]
	return &Question{
		ID:            QuestionID(statement, p.difficulty),
		Content:       statement,
		CorrectAnswer: "True",
		Explanation:   "This statement is true.",
		Difficulty:    p.difficulty,
		SourceChunks:  p.excerpts,
		Tags:          []string{string(TypeTrueFalse), string(p.difficulty)},
		Metadata: map[string]any{
			MetaGenerationMethod: MethodFallback,
			MetaSource:           MethodFallback,
		},
		Body: &TrueFalse{},
	}
}
