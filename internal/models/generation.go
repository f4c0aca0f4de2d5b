package models

// Result types returned by the generation gateway. A gateway implementation
// must return an error for anything it cannot produce in full; partial or
// malformed results are never coerced into these types.

// QuestionResult is a generated question. Code carries starter code and is
// only populated for coding slots.
type QuestionResult struct {
	Question string `json:"question"`
	Code     string `json:"code,omitempty"`
}

// GradeResult is the grading verdict for one answered exchange.
type GradeResult struct {
	Feedback string `json:"feedback"`
	Marks    int    `json:"marks"`
}

// EvaluationScores are the per-interview skill samples folded into a
// candidate's rolling EvalMetrics on submission.
type EvaluationScores struct {
	ProblemSolving float64 `json:"problem_solving"`
	CodeQuality    float64 `json:"code_quality"`
	Debugging      float64 `json:"debugging"`
}
