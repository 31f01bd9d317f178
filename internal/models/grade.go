package models

// GradeOutcome is a single (grade, probability) pair from the grading
// estimator. Grades run 1..10 in 0.5 steps.
type GradeOutcome struct {
	Grade       float64 `json:"grade"`
	Probability float64 `json:"prob"`
}

// GradeDistribution is the estimator's probability distribution over grade
// outcomes. Probabilities are clamped and renormalized before use.
type GradeDistribution []GradeOutcome
