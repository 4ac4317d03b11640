package service

import (
	"errors"
	"fmt"
)

// ErrRecipeNotFound is returned when a recipe memory lookup finds nothing.
var ErrRecipeNotFound = errors.New("recipe not found")

// ValidationError reports a missing or malformed request field. It is
// surfaced before any external call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// GeneratorError wraps a failure of the external recipe generator. The
// orchestrator does not retry these; its retry budget is reserved for
// diversity rejections.
type GeneratorError struct {
	Err error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("recipe generation failed: %v", e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// DiversityExhaustionError is the terminal outcome of a generation request
// whose retry budget ran out without any candidate passing both the
// similarity and diversity checks. It is an expected rejection path, not a
// server fault, and carries enough detail for the caller to explain why.
type DiversityExhaustionError struct {
	Attempts            int
	MaxSimilarity       float64
	SimilarityThreshold float64
	DiversityScore      float64
	DiversityThreshold  float64
	Weaknesses          []string
	Suggestions         []string
}

func (e *DiversityExhaustionError) Error() string {
	return fmt.Sprintf(
		"could not generate a sufficiently different recipe after %d attempts (similarity %.2f vs threshold %.2f, diversity %.2f vs threshold %.2f)",
		e.Attempts, e.MaxSimilarity, e.SimilarityThreshold, e.DiversityScore, e.DiversityThreshold,
	)
}
