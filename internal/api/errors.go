package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateful/backend/internal/service"
)

// respondError maps service-layer errors onto HTTP statuses. Exhaustion is
// a 422 with the full rejection detail; generator failures are upstream
// faults (502); anything unrecognized is a 500.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var exhaustionErr *service.DiversityExhaustionError
	var generatorErr *service.GeneratorError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &exhaustionErr):
		c.JSON(http.StatusUnprocessableEntity, ExhaustionResponse{
			Error:               exhaustionErr.Error(),
			Attempts:            exhaustionErr.Attempts,
			MaxSimilarity:       exhaustionErr.MaxSimilarity,
			SimilarityThreshold: exhaustionErr.SimilarityThreshold,
			DiversityScore:      exhaustionErr.DiversityScore,
			DiversityThreshold:  exhaustionErr.DiversityThreshold,
			Weaknesses:          exhaustionErr.Weaknesses,
			Suggestions:         exhaustionErr.Suggestions,
		})
	case errors.As(err, &generatorErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "recipe generation is temporarily unavailable"})
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
