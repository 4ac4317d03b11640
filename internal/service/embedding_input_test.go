package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/plateful/backend/internal/model"
)

func TestEmbeddingInput(t *testing.T) {
	t.Run("short notes are joined to the name", func(t *testing.T) {
		input := embeddingInput(&model.RecipeDraft{Name: "Lemon Pasta", Notes: "bright and quick"})
		assert.Equal(t, "Lemon Pasta bright and quick", input)
	})

	t.Run("empty notes leave the name alone", func(t *testing.T) {
		input := embeddingInput(&model.RecipeDraft{Name: "Lemon Pasta"})
		assert.Equal(t, "Lemon Pasta", input)
	})

	t.Run("long multi-byte notes are cut on a rune boundary", func(t *testing.T) {
		notes := strings.Repeat("közlenmiş patlıcan ", 30)
		input := embeddingInput(&model.RecipeDraft{Name: "Patlıcan Salatası", Notes: notes})

		assert.True(t, utf8.ValidString(input))
		wantRunes := utf8.RuneCountInString("Patlıcan Salatası ") + notesEmbeddingLimit
		assert.Equal(t, wantRunes, utf8.RuneCountInString(input))
	})
}
