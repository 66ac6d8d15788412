package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionTerm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		brand string
		want  string
	}{
		{name: "strips quantity", input: "Yaourt nature 4 x 125 g", want: "yaourt nature"},
		{name: "strips pack count", input: "Compote de pommes lot de 6", want: "compote pommes"},
		{name: "keeps at most three words", input: "Pâte à tartiner noisettes cacao maigre", want: "pâte tartiner noisettes"},
		{name: "strips punctuation and volume", input: "Jus d'orange, 1,5 L", want: "jus d orange"},
		{name: "falls back to first brand", input: "", brand: "Danone, Groupe Danone", want: "danone"},
		{name: "noise only falls back to brand", input: "Nouveau format familial", brand: "Lu", want: "lu"},
		{name: "empty", input: "", brand: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestionTerm(tt.input, tt.brand))
		})
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("125"))
	assert.False(t, isNumeric("12a"))
	assert.False(t, isNumeric(""))
}
