package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "The Great Gatsby", "the great gatsby"},
		{"edition annotation", "The Great Gatsby (Anniversary Edition)", "the great gatsby"},
		{"lower case", "the great gatsby", "the great gatsby"},
		{"colon subtitle", "Sapiens: A Brief History of Humankind", "sapiens"},
		{"hyphen subtitle", "Dune - Deluxe", "dune"},
		{"en dash subtitle", "Emma – Annotated", "emma"},
		{"punctuation collapses", "Harry Potter & the Philosopher's Stone!!", "harry potter the philosopher s stone"},
		{"accents fold", "Les Misérables", "les miserables"},
		{"annotation in the middle", "Dune (Book 1) Collector's", "dune collector s"},
		{"only annotation", "(Untitled)", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.title))
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	inputs := []string{
		"The Great Gatsby (Anniversary Edition)",
		"Sapiens: A Brief History",
		"  Émile  ---  ou de l'éducation ",
		"1984",
		"((nested)) title",
		"a\nb: c",
		"",
		"ÆSOP'S FABLES",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		assert.Equal(t, once, NormalizeTitle(once), "input %q", in)
	}
}

func TestTitleSet_Admit(t *testing.T) {
	seen := titleSet{}

	assert.True(t, seen.admit("Dune"))
	assert.False(t, seen.admit("Dune (Paperback)"))
	assert.False(t, seen.admit("DUNE: The Graphic Novel"))
	assert.True(t, seen.admit("Dune Messiah"))

	// Titles with an empty key never collapse into each other.
	assert.True(t, seen.admit("(Untitled)"))
	assert.True(t, seen.admit("(Untitled)"))
	assert.Len(t, seen, 2)
}
