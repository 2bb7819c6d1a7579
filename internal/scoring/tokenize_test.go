package scoring

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t\n", []string{}},
		{"lowercases", "Hola Mundo", []string{"hola", "mundo"}},
		{"strips punctuation", "¡Hola, mundo! ¿Qué tal?", []string{"hola", "mundo", "qué", "tal"}},
		{"preserves apostrophes", "it's o'clock", []string{"it's", "o'clock"}},
		{"collapses separators", "uno -- dos...tres", []string{"uno", "dos", "tres"}},
		{"keeps digits and accents", "año 2024 está bien", []string{"año", "2024", "está", "bien"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
