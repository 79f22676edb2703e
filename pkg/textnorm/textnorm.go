// Package textnorm normaliza textos libres (nombres de lugares, materiales) para compararlos
// sin importar mayúsculas, tildes ni espacios repetidos.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold pasa a minúsculas, elimina diacríticos y colapsa espacios: "  Acopio  MAQUIPAÉS " -> "acopio maquipaes".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Equal compara dos textos tras normalizarlos.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
