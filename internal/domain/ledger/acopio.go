package ledger

import (
	"strings"

	"github.com/jhoicas/maquipaes-api/pkg/textnorm"
)

// DefaultAcopioNames variantes con las que los operadores escriben el acopio en los reportes.
var DefaultAcopioNames = []string{"acopio", "centro de acopio", "patio maquipaes"}

// AcopioResolver decide si un lugar libre de un reporte corresponde al acopio.
type AcopioResolver struct {
	variants []string
}

// NewAcopioResolver construye el resolver; sin nombres usa DefaultAcopioNames.
func NewAcopioResolver(names ...string) *AcopioResolver {
	if len(names) == 0 {
		names = DefaultAcopioNames
	}
	r := &AcopioResolver{}
	for _, n := range names {
		if f := textnorm.Fold(n); f != "" {
			r.variants = append(r.variants, f)
		}
	}
	return r
}

// IsAcopio coincidencia por subcadena, sin mayúsculas ni tildes.
func (r *AcopioResolver) IsAcopio(location string) bool {
	loc := textnorm.Fold(location)
	if loc == "" {
		return false
	}
	for _, v := range r.variants {
		if strings.Contains(loc, v) {
			return true
		}
	}
	return false
}
