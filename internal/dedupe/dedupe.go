// Package dedupe flags catalog products that probably describe the same item.
package dedupe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fairyhunter13/market-helper/internal/model"
)

// combiningMarks is the Combining Diacritical Marks block.
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalize lowercases s, folds accented letters to their base letter and
// trims surrounding whitespace: "  Café " becomes "cafe".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	// Neither transformer reports errors on in-memory input.
	out, _, _ := transform.String(t, strings.ToLower(s))
	return strings.TrimSpace(out)
}

// Pair is a duplicate candidate. A comes before B in the input.
type Pair struct {
	A model.Product `json:"a"`
	B model.Product `json:"b"`
}

type normalized struct {
	name, brand string
}

// FindCandidates returns every unordered pair of products whose normalized
// names contain one another and whose normalized brands contain one another.
// Pairs are emitted in scan order and never pair a product with itself.
func FindCandidates(products []model.Product) []Pair {
	norms := make([]normalized, len(products))
	for i, p := range products {
		norms[i] = normalized{name: Normalize(p.Name), brand: Normalize(p.Brand)}
	}
	pairs := []Pair{}
	for i := 0; i < len(products); i++ {
		for j := i + 1; j < len(products); j++ {
			if products[i].ID == products[j].ID {
				continue
			}
			if overlaps(norms[i].name, norms[j].name) && overlaps(norms[i].brand, norms[j].brand) {
				pairs = append(pairs, Pair{A: products[i], B: products[j]})
			}
		}
	}
	return pairs
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
