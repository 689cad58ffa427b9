// Package protein turns an amino-acid sequence into its composition vector.
package protein

import (
	"fmt"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Alphabet is the ordered set of the 20 standard amino acids. The composition
// vector follows this order.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// AlphabetSize is the length of a Composition.
const AlphabetSize = len(Alphabet)

var residueIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		idx[Alphabet[i]] = int8(i)
	}
	return idx
}()

// Composition holds the proportion of each residue of Alphabet, in order.
type Composition [AlphabetSize]float64

// Slice returns the proportions as a fresh slice.
func (c Composition) Slice() []float64 {
	out := make([]float64, AlphabetSize)
	copy(out, c[:])
	return out
}

// Of returns the proportion of residue r, or 0 for letters outside Alphabet.
func (c Composition) Of(r byte) float64 {
	if i := residueIndex[r]; i >= 0 {
		return c[i]
	}
	return 0
}

// Encoder computes compositions. Lower-case residues are folded to upper case
// before validation; nothing else is normalized.
type Encoder struct{}

// NewEncoder returns a sequence encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode validates seq and returns its composition. It fails when seq is empty
// or holds any symbol outside Alphabet (including X, B, Z, U, O, gaps and
// whitespace).
func (e *Encoder) Encode(seq string) (Composition, error) {
	var counts [AlphabetSize]int
	if seq == "" {
		return Composition{}, errors.New(errors.ErrCodeSequenceEmpty, "protein sequence is empty")
	}
	for i := 0; i < len(seq); i++ {
		r := seq[i]
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		idx := residueIndex[r]
		if idx < 0 {
			return Composition{}, errors.New(errors.ErrCodeSequenceUnknownResidue,
				fmt.Sprintf("unknown residue %q", seq[i])).WithDetail(fmt.Sprintf("position %d", i+1))
		}
		counts[idx]++
	}

	var c Composition
	total := float64(len(seq))
	for i, n := range counts {
		c[i] = float64(n) / total
	}
	return c, nil
}

// Validate reports whether seq would encode, without building the vector.
func Validate(seq string) error {
	_, err := NewEncoder().Encode(seq)
	return err
}
