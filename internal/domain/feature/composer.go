// Package feature assembles the estimator input vector from a drug
// fingerprint and a protein composition.
package feature

import (
	"fmt"

	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Vector is the estimator input: fingerprint bits as 0/1 followed by the
// 20 residue proportions.
type Vector []float64

// Composer fixes the vector layout for one fingerprint width.
type Composer struct {
	nBits int
}

// NewComposer returns a composer for fingerprints of nBits bits.
func NewComposer(nBits int) (*Composer, error) {
	if nBits < 1 {
		return nil, errors.New(errors.ErrCodeFingerprintParams, fmt.Sprintf("nBits must be >= 1, got %d", nBits))
	}
	return &Composer{nBits: nBits}, nil
}

// Dim is the length of every vector this composer produces.
func (c *Composer) Dim() int { return c.nBits + protein.AlphabetSize }

// FingerprintBits is the width of the fingerprint segment.
func (c *Composer) FingerprintBits() int { return c.nBits }

// Compose concatenates fp and comp. A fingerprint of the wrong width is a
// programming error surfaced as ErrCodeFeatureLengthMismatch.
func (c *Composer) Compose(fp *molecule.Fingerprint, comp protein.Composition) (Vector, error) {
	if fp == nil {
		return nil, errors.New(errors.ErrCodeFeatureLengthMismatch, "fingerprint is nil")
	}
	if fp.Length != c.nBits {
		return nil, errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("fingerprint has %d bits, composer expects %d", fp.Length, c.nBits))
	}
	v := make(Vector, 0, c.Dim())
	for i := 0; i < c.nBits; i++ {
		if fp.GetBit(i) {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}
	v = append(v, comp[:]...)
	return v, nil
}

// Split returns the fingerprint and composition segments of v.
func (c *Composer) Split(v Vector) (bits, comp []float64, err error) {
	if len(v) != c.Dim() {
		return nil, nil, errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("vector has length %d, expected %d", len(v), c.Dim()))
	}
	return v[:c.nBits], v[c.nBits:], nil
}
