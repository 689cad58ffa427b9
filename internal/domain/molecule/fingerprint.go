package molecule

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// FingerprintType names the algorithm that produced a Fingerprint.
type FingerprintType string

const FPMorgan FingerprintType = "morgan"

// Default Morgan geometry.
const (
	DefaultMorganRadius = 2
	DefaultMorganBits   = 1024
)

// Fingerprint is a packed bit vector. Bit i lives in byte i/8 at position i%8.
type Fingerprint struct {
	Type      FingerprintType `json:"type"`
	Radius    int             `json:"radius"`
	Bits      []byte          `json:"bits"`
	Length    int             `json:"length"`
	NumOnBits int             `json:"num_on_bits"`
}

// NewFingerprint wraps data as a fingerprint of length bits and counts the set bits.
func NewFingerprint(fpType FingerprintType, data []byte, length int) *Fingerprint {
	onBits := 0
	for _, b := range data {
		onBits += bits.OnesCount8(b)
	}
	return &Fingerprint{
		Type:      fpType,
		Bits:      data,
		Length:    length,
		NumOnBits: onBits,
	}
}

// GetBit reports whether bit index is set. Out-of-range indices read as unset.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Bits[index/8]&(1<<uint(index%8)) != 0
}

// SetBit sets bit index. Out-of-range indices are ignored.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.Length {
		return
	}
	old := fp.Bits[index/8]
	fp.Bits[index/8] |= 1 << uint(index%8)
	if old != fp.Bits[index/8] {
		fp.NumOnBits++
	}
}

// OnBits returns the indices of set bits in ascending order.
func (fp *Fingerprint) OnBits() []int {
	out := make([]int, 0, fp.NumOnBits)
	for i := 0; i < fp.Length; i++ {
		if fp.GetBit(i) {
			out = append(out, i)
		}
	}
	return out
}

// Floats expands the fingerprint into Length values of 0 or 1.
func (fp *Fingerprint) Floats() []float64 {
	out := make([]float64, fp.Length)
	for i := range out {
		if fp.GetBit(i) {
			out[i] = 1
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Morgan / ECFP
// ─────────────────────────────────────────────────────────────────────────────

// MorganEncoder computes circular fingerprints with a fixed radius and width.
// It holds no mutable state and is safe for concurrent use.
type MorganEncoder struct {
	radius int
	nBits  int
}

// NewMorganEncoder validates the geometry and returns an encoder.
func NewMorganEncoder(radius, nBits int) (*MorganEncoder, error) {
	if radius < 0 {
		return nil, errors.New(errors.ErrCodeFingerprintParams, fmt.Sprintf("radius must be >= 0, got %d", radius))
	}
	if nBits < 1 {
		return nil, errors.New(errors.ErrCodeFingerprintParams, fmt.Sprintf("nBits must be >= 1, got %d", nBits))
	}
	return &MorganEncoder{radius: radius, nBits: nBits}, nil
}

// Radius returns the number of neighbourhood iterations.
func (e *MorganEncoder) Radius() int { return e.radius }

// NBits returns the fingerprint width.
func (e *MorganEncoder) NBits() int { return e.nBits }

// Encode parses smiles and fingerprints it. Callers pass canonical SMILES so
// that equal molecules hash identically, though any valid SMILES works.
func (e *MorganEncoder) Encode(smiles string) (*Fingerprint, error) {
	g, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	return e.EncodeGraph(g), nil
}

// EncodeGraph fingerprints an already parsed graph. Every atom starts with an
// identifier hashed from its invariants; each iteration rehashes it with the
// sorted (bond order, neighbour identifier) pairs. Every identifier from every
// iteration sets bit id mod nBits.
func (e *MorganEncoder) EncodeGraph(g *Graph) *Fingerprint {
	fp := NewFingerprint(FPMorgan, make([]byte, (e.nBits+7)/8), e.nBits)
	fp.Radius = e.radius

	n := g.NumAtoms()
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		ids[i] = hashInts(initialInvariant(g, i)...)
		fp.SetBit(int(ids[i] % uint64(e.nBits)))
	}

	next := make([]uint64, n)
	for iter := 1; iter <= e.radius; iter++ {
		for i := 0; i < n; i++ {
			pairs := make([][2]uint64, 0, len(g.adj[i]))
			for _, ed := range g.adj[i] {
				pairs = append(pairs, [2]uint64{uint64(g.Bonds[ed.bond].Order), ids[ed.to]})
			}
			sort.Slice(pairs, func(a, b int) bool {
				if pairs[a][0] != pairs[b][0] {
					return pairs[a][0] < pairs[b][0]
				}
				return pairs[a][1] < pairs[b][1]
			})
			vals := make([]uint64, 0, 2+2*len(pairs))
			vals = append(vals, uint64(iter), ids[i])
			for _, p := range pairs {
				vals = append(vals, p[0], p[1])
			}
			next[i] = hashUints(vals)
			fp.SetBit(int(next[i] % uint64(e.nBits)))
		}
		ids, next = next, ids
	}
	return fp
}

// CalculateMorganFingerprint is a convenience wrapper around NewMorganEncoder and Encode.
func CalculateMorganFingerprint(smiles string, radius, nBits int) (*Fingerprint, error) {
	enc, err := NewMorganEncoder(radius, nBits)
	if err != nil {
		return nil, err
	}
	return enc.Encode(smiles)
}

// initialInvariant mirrors the ECFP atom invariants: heavy degree, atomic
// number, hydrogen count, formal charge, isotope and ring membership.
func initialInvariant(g *Graph, i int) []int {
	a := g.Atoms[i]
	return []int{g.Degree(i), a.AtomicNumber, a.HCount, a.Charge, a.Isotope, boolInt(a.InRing)}
}

func hashInts(vals ...int) uint64 {
	u := make([]uint64, len(vals))
	for i, v := range vals {
		u[i] = uint64(int64(v))
	}
	return hashUints(u)
}

func hashUints(vals []uint64) uint64 {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return xxhash.Sum64(buf)
}
