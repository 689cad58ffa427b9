package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

func TestFingerprint_BitOps(t *testing.T) {
	fp := NewFingerprint(FPMorgan, make([]byte, 2), 16)
	assert.Equal(t, 0, fp.NumOnBits)

	fp.SetBit(0)
	fp.SetBit(9)
	fp.SetBit(9)
	fp.SetBit(16)
	fp.SetBit(-1)

	assert.True(t, fp.GetBit(0))
	assert.True(t, fp.GetBit(9))
	assert.False(t, fp.GetBit(1))
	assert.False(t, fp.GetBit(16))
	assert.Equal(t, 2, fp.NumOnBits)
	assert.Equal(t, []int{0, 9}, fp.OnBits())
	assert.Equal(t, byte(0x01), fp.Bits[0])
	assert.Equal(t, byte(0x02), fp.Bits[1])
}

func TestNewFingerprint_CountsBits(t *testing.T) {
	fp := NewFingerprint(FPMorgan, []byte{0xFF, 0x01}, 16)
	assert.Equal(t, 9, fp.NumOnBits)
}

func TestFingerprint_Floats(t *testing.T) {
	fp := NewFingerprint(FPMorgan, make([]byte, 1), 5)
	fp.SetBit(1)
	fp.SetBit(4)
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, fp.Floats())
}

func TestNewMorganEncoder_InvalidParams(t *testing.T) {
	_, err := NewMorganEncoder(-1, 1024)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintParams))

	_, err = NewMorganEncoder(2, 0)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintParams))

	enc, err := NewMorganEncoder(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, enc.Radius())
	assert.Equal(t, 1, enc.NBits())
}

func TestMorganEncoder_Geometry(t *testing.T) {
	enc, err := NewMorganEncoder(DefaultMorganRadius, DefaultMorganBits)
	require.NoError(t, err)

	fp, err := enc.Encode("CCO")
	require.NoError(t, err)
	assert.Equal(t, FPMorgan, fp.Type)
	assert.Equal(t, 2, fp.Radius)
	assert.Equal(t, 1024, fp.Length)
	assert.Len(t, fp.Bits, 128)
	assert.Len(t, fp.Floats(), 1024)
	// three atoms, three identifiers each
	assert.True(t, fp.NumOnBits >= 1 && fp.NumOnBits <= 9, "on bits %d", fp.NumOnBits)
}

func TestMorganEncoder_Deterministic(t *testing.T) {
	enc, err := NewMorganEncoder(2, 1024)
	require.NoError(t, err)

	for _, smi := range canonicalCorpus {
		canon, err := Canonicalize(smi)
		require.NoError(t, err)
		a, err := enc.Encode(canon)
		require.NoError(t, err)
		b, err := enc.Encode(canon)
		require.NoError(t, err)
		assert.Equal(t, a.Bits, b.Bits, smi)
	}
}

func TestMorganEncoder_InvariantToAtomOrder(t *testing.T) {
	enc, err := NewMorganEncoder(2, 2048)
	require.NoError(t, err)

	a, err := enc.Encode("CC(=O)Oc1ccccc1C(=O)O")
	require.NoError(t, err)
	b, err := enc.Encode("OC(=O)c1ccccc1OC(C)=O")
	require.NoError(t, err)
	assert.Equal(t, a.Bits, b.Bits)
}

func TestMorganEncoder_ExplicitHydrogensMatchImplicit(t *testing.T) {
	enc, err := NewMorganEncoder(2, 1024)
	require.NoError(t, err)

	want, err := enc.Encode("CCO")
	require.NoError(t, err)
	for _, smi := range []string{"[H]OCC", "[H]C([H])([H])C([H])([H])O[H]"} {
		got, err := enc.Encode(smi)
		require.NoError(t, err, smi)
		assert.Equal(t, want.Bits, got.Bits, smi)
	}
}

func TestMorganEncoder_DistinguishesMolecules(t *testing.T) {
	enc, err := NewMorganEncoder(2, 1024)
	require.NoError(t, err)

	ethanol, err := enc.Encode("CCO")
	require.NoError(t, err)
	benzene, err := enc.Encode("c1ccccc1")
	require.NoError(t, err)
	assert.NotEqual(t, ethanol.Bits, benzene.Bits)
}

func TestMorganEncoder_RadiusZeroUsesAtomInvariantsOnly(t *testing.T) {
	enc, err := NewMorganEncoder(0, 4096)
	require.NoError(t, err)

	// all six benzene carbons share one invariant
	fp, err := enc.Encode("c1ccccc1")
	require.NoError(t, err)
	assert.Equal(t, 1, fp.NumOnBits)
}

func TestMorganEncoder_LargerRadiusAddsBits(t *testing.T) {
	small, err := CalculateMorganFingerprint("CC(C)Cc1ccc(cc1)C(C)C(=O)O", 0, 4096)
	require.NoError(t, err)
	large, err := CalculateMorganFingerprint("CC(C)Cc1ccc(cc1)C(C)C(=O)O", 2, 4096)
	require.NoError(t, err)
	for _, bit := range small.OnBits() {
		assert.True(t, large.GetBit(bit), "radius-0 bit %d missing at radius 2", bit)
	}
	assert.Greater(t, large.NumOnBits, small.NumOnBits)
}

func TestMorganEncoder_InvalidSMILES(t *testing.T) {
	_, err := CalculateMorganFingerprint("C1CC", 2, 1024)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeUnclosedRing))
}
