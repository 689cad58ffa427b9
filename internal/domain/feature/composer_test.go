package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

func TestComposer_DefaultDim(t *testing.T) {
	c, err := NewComposer(1024)
	require.NoError(t, err)
	assert.Equal(t, 1044, c.Dim())
	assert.Equal(t, 1024, c.FingerprintBits())
}

func TestComposer_LayoutFingerprintFirst(t *testing.T) {
	c, err := NewComposer(8)
	require.NoError(t, err)

	fp := molecule.NewFingerprint(molecule.FPMorgan, make([]byte, 1), 8)
	fp.SetBit(0)
	fp.SetBit(7)
	comp, err := protein.NewEncoder().Encode("AC")
	require.NoError(t, err)

	v, err := c.Compose(fp, comp)
	require.NoError(t, err)
	require.Len(t, v, 28)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 1}, []float64(v[:8]))
	assert.Equal(t, 0.5, v[8])  // A
	assert.Equal(t, 0.5, v[9])  // C
	assert.Equal(t, 0.0, v[10]) // D

	bits, rest, err := c.Split(v)
	require.NoError(t, err)
	assert.Len(t, bits, 8)
	assert.Len(t, rest, 20)
}

func TestComposer_EndToEndLength(t *testing.T) {
	enc, err := molecule.NewMorganEncoder(2, 1024)
	require.NoError(t, err)
	fp, err := enc.Encode("CCO")
	require.NoError(t, err)
	comp, err := protein.NewEncoder().Encode("MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ")
	require.NoError(t, err)

	c, err := NewComposer(1024)
	require.NoError(t, err)
	v, err := c.Compose(fp, comp)
	require.NoError(t, err)
	assert.Len(t, v, 1044)
	for _, x := range v[:1024] {
		assert.True(t, x == 0 || x == 1)
	}
}

func TestComposer_Mismatch(t *testing.T) {
	c, err := NewComposer(1024)
	require.NoError(t, err)

	fp := molecule.NewFingerprint(molecule.FPMorgan, make([]byte, 256), 2048)
	_, err = c.Compose(fp, protein.Composition{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureLengthMismatch))

	_, err = c.Compose(nil, protein.Composition{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureLengthMismatch))

	_, _, err = c.Split(make(Vector, 10))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureLengthMismatch))
}

func TestNewComposer_Invalid(t *testing.T) {
	_, err := NewComposer(0)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintParams))
}
