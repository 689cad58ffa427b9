package molecule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

var canonicalCorpus = []string{
	"CCO",
	"C",
	"O=C=O",
	"C#N",
	"CC(C)(C)C",
	"C1CCCCC1",
	"c1ccccc1",
	"C1=CC=CC=C1",
	"c1ccc2ccccc2c1",
	"C1CC2CCC1C2",
	"CC(=O)Oc1ccccc1C(=O)O",
	"Cn1cnc2c1c(=O)n(C)c(=O)n2C",
	"CC(C)Cc1ccc(cc1)C(C)C(=O)O",
	"OC(=O)C(N)Cc1c[nH]c2ccccc12",
	"N[C@@H](C)C(=O)O",
	"[2H]C([2H])([2H])O",
	"[NH4+]",
	"[Na+].[Cl-]",
	"CCO.O",
	"c1ccccc1-c1ccccc1",
	"C1CC1C1CC1",
	"C12C3C4C1C5C2C3C45",
	"[O-][N+](=O)c1ccccc1",
	"*CC",
	"C%10CC%10",
}

func TestCanonicalize_Idempotent(t *testing.T) {
	for _, smi := range canonicalCorpus {
		t.Run(smi, func(t *testing.T) {
			once, err := Canonicalize(smi)
			require.NoError(t, err)
			twice, err := Canonicalize(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	for _, smi := range canonicalCorpus {
		a, err := Canonicalize(smi)
		require.NoError(t, err)
		b, err := Canonicalize(smi)
		require.NoError(t, err)
		assert.Equal(t, a, b, smi)
	}
}

func TestCanonicalize_EquivalentInputs(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"ethanol reversed", "CCO", "OCC"},
		{"ethanol branched", "CCO", "C(O)C"},
		{"explicit methyl hydrogens", "CCO", "[CH3]CO"},
		{"cyclohexane ring opened elsewhere", "C1CCCCC1", "C(C1)CCCC1"},
		{"benzene ring label", "c1ccccc1", "c2ccccc2"},
		{"toluene", "Cc1ccccc1", "c1ccc(C)cc1"},
		{"acetic acid", "CC(=O)O", "OC(C)=O"},
		{"fragment order", "CCO.O", "O.OCC"},
		{"stereo dropped", "N[C@@H](C)C(=O)O", "NC(C)C(=O)O"},
		{"cis trans dropped", "F/C=C/F", "FC=CF"},
		{"aspirin", "CC(=O)Oc1ccccc1C(=O)O", "OC(=O)c1ccccc1OC(C)=O"},
		{"ring label style", "C%10CC%10", "C1CC1"},
		{"explicit hydroxyl hydrogen", "CCO", "[H]OCC"},
		{"fully explicit ethanol", "CCO", "[H]C([H])([H])C([H])([H])O[H]"},
		{"explicit aromatic hydrogen", "c1ccccc1", "[H]c1ccccc1"},
		{"explicit pyrrole hydrogen", "c1cc[nH]c1", "[H]n1cccc1"},
		{"explicit hydrogen on charged atom", "[NH4+]", "[H][NH3+]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Canonicalize(tc.a)
			require.NoError(t, err)
			b, err := Canonicalize(tc.b)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestCanonicalize_KnownForms(t *testing.T) {
	cases := map[string]string{
		"OCC":      "CCO",
		"C(O)C":    "CCO",
		"C":        "C",
		"C1CCCCC1": "C1CCCCC1",
		"c1ccccc1": "c1ccccc1",
		"[CH3]CO":  "CCO",
		"[NH4+]":   "[NH4+]",
		"[CH2]C":   "[CH2]C",
	}
	for in, want := range cases {
		got, err := Canonicalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestCanonicalize_DistinctMolecules(t *testing.T) {
	a, err := Canonicalize("CCO")
	require.NoError(t, err)
	b, err := Canonicalize("COC")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCanonicalize_KeepsSpecialHydrogens(t *testing.T) {
	cases := map[string]string{
		"[2H]OC":  "[2H]",
		"[H+]":    "[H+]",
		"[H][H]":  "[H][H]",
		"[H:1]OC": "[H:1]",
	}
	for in, want := range cases {
		got, err := Canonicalize(in)
		require.NoError(t, err, in)
		assert.Contains(t, got, want, in)
	}
}

func TestCanonicalize_KekuleAndAromaticStayDistinct(t *testing.T) {
	kekule, err := Canonicalize("C1=CC=CC=C1")
	require.NoError(t, err)
	aromatic, err := Canonicalize("c1ccccc1")
	require.NoError(t, err)
	assert.NotEqual(t, kekule, aromatic)
}

func TestCanonicalize_PreservesBracketDetails(t *testing.T) {
	out, err := Canonicalize("[Na+].[Cl-]")
	require.NoError(t, err)
	assert.Contains(t, out, "[Na+]")
	assert.Contains(t, out, "[Cl-]")
	assert.Equal(t, 1, strings.Count(out, "."))

	out, err = Canonicalize("[13CH4]")
	require.NoError(t, err)
	assert.Equal(t, "[13CH4]", out)

	out, err = Canonicalize("c1ccccc1-c1ccccc1")
	require.NoError(t, err)
	assert.Contains(t, out, "-", "single bond between aromatic atoms must stay explicit")
}

func TestCanonicalize_Invalid(t *testing.T) {
	_, err := Canonicalize("not_a_smiles!!")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeUnexpectedChar))

	_, err = Canonicalize("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeEmptySMILES))
}

func TestCanonicalRanks_AreAPermutation(t *testing.T) {
	for _, smi := range canonicalCorpus {
		g, err := ParseSMILES(smi)
		require.NoError(t, err, smi)
		ranks := g.CanonicalRanks()
		seen := make(map[int]bool, len(ranks))
		for _, r := range ranks {
			assert.True(t, r >= 0 && r < len(ranks), smi)
			seen[r] = true
		}
		assert.Len(t, seen, len(ranks), smi)
	}
}
