package molecule

import (
	"fmt"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// resolveHydrogens fills HCount for atoms written without brackets and rejects
// atoms whose bonds exceed every allowed valence.
func resolveHydrogens(g *Graph) error {
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.Bracket {
			if err := checkBracketValence(g, i); err != nil {
				return err
			}
			continue
		}
		h, ok := implicitHydrogens(g, i)
		if !ok {
			return errors.New(errors.ErrCodeMoleculeInvalidValence,
				fmt.Sprintf("%s with bond valence %d exceeds allowed valence", a.Symbol, g.bondValence(i))).
				WithDetail(fmt.Sprintf("atom %d", i))
		}
		a.HCount = h
	}
	return nil
}

// implicitHydrogens returns the hydrogen count an unbracketed atom i would
// carry given its bonds. Aromatic atoms first try to donate one electron to
// the ring (c, n, b, p); when that cannot fit, the atom is taken to contribute
// a lone pair instead (o, s, pyrrole-type n).
func implicitHydrogens(g *Graph, i int) (int, bool) {
	a := g.Atoms[i]
	valences, ok := organicValences[a.Symbol]
	if !ok {
		// wildcard
		return 0, true
	}
	sum := g.bondValence(i)
	if a.Aromatic {
		if sum+1 <= valences[0] {
			return valences[0] - (sum + 1), true
		}
	}
	for _, v := range valences {
		if sum <= v {
			return v - sum, true
		}
	}
	return 0, false
}

// checkBracketValence rejects neutral organic-subset bracket atoms that carry
// more bonds plus hydrogens than their largest valence, e.g. [CH5].
func checkBracketValence(g *Graph, i int) error {
	a := g.Atoms[i]
	valences, ok := organicValences[a.Symbol]
	if !ok || a.Charge != 0 {
		return nil
	}
	total := g.bondValence(i) + a.HCount
	if a.Aromatic {
		total++
	}
	if top := valences[len(valences)-1]; total > top && !(a.Aromatic && total-1 <= top) {
		return errors.New(errors.ErrCodeMoleculeInvalidValence,
			fmt.Sprintf("[%s] with %d bonds and %d hydrogens exceeds allowed valence", a.Symbol, g.Degree(i), a.HCount)).
			WithDetail(fmt.Sprintf("atom %d", i))
	}
	return nil
}

// foldExplicitHydrogens removes every [H] that is neutral, unlabelled and
// single-bonded to exactly one non-hydrogen atom, adding it to that atom's
// HCount. [2H], [H+], [H][H] and bridging hydrogens stay in the graph.
func foldExplicitHydrogens(g *Graph) *Graph {
	drop := make([]bool, len(g.Atoms))
	found := false
	for i, a := range g.Atoms {
		if a.AtomicNumber != 1 || !a.Bracket || a.Isotope != 0 || a.Charge != 0 || a.Class != 0 || a.HCount != 0 {
			continue
		}
		if len(g.adj[i]) != 1 {
			continue
		}
		e := g.adj[i][0]
		if g.Atoms[e.to].AtomicNumber == 1 || g.Bonds[e.bond].Order != BondSingle {
			continue
		}
		drop[i] = true
		found = true
	}
	if !found {
		return g
	}

	out := newGraph()
	index := make([]int, len(g.Atoms))
	for i, a := range g.Atoms {
		if drop[i] {
			index[i] = -1
			continue
		}
		index[i] = out.addAtom(a)
	}
	for _, b := range g.Bonds {
		switch {
		case drop[b.A]:
			out.Atoms[index[b.B]].HCount++
		case drop[b.B]:
			out.Atoms[index[b.A]].HCount++
		default:
			k := out.addBond(index[b.A], index[b.B], b.Order)
			out.Bonds[k].InRing = b.InRing
		}
	}
	return out
}
