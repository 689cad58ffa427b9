// Package molecule parses SMILES into a molecular graph, writes a canonical
// SMILES for it, and encodes it as a Morgan (ECFP-style) bit fingerprint.
package molecule

import "sort"

// BondOrder is the multiplicity of a bond. Aromatic bonds get their own value.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 5
)

// valenceContribution is the order as counted against an atom's valence.
// Aromatic bonds count as one; the extra pi electron is added per atom.
func (o BondOrder) valenceContribution() int {
	if o == BondAromatic {
		return 1
	}
	return int(o)
}

// Atom is a vertex of the molecular graph.
type Atom struct {
	// Symbol is the element symbol in standard case ("C", "Cl", "*").
	Symbol       string
	AtomicNumber int
	Aromatic     bool
	// Bracket records that the atom was written as [...] in the input.
	Bracket   bool
	Isotope   int
	Charge    int
	Class     int
	Chirality string
	// HCount is the total hydrogen count: explicit for bracket atoms,
	// implicit (derived from valence) otherwise.
	HCount int
	InRing bool
}

// Bond is an edge of the molecular graph.
type Bond struct {
	A, B   int
	Order  BondOrder
	InRing bool
}

// Other returns the endpoint of b that is not atom.
func (b Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

type edge struct {
	to   int
	bond int
}

// Graph is an undirected molecular graph. It is built by ParseSMILES and is
// not modified afterwards.
type Graph struct {
	Atoms []Atom
	Bonds []Bond
	adj   [][]edge
}

func newGraph() *Graph {
	return &Graph{}
}

func (g *Graph) addAtom(a Atom) int {
	g.Atoms = append(g.Atoms, a)
	g.adj = append(g.adj, nil)
	return len(g.Atoms) - 1
}

func (g *Graph) addBond(a, b int, order BondOrder) int {
	g.Bonds = append(g.Bonds, Bond{A: a, B: b, Order: order})
	idx := len(g.Bonds) - 1
	g.adj[a] = append(g.adj[a], edge{to: b, bond: idx})
	g.adj[b] = append(g.adj[b], edge{to: a, bond: idx})
	return idx
}

// NumAtoms returns the number of atoms.
func (g *Graph) NumAtoms() int { return len(g.Atoms) }

// Degree returns the number of explicit neighbours of atom i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// Neighbors returns the neighbour indices of atom i in bond-insertion order.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, len(g.adj[i]))
	for k, e := range g.adj[i] {
		out[k] = e.to
	}
	return out
}

// BondBetween returns the bond joining a and b.
func (g *Graph) BondBetween(a, b int) (Bond, bool) {
	for _, e := range g.adj[a] {
		if e.to == b {
			return g.Bonds[e.bond], true
		}
	}
	return Bond{}, false
}

func (g *Graph) bonded(a, b int) bool {
	_, ok := g.BondBetween(a, b)
	return ok
}

// bondValence sums the valence contributions of every bond on atom i.
func (g *Graph) bondValence(i int) int {
	sum := 0
	for _, e := range g.adj[i] {
		sum += g.Bonds[e.bond].Order.valenceContribution()
	}
	return sum
}

// Fragments returns the connected components, each as ascending atom indices,
// ordered by their lowest atom index.
func (g *Graph) Fragments() [][]int {
	seen := make([]bool, len(g.Atoms))
	var frags [][]int
	for start := range g.Atoms {
		if seen[start] {
			continue
		}
		var frag []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			frag = append(frag, u)
			for _, e := range g.adj[u] {
				if !seen[e.to] {
					seen[e.to] = true
					stack = append(stack, e.to)
				}
			}
		}
		sort.Ints(frag)
		frags = append(frags, frag)
	}
	return frags
}

// perceiveRings marks ring bonds and ring atoms. A bond is a ring bond exactly
// when it is not a bridge of the graph.
func (g *Graph) perceiveRings() {
	n := len(g.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, e := range g.adj[u] {
			if e.bond == parentBond {
				continue
			}
			if disc[e.to] == -1 {
				visit(e.to, e.bond)
				if low[e.to] < low[u] {
					low[u] = low[e.to]
				}
				if low[e.to] <= disc[u] {
					g.Bonds[e.bond].InRing = true
				}
			} else if disc[e.to] < low[u] {
				low[u] = disc[e.to]
			}
			if disc[e.to] < disc[u] {
				// back edge to an ancestor
				g.Bonds[e.bond].InRing = true
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] == -1 {
			visit(i, -1)
		}
	}

	for i := range g.Bonds {
		if g.Bonds[i].InRing {
			g.Atoms[g.Bonds[i].A].InRing = true
			g.Atoms[g.Bonds[i].B].InRing = true
		}
	}
}
