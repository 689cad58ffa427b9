package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// Canonicalize parses s and writes it back as canonical SMILES. Two inputs
// that describe the same graph (same atoms, bond orders, charges and
// hydrogen counts) produce the same string, and the output canonicalizes to
// itself. Stereo markers are not written. Kekulé and aromatic spellings of
// the same ring are different graphs and stay different.
func Canonicalize(s string) (string, error) {
	g, err := ParseSMILES(s)
	if err != nil {
		return "", err
	}
	return g.CanonicalSMILES(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking
// ─────────────────────────────────────────────────────────────────────────────

func atomInvariant(g *Graph, i int) []int {
	a := g.Atoms[i]
	return []int{
		g.Degree(i),
		a.AtomicNumber,
		a.Isotope,
		a.Charge,
		a.HCount,
		boolInt(a.Aromatic),
		boolInt(a.InRing),
		a.Class,
	}
}

// CanonicalRanks assigns every atom a distinct rank in [0, n). Ranks depend
// only on the graph, not on atom order, except when breaking ties between
// atoms the refinement cannot tell apart.
func (g *Graph) CanonicalRanks() []int {
	n := g.NumAtoms()
	keys := make([][]int, n)
	for i := range keys {
		keys[i] = atomInvariant(g, i)
	}
	ranks := g.refine(denseRanks(keys))

	for classCount(ranks) < n {
		tied := lowestTiedRank(ranks)
		pick := -1
		for i, r := range ranks {
			if r == tied {
				pick = i
				break
			}
		}
		for i := range keys {
			keys[i] = []int{2 * ranks[i]}
		}
		keys[pick][0] = 2*tied - 1
		ranks = g.refine(denseRanks(keys))
	}
	return ranks
}

// refine iterates neighbourhood refinement until the number of classes stops growing.
func (g *Graph) refine(ranks []int) []int {
	n := g.NumAtoms()
	keys := make([][]int, n)
	for {
		for i := 0; i < n; i++ {
			key := make([]int, 1, 1+len(g.adj[i]))
			key[0] = ranks[i]
			nbrs := make([]int, 0, len(g.adj[i]))
			for _, e := range g.adj[i] {
				nbrs = append(nbrs, ranks[e.to]*8+int(g.Bonds[e.bond].Order))
			}
			sort.Ints(nbrs)
			keys[i] = append(key, nbrs...)
		}
		next := denseRanks(keys)
		if classCount(next) == classCount(ranks) {
			return next
		}
		ranks = next
	}
}

func denseRanks(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareInts(keys[idx[a]], keys[idx[b]]) < 0
	})
	ranks := make([]int, len(keys))
	r := 0
	for k, i := range idx {
		if k > 0 && compareInts(keys[i], keys[idx[k-1]]) != 0 {
			r++
		}
		ranks[i] = r
	}
	return ranks
}

func classCount(ranks []int) int {
	top := -1
	for _, r := range ranks {
		if r > top {
			top = r
		}
	}
	return top + 1
}

func lowestTiedRank(ranks []int) int {
	counts := make([]int, len(ranks))
	for _, r := range ranks {
		counts[r]++
	}
	for r, c := range counts {
		if c > 1 {
			return r
		}
	}
	return -1
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Writing
// ─────────────────────────────────────────────────────────────────────────────

type closure struct {
	other int
	bond  int
}

type smilesWriter struct {
	g        *Graph
	rank     []int
	visited  []bool
	seen     []bool // ring-closure bonds already recorded
	children [][]edge
	opens    [][]closure
	closes   [][]closure
	digit    map[int]int // bond -> ring label
	inUse    map[int]bool
	sb       strings.Builder
}

// CanonicalSMILES writes g depth-first from the lowest-ranked atom of each
// fragment, visiting neighbours in rank order. Fragments are joined with '.'
// in order of their lowest rank.
func (g *Graph) CanonicalSMILES() string {
	n := g.NumAtoms()
	w := &smilesWriter{
		g:        g,
		rank:     g.CanonicalRanks(),
		visited:  make([]bool, n),
		seen:     make([]bool, len(g.Bonds)),
		children: make([][]edge, n),
		opens:    make([][]closure, n),
		closes:   make([][]closure, n),
		digit:    make(map[int]int),
		inUse:    make(map[int]bool),
	}

	frags := g.Fragments()
	roots := make([]int, len(frags))
	for k, frag := range frags {
		root := frag[0]
		for _, i := range frag {
			if w.rank[i] < w.rank[root] {
				root = i
			}
		}
		roots[k] = root
	}
	sort.Slice(roots, func(a, b int) bool { return w.rank[roots[a]] < w.rank[roots[b]] })

	for k, root := range roots {
		w.plan(root, -1)
		if k > 0 {
			w.sb.WriteByte('.')
		}
		w.write(root)
	}
	return w.sb.String()
}

func (w *smilesWriter) sortedEdges(u int) []edge {
	es := append([]edge(nil), w.g.adj[u]...)
	sort.Slice(es, func(a, b int) bool { return w.rank[es[a].to] < w.rank[es[b].to] })
	return es
}

// plan builds the DFS spanning tree and records ring closures before
// anything is written, since a ring label is printed at its opening atom.
func (w *smilesWriter) plan(u, fromBond int) {
	w.visited[u] = true
	for _, e := range w.sortedEdges(u) {
		if e.bond == fromBond {
			continue
		}
		if w.visited[e.to] {
			if !w.seen[e.bond] {
				w.seen[e.bond] = true
				w.opens[e.to] = append(w.opens[e.to], closure{other: u, bond: e.bond})
				w.closes[u] = append(w.closes[u], closure{other: e.to, bond: e.bond})
			}
			continue
		}
		w.seen[e.bond] = true
		w.children[u] = append(w.children[u], e)
		w.plan(e.to, e.bond)
	}
}

func (w *smilesWriter) write(u int) {
	w.sb.WriteString(w.atomToken(u))

	var released []int
	for _, c := range w.closes[u] {
		d := w.digit[c.bond]
		w.sb.WriteString(ringLabel(d))
		released = append(released, d)
	}
	for _, c := range w.opens[u] {
		d := w.nextDigit()
		w.digit[c.bond] = d
		w.inUse[d] = true
		w.sb.WriteString(w.bondToken(w.g.Bonds[c.bond]))
		w.sb.WriteString(ringLabel(d))
	}
	for _, d := range released {
		delete(w.inUse, d)
	}

	for k, e := range w.children[u] {
		last := k == len(w.children[u])-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondToken(w.g.Bonds[e.bond]))
		w.write(e.to)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func (w *smilesWriter) nextDigit() int {
	for d := 1; ; d++ {
		if !w.inUse[d] {
			return d
		}
	}
}

func ringLabel(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondToken(b Bond) string {
	bothAromatic := w.g.Atoms[b.A].Aromatic && w.g.Atoms[b.B].Aromatic
	switch b.Order {
	case BondSingle:
		if bothAromatic {
			return "-"
		}
		return ""
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	}
	return ""
}

func (w *smilesWriter) atomToken(i int) string {
	a := w.g.Atoms[i]
	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if w.bare(i) {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	if a.HCount > 0 {
		sb.WriteByte('H')
		if a.HCount > 1 {
			sb.WriteString(strconv.Itoa(a.HCount))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	if a.Class > 0 {
		sb.WriteString(":" + strconv.Itoa(a.Class))
	}
	sb.WriteByte(']')
	return sb.String()
}

// bare reports whether atom i round-trips without brackets.
func (w *smilesWriter) bare(i int) bool {
	a := w.g.Atoms[i]
	if a.Isotope != 0 || a.Charge != 0 || a.Class != 0 {
		return false
	}
	if a.Symbol == "*" {
		return a.HCount == 0
	}
	if !isOrganic(a.Symbol) {
		return false
	}
	if a.Aromatic {
		if _, ok := aromaticOrganic[strings.ToLower(a.Symbol)]; !ok {
			return false
		}
	}
	h, ok := implicitHydrogens(w.g, i)
	return ok && h == a.HCount
}
