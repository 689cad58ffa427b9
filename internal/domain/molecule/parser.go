package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// maxRingNumber bounds %nn ring closure labels.
const maxRingNumber = 99

type ringOpen struct {
	atom     int
	order    BondOrder
	explicit bool
	pos      int
}

type parser struct {
	src  string
	pos  int
	g    *Graph
	prev int
	bond BondOrder

	// bondSet is true once a bond symbol is pending for the next atom or ring label.
	bondSet bool

	branches []int
	rings    map[int]ringOpen
}

// chiralClasses are the two-letter tetrahedral, allene, square-planar,
// bipyramidal and octahedral markers that may follow '@'.
var chiralClasses = map[string]bool{"TH": true, "AL": true, "SP": true, "TB": true, "OH": true}

func parseErr(code errors.ErrorCode, pos int, format string, args ...interface{}) *errors.AppError {
	return errors.New(code, fmt.Sprintf(format, args...)).WithDetail(fmt.Sprintf("position %d", pos))
}

// ParseSMILES parses s into a molecular graph. It accepts organic-subset and
// bracket atoms, bonds (- = # $ : / \), branches, ring closures (digits and
// %nn) and dot-separated fragments. Stereo markers are read and discarded
// from the bond graph. The returned graph has ring membership and hydrogen
// counts resolved, and has passed valence and aromaticity checks. Plain
// [H] atoms bonded to one heavy atom are folded into that atom's HCount.
func ParseSMILES(s string) (*Graph, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeMoleculeEmptySMILES, "SMILES string is empty")
	}
	p := &parser{
		src:   s,
		g:     newGraph(),
		prev:  -1,
		rings: make(map[int]ringOpen),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	g := p.g
	g.perceiveRings()
	if err := resolveHydrogens(g); err != nil {
		return nil, err
	}
	g = foldExplicitHydrogens(g)
	for i, a := range g.Atoms {
		if a.Aromatic && !a.InRing {
			return nil, errors.New(errors.ErrCodeMoleculeNonRingAromatic,
				fmt.Sprintf("aromatic atom %s is not in a ring", a.Symbol)).WithDetail(fmt.Sprintf("atom %d", i))
		}
	}
	return g, nil
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		case isLetter(ch) || ch == '*':
			if err := p.organicAtom(); err != nil {
				return err
			}
		case strings.IndexByte("-=#$:/\\", ch) >= 0:
			if err := p.bondSymbol(ch); err != nil {
				return err
			}
		case ch == '(':
			if p.prev < 0 {
				return parseErr(errors.ErrCodeMoleculeUnbalancedBranch, p.pos, "branch opened before any atom")
			}
			if p.bondSet {
				return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
			if p.pos < len(p.src) && p.src[p.pos] == ')' {
				return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "empty branch")
			}
		case ch == ')':
			if len(p.branches) == 0 {
				return parseErr(errors.ErrCodeMoleculeUnbalancedBranch, p.pos, "unmatched ')'")
			}
			if p.bondSet {
				return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "bond symbol without a following atom")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case isDigit(ch) || ch == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case ch == '.':
			if p.bondSet {
				return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "bond symbol before '.'")
			}
			if len(p.branches) > 0 {
				return parseErr(errors.ErrCodeMoleculeUnbalancedBranch, p.pos, "'.' inside an open branch")
			}
			p.prev = -1
			p.pos++
		default:
			return parseErr(errors.ErrCodeMoleculeUnexpectedChar, p.pos, "unexpected character %q", ch)
		}
	}

	if p.bondSet {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "SMILES ends with a bond symbol")
	}
	if len(p.branches) > 0 {
		return parseErr(errors.ErrCodeMoleculeUnbalancedBranch, p.pos, "%d unclosed branch(es)", len(p.branches))
	}
	if len(p.rings) > 0 {
		first := -1
		for n, r := range p.rings {
			if first < 0 || r.pos < p.rings[first].pos {
				first = n
			}
		}
		return parseErr(errors.ErrCodeMoleculeUnclosedRing, p.rings[first].pos, "ring bond %d is never closed", first)
	}
	if len(p.g.Atoms) == 0 {
		return errors.New(errors.ErrCodeMoleculeEmptySMILES, "SMILES contains no atoms")
	}
	return nil
}

func (p *parser) bondSymbol(ch byte) error {
	if p.prev < 0 {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "bond symbol %q without a preceding atom", ch)
	}
	if p.bondSet {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, p.pos, "consecutive bond symbols")
	}
	switch ch {
	case '-', '/', '\\':
		p.bond = BondSingle
	case '=':
		p.bond = BondDouble
	case '#':
		p.bond = BondTriple
	case '$':
		p.bond = BondQuadruple
	case ':':
		p.bond = BondAromatic
	}
	p.bondSet = true
	p.pos++
	return nil
}

// implicitOrder is the order of an unmarked bond between a and b.
func (p *parser) implicitOrder(a, b int) BondOrder {
	if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

// attach adds atom a and bonds it to the previous atom.
func (p *parser) attach(a Atom) {
	idx := p.g.addAtom(a)
	if p.prev >= 0 {
		order := p.bond
		if !p.bondSet {
			order = p.implicitOrder(p.prev, idx)
		}
		p.g.addBond(p.prev, idx, order)
	}
	p.prev = idx
	p.bondSet = false
}

func (p *parser) organicAtom() error {
	start := p.pos
	ch := p.src[p.pos]
	var a Atom
	switch {
	case ch == '*':
		a = Atom{Symbol: "*", AtomicNumber: 0}
		p.pos++
	case ch == 'C' && p.peek(1) == 'l':
		a = Atom{Symbol: "Cl"}
		p.pos += 2
	case ch == 'B' && p.peek(1) == 'r':
		a = Atom{Symbol: "Br"}
		p.pos += 2
	default:
		sym := string(ch)
		if upper, ok := aromaticOrganic[sym]; ok {
			a = Atom{Symbol: upper, Aromatic: true}
		} else if isOrganic(sym) {
			a = Atom{Symbol: sym}
		} else {
			return parseErr(errors.ErrCodeMoleculeUnexpectedChar, start, "%q is not an organic-subset atom", ch)
		}
		p.pos++
	}
	if a.Symbol != "*" {
		a.AtomicNumber, _ = AtomicNumber(a.Symbol)
	}
	a.HCount = -1
	p.attach(a)
	return nil
}

func (p *parser) bracketAtom() error {
	open := p.pos
	end := strings.IndexByte(p.src[open:], ']')
	if end < 0 {
		return parseErr(errors.ErrCodeMoleculeInvalidBracket, open, "unterminated bracket atom")
	}
	body := p.src[open+1 : open+end]
	a, err := parseBracketBody(body)
	if err != nil {
		return err.WithDetail(fmt.Sprintf("position %d: [%s]", open, body))
	}
	p.pos = open + end + 1
	p.attach(a)
	return nil
}

// parseBracketBody parses isotope? symbol chiral? hcount? charge? class? .
func parseBracketBody(body string) (Atom, *errors.AppError) {
	bad := func(msg string) (Atom, *errors.AppError) {
		return Atom{}, errors.New(errors.ErrCodeMoleculeInvalidBracket, msg)
	}
	a := Atom{Bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	switch {
	case i < len(body) && body[i] == '*':
		a.Symbol = "*"
		i++
	case i+1 < len(body) && aromaticBracket[body[i:i+2]] != "":
		a.Symbol = aromaticBracket[body[i:i+2]]
		a.Aromatic = true
		i += 2
	case i < len(body) && aromaticBracket[body[i:i+1]] != "":
		a.Symbol = aromaticBracket[body[i:i+1]]
		a.Aromatic = true
		i++
	case i < len(body) && isUpper(body[i]):
		if i+1 < len(body) && isLower(body[i+1]) {
			if _, ok := AtomicNumber(body[i : i+2]); ok {
				a.Symbol = body[i : i+2]
				i += 2
				break
			}
		}
		if _, ok := AtomicNumber(body[i : i+1]); !ok {
			return bad(fmt.Sprintf("unknown element %q", body[i:i+1]))
		}
		a.Symbol = body[i : i+1]
		i++
	default:
		return bad("missing element symbol")
	}
	a.AtomicNumber, _ = AtomicNumber(a.Symbol)

	if i < len(body) && body[i] == '@' {
		j := i + 1
		switch {
		case j < len(body) && body[j] == '@':
			j++
		case j+1 < len(body) && chiralClasses[body[j:j+2]]:
			j += 2
			for j < len(body) && isDigit(body[j]) {
				j++
			}
		}
		a.Chirality = body[i:j]
		i = j
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			a.Charge = sign * n
		default:
			n := 1
			for i < len(body) && body[i] == sym {
				n++
				i++
			}
			a.Charge = sign * n
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return bad("atom class must be numeric")
		}
		for i < len(body) && isDigit(body[i]) {
			a.Class = a.Class*10 + int(body[i]-'0')
			i++
		}
	}

	if i != len(body) {
		return bad(fmt.Sprintf("unexpected %q in bracket atom", body[i:]))
	}
	return a, nil
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "ring bond label without a preceding atom")
	}
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "'%%' must be followed by two digits")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}
	if num > maxRingNumber {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "ring bond label %d out of range", num)
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpen{atom: p.prev, order: p.bond, explicit: p.bondSet, pos: start}
		p.bondSet = false
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "ring bond %d joins an atom to itself", num)
	}
	if p.g.bonded(open.atom, p.prev) {
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "ring bond %d duplicates an existing bond", num)
	}
	order := p.implicitOrder(open.atom, p.prev)
	switch {
	case open.explicit && p.bondSet && open.order != p.bond:
		return parseErr(errors.ErrCodeMoleculeInvalidSMILES, start, "ring bond %d has conflicting bond orders", num)
	case open.explicit:
		order = open.order
	case p.bondSet:
		order = p.bond
	}
	p.g.addBond(open.atom, p.prev, order)
	p.bondSet = false
	return nil
}

func (p *parser) peek(offset int) byte {
	if p.pos+offset < len(p.src) {
		return p.src[p.pos+offset]
	}
	return 0
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isLetter(c byte) bool { return isUpper(c) || isLower(c) }
