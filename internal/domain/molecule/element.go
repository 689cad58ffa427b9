package molecule

// elementSymbols lists the periodic table in atomic-number order, starting at H.
var elementSymbols = [...]string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols)+1)
	for i, s := range elementSymbols {
		m[s] = i + 1
	}
	m["*"] = 0
	return m
}()

// AtomicNumber returns the atomic number of symbol and whether it is known.
// The wildcard "*" maps to 0.
func AtomicNumber(symbol string) (int, bool) {
	n, ok := atomicNumbers[symbol]
	return n, ok
}

// organicValences holds the allowed neutral valences of the organic subset,
// lowest first. Atoms written without brackets must fit one of them.
var organicValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3},
	"O":  {2},
	"P":  {3, 5, 7},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1, 3, 5},
}

// aromaticOrganic are the lower-case symbols allowed outside brackets.
var aromaticOrganic = map[string]string{
	"b": "B",
	"c": "C",
	"n": "N",
	"o": "O",
	"p": "P",
	"s": "S",
}

// aromaticBracket adds the lower-case symbols that are only valid inside brackets.
var aromaticBracket = map[string]string{
	"b":  "B",
	"c":  "C",
	"n":  "N",
	"o":  "O",
	"p":  "P",
	"s":  "S",
	"se": "Se",
	"as": "As",
	"te": "Te",
}

func isOrganic(symbol string) bool {
	_, ok := organicValences[symbol]
	return ok
}
