package rex

// Iter is a pull-based cursor over a finite sequence of strings: each call
// returns the next string and true, or "" and false once exhausted.
type Iter func() (string, bool)

// Gen builds a fresh Iter over the same sequence every time it is called,
// which is what makes an enumeration restartable — Concat needs a brand
// new inner iterator for every outer value it combines with.
type Gen func() Iter

// Enumerator exposes the strings Node matches, in canonical order, capped
// at maxLen runes. The ordering is: alternation enumerates its left branch
// to exhaustion before its right branch; a character class enumerates in
// ascending code point order; a quantifier enumerates by repetition count
// ascending, then lexicographically within a count; concatenation takes
// the outer product of its parts with the leftmost part as the outer
// factor.
type Enumerator struct {
	gen Gen
}

// NewEnumerator compiles node into a restartable Enumerator bounded by
// maxLen runes per produced string.
func NewEnumerator(node *Node, maxLen int) *Enumerator {
	return &Enumerator{gen: build(node, maxLen)}
}

// Iter returns a fresh cursor over the full enumeration, from the start.
func (e *Enumerator) Iter() Iter {
	return e.gen()
}

// All drains the enumeration into a slice. Only safe when the pattern and
// maxLen are known to bound the result to a reasonable size — callers
// enumerating for test generation should prefer Iter with their own cap.
func (e *Enumerator) All() []string {
	var out []string
	it := e.Iter()
	for {
		s, ok := it()
		if !ok {
			return out
		}
		out = append(out, s)
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}

func build(n *Node, maxLen int) Gen {
	switch n.Kind {
	case KindLit:
		return buildLit(n, maxLen)
	case KindClass:
		return buildClass(n, maxLen)
	case KindConcat:
		return buildConcat(n, maxLen)
	case KindAlt:
		return buildAlt(n, maxLen)
	case KindQuant:
		return buildQuant(n, maxLen)
	default:
		return emptyGen
	}
}

func emptyGen() Iter {
	done := false
	return func() (string, bool) {
		if done {
			return "", false
		}
		done = true
		return "", true
	}
}

func buildLit(n *Node, maxLen int) Gen {
	s := string(n.Lit)
	if runeLen(s) > maxLen {
		return func() Iter { return func() (string, bool) { return "", false } }
	}
	return func() Iter {
		done := false
		return func() (string, bool) {
			if done {
				return "", false
			}
			done = true
			return s, true
		}
	}
}

func buildClass(n *Node, maxLen int) Gen {
	if maxLen < 1 || len(n.Chars) == 0 {
		return func() Iter { return func() (string, bool) { return "", false } }
	}
	chars := n.Chars
	return func() Iter {
		i := 0
		return func() (string, bool) {
			if i >= len(chars) {
				return "", false
			}
			s := string(chars[i])
			i++
			return s, true
		}
	}
}

// buildAlt chains each branch's Gen in sequence: left branch exhausted
// before the next one starts.
func buildAlt(n *Node, maxLen int) Gen {
	gens := make([]Gen, len(n.Children))
	for i, c := range n.Children {
		gens[i] = build(c, maxLen)
	}
	return func() Iter {
		idx := 0
		var cur Iter
		return func() (string, bool) {
			for {
				if cur == nil {
					if idx >= len(gens) {
						return "", false
					}
					cur = gens[idx]()
					idx++
				}
				if s, ok := cur(); ok {
					return s, true
				}
				cur = nil
			}
		}
	}
}

// buildConcat takes the cartesian product of its children's enumerations,
// with the first child as the outermost loop, filtering out any
// combination whose combined rune length exceeds maxLen.
func buildConcat(n *Node, maxLen int) Gen {
	if len(n.Children) == 0 {
		return func() Iter {
			done := false
			return func() (string, bool) {
				if done {
					return "", false
				}
				done = true
				return "", true
			}
		}
	}
	gens := make([]Gen, len(n.Children))
	for i, c := range n.Children {
		gens[i] = build(c, maxLen)
	}
	return concatGens(gens, maxLen)
}

// concatGens folds a list of Gens into a single Gen computing their
// cartesian-product concatenation, left-to-right outer-to-inner.
func concatGens(gens []Gen, maxLen int) Gen {
	if len(gens) == 1 {
		return gens[0]
	}
	head := gens[0]
	tail := concatGens(gens[1:], maxLen)
	return func() Iter {
		outerIt := head()
		var outerVal string
		var innerIt Iter
		var pending string

		advance := func() bool {
			for {
				if innerIt == nil {
					s, ok := outerIt()
					if !ok {
						return false
					}
					outerVal = s
					innerIt = tail()
				}
				s, ok := innerIt()
				if !ok {
					innerIt = nil
					continue
				}
				combined := outerVal + s
				if runeLen(combined) > maxLen {
					continue
				}
				pending = combined
				return true
			}
		}
		return func() (string, bool) {
			if !advance() {
				return "", false
			}
			return pending, true
		}
	}
}

// buildQuant enumerates repetition count ascending from Min to an
// effective maximum (Max, or maxLen when Max is unbounded), and for each
// count enumerates every combination of that many repetitions via
// concatGens.
func buildQuant(n *Node, maxLen int) Gen {
	child := build(n.Children[0], maxLen)
	maxCount := n.Max
	if maxCount < 0 || maxCount > maxLen {
		maxCount = maxLen
	}
	minCount := n.Min
	return func() Iter {
		count := minCount
		var cur Iter
		return func() (string, bool) {
			for {
				if cur == nil {
					if count > maxCount {
						return "", false
					}
					cur = repeatGen(child, count, maxLen)()
					count++
				}
				if s, ok := cur(); ok {
					return s, true
				}
				cur = nil
			}
		}
	}
}

// repeatGen builds the Gen for exactly count repetitions of g concatenated
// together (count == 0 yields the single empty string).
func repeatGen(g Gen, count int, maxLen int) Gen {
	if count == 0 {
		return func() Iter {
			done := false
			return func() (string, bool) {
				if done {
					return "", false
				}
				done = true
				return "", true
			}
		}
	}
	gens := make([]Gen, count)
	for i := range gens {
		gens[i] = g
	}
	return concatGens(gens, maxLen)
}
