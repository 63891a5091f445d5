package semantic

import (
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/types"
)

// Binding is one name bound in a Scope: its type, its mutability, where it
// was declared, and whether anything has read it yet (used for the
// unused-binding lint).
type Binding struct {
	Name     string
	Type     types.Type
	Const    bool
	DeclSpan lexer.Span
	Used     bool
}

// Scope is one lexical scope: function bodies, test bodies, if/for blocks,
// and the file scope each get one, chained to their parent for lookup.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
}

// NewScope creates a root scope with no parent (the file scope).
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]*Binding)}
}

// Enclose creates a child scope nested inside s.
func (s *Scope) Enclose() *Scope {
	return &Scope{parent: s, bindings: make(map[string]*Binding)}
}

// Define adds a new binding to this scope. It does not check for
// shadowing — callers are expected to call Lookup first and report a
// diagnostic themselves when redeclaration isn't allowed.
func (s *Scope) Define(b *Binding) {
	s.bindings[b.Name] = b
}

// Lookup searches this scope and its ancestors for name.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	if b, ok := s.bindings[name]; ok {
		return b, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

// LookupLocal searches only this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

// Own returns every binding declared directly in this scope, for the
// unused-binding lint pass run when a scope is closed.
func (s *Scope) Own() []*Binding {
	out := make([]*Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	return out
}
