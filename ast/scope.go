package ast

import "github.com/openifc/idlgen/errors"

// Scope holds the type declarations of a unit in declaration order.
type Scope struct {
	types []NamedType
	index map[string]NamedType
}

func NewScope() *Scope {
	return &Scope{index: make(map[string]NamedType)}
}

// Add appends a declaration, rejecting duplicate names.
func (s *Scope) Add(t NamedType) error {
	name := t.TypeName()
	if _, exists := s.index[name]; exists {
		return errors.Mark(
			errors.Newf("type %q declared twice in the same scope", name),
			errors.ErrParse)
	}
	s.types = append(s.types, t)
	s.index[name] = t
	return nil
}

// Types returns the declarations in declaration order. Callers must not
// mutate the returned slice.
func (s *Scope) Types() []NamedType {
	return s.types
}

// Lookup returns the declaration named name, or nil.
func (s *Scope) Lookup(name string) NamedType {
	return s.index[name]
}

// Len returns the number of declarations.
func (s *Scope) Len() int {
	return len(s.types)
}

// ExportedEnums returns the enums carrying @export, in declaration order.
func (s *Scope) ExportedEnums() []*Enum {
	var out []*Enum
	for _, t := range s.types {
		if e, ok := t.(*Enum); ok && e.Exported {
			out = append(out, e)
		}
	}
	return out
}
