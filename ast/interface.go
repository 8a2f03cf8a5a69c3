package ast

import "github.com/openifc/idlgen/fqname"

// Interface is the single interface an interface unit declares.
type Interface struct {
	Name    string
	Extends fqname.FQName // zero only for the root interface itself
	Methods []*Method
}

// IsRoot reports whether this interface has no superinterface.
func (i *Interface) IsRoot() bool {
	return !i.Extends.IsValid()
}

// Method is one interface operation. Oneway methods return nothing and
// must not declare results.
type Method struct {
	Name    string
	Oneway  bool
	Args    []Arg
	Results []Arg
}

// Arg is a named, typed method argument or result.
type Arg struct {
	Name string
	Type Type
}

// javaCompatible applies the handle rule to method signatures; unsigned
// 64-bit values are only disqualifying inside struct fields.
func (i *Interface) javaCompatible() bool {
	for _, m := range i.Methods {
		for _, a := range m.Args {
			if a.Type.Contains(KindHandle) {
				return false
			}
		}
		for _, r := range m.Results {
			if r.Type.Contains(KindHandle) {
				return false
			}
		}
	}
	return true
}
