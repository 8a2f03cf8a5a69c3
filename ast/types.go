package ast

import "strings"

// Kind discriminates the type of a field, argument or result.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat
	KindDouble
	KindString
	KindHandle
	KindVec
	KindNamed
)

var scalarNames = map[string]Kind{
	"bool":   KindBool,
	"int8":   KindInt8,
	"int16":  KindInt16,
	"int32":  KindInt32,
	"int64":  KindInt64,
	"uint8":  KindUInt8,
	"uint16": KindUInt16,
	"uint32": KindUInt32,
	"uint64": KindUInt64,
	"float":  KindFloat,
	"double": KindDouble,
	"string": KindString,
	"handle": KindHandle,
}

var kindNames = func() map[Kind]string {
	m := make(map[Kind]string, len(scalarNames))
	for name, k := range scalarNames {
		m[k] = name
	}
	return m
}()

// ScalarKind maps a source spelling to its kind. The bool result is false
// for identifiers that are not built-in types.
func ScalarKind(name string) (Kind, bool) {
	k, ok := scalarNames[name]
	return k, ok
}

// IsInteger reports whether the kind is one of the integer scalars,
// the set allowed as enum storage.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUInt64
}

// Type is a use of a type. Named references keep the source spelling;
// resolution happens per generator.
type Type struct {
	Kind Kind
	Name string // KindNamed: identifier as written
	Elem *Type  // KindVec: element type
}

// Named returns a reference to a declared type.
func Named(name string) Type {
	return Type{Kind: KindNamed, Name: name}
}

// Scalar returns a built-in type.
func Scalar(k Kind) Type {
	return Type{Kind: k}
}

// VecOf returns vec<elem>.
func VecOf(elem Type) Type {
	return Type{Kind: KindVec, Elem: &elem}
}

// Contains reports whether k occurs anywhere in the type, descending
// through vec elements.
func (t Type) Contains(k Kind) bool {
	if t.Kind == k {
		return true
	}
	if t.Elem != nil {
		return t.Elem.Contains(k)
	}
	return false
}

// String returns the source spelling of the type.
func (t Type) String() string {
	switch t.Kind {
	case KindVec:
		var b strings.Builder
		b.WriteString("vec<")
		b.WriteString(t.Elem.String())
		b.WriteString(">")
		return b.String()
	case KindNamed:
		return t.Name
	default:
		return kindNames[t.Kind]
	}
}

// NamedType is a type declaration in a unit's root scope.
type NamedType interface {
	TypeName() string
	IsTypedef() bool
	// JavaCompatible reports whether the declaration can be expressed in
	// generated Java: unions cannot, nor can anything touching a handle,
	// nor a struct field carrying an unsigned 64-bit value.
	JavaCompatible() bool
}

// Typedef is a pure alias declaration.
type Typedef struct {
	Name   string
	Target Type
}

func (t *Typedef) TypeName() string { return t.Name }

func (t *Typedef) IsTypedef() bool { return true }

func (t *Typedef) JavaCompatible() bool {
	return !t.Target.Contains(KindHandle)
}

// EnumCase is one enumerator. Values are resolved at parse time so
// constant generators can emit them without re-evaluation.
type EnumCase struct {
	Name  string
	Value int64
}

// Enum is an enumeration with integer storage.
type Enum struct {
	Name     string
	Storage  Type
	Exported bool
	Cases    []EnumCase
}

func (e *Enum) TypeName() string { return e.Name }

func (e *Enum) IsTypedef() bool { return false }

func (e *Enum) JavaCompatible() bool { return true }

// Struct is a plain record type.
type Struct struct {
	Name   string
	Fields []Field
}

// Field is a struct or union member.
type Field struct {
	Name string
	Type Type
}

func (s *Struct) TypeName() string { return s.Name }

func (s *Struct) IsTypedef() bool { return false }

func (s *Struct) JavaCompatible() bool {
	for _, f := range s.Fields {
		if f.Type.Contains(KindHandle) || f.Type.Contains(KindUInt64) {
			return false
		}
	}
	return true
}

// Union is an overlapping record type. Java has no representation for it.
type Union struct {
	Name   string
	Fields []Field
}

func (u *Union) TypeName() string { return u.Name }

func (u *Union) IsTypedef() bool { return false }

func (u *Union) JavaCompatible() bool { return false }
