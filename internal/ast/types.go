package ast

import "strings"

// Type is either the scalar int type or a fixed-shape multi-dimensional
// int array type. There are no other types in this language: no floats,
// pointers, structs, or dynamic allocation (spec Non-goals).
type Type interface {
	String() string
	IsArray() bool
}

// IntType is the single scalar type.
type IntType struct{}

func (*IntType) String() string { return "int" }
func (*IntType) IsArray() bool  { return false }

// ArrayType is a fixed-size multi-dimensional array of int, e.g. [4][4]int.
// Dims holds the declared sizes outermost-first; Dims is never empty.
type ArrayType struct {
	Dims []int
}

func (a *ArrayType) String() string {
	var b strings.Builder
	for _, d := range a.Dims {
		b.WriteByte('[')
		b.WriteString(itoa(d))
		b.WriteByte(']')
	}
	b.WriteString("int")
	return b.String()
}

func (*ArrayType) IsArray() bool { return true }

// Rank is the number of index dimensions (1 for [4]int, 2 for [4][4]int).
func (a *ArrayType) Rank() int { return len(a.Dims) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SameType reports whether two types have identical shape.
func SameType(a, b Type) bool {
	switch at := a.(type) {
	case *IntType:
		_, ok := b.(*IntType)
		return ok
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		if !ok || len(at.Dims) != len(bt.Dims) {
			return false
		}
		for i := range at.Dims {
			if at.Dims[i] != bt.Dims[i] {
				return false
			}
		}
		return true
	}
	return false
}
