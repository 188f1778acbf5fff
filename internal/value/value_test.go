package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	require.False(t, IsTruthy(Nil{}))
	require.False(t, IsTruthy(Boolean(false)))
	require.True(t, IsTruthy(Boolean(true)))
	require.True(t, IsTruthy(Number(0)))
	require.True(t, IsTruthy(String("")))
}

func TestEqualSameType(t *testing.T) {
	eq, comparable := Equal(Number(1), Number(1))
	require.True(t, comparable)
	require.True(t, eq)

	eq, comparable = Equal(String("a"), String("b"))
	require.True(t, comparable)
	require.False(t, eq)
}

func TestEqualNilIsNeverAnError(t *testing.T) {
	eq, comparable := Equal(Nil{}, Nil{})
	require.True(t, comparable)
	require.True(t, eq)

	eq, comparable = Equal(Nil{}, Number(0))
	require.True(t, comparable)
	require.False(t, eq)
}

func TestEqualMismatchedNonNilTypesIsNotComparable(t *testing.T) {
	_, comparable := Equal(Number(1), String("1"))
	require.False(t, comparable)
}

func TestNumberStringDropsTrailingZero(t *testing.T) {
	require.Equal(t, "42.7", Number(42.7).String())
	require.Equal(t, "3", Number(3).String())
}

func TestClassFindMethodWalksSuperclassChain(t *testing.T) {
	greet := &stubCallable{}
	base := &Class{Name: "Base", Methods: map[string]Callable{"greet": greet}}
	derived := &Class{Name: "Derived", Superclass: base, Methods: map[string]Callable{}}

	m, ok := derived.FindMethod("greet")
	require.True(t, ok)
	require.Same(t, greet, m)
}

func TestClassFindStaticMethodIsNotInherited(t *testing.T) {
	make := &stubCallable{}
	base := &Class{Name: "Base", StaticMethods: map[string]Callable{"make": make}}
	derived := &Class{Name: "Derived", Superclass: base, StaticMethods: map[string]Callable{}}

	_, ok := derived.FindStaticMethod("make")
	require.False(t, ok)
}

// stubCallable satisfies Callable for tests that only need identity, not
// invocation -- the real implementations live in package interp, which
// would import value and so can't be imported back here.
type stubCallable struct{}

func (*stubCallable) Type() string    { return "callable" }
func (*stubCallable) String() string  { return "<stub fn>" }
func (*stubCallable) Display() string { return "<stub fn>" }
func (*stubCallable) Arity() int      { return 0 }
func (*stubCallable) Call([]Value) (Value, error) {
	return Nil{}, nil
}
