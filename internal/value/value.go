// Package value implements Gekko's tagged-union runtime value and the
// shared Callable/Class/Instance data structures the resolver and
// evaluator operate on.
package value

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Value is the closed variant every Gekko runtime value satisfies. Unlike
// the visited-double-dispatch values of a Pascal-style interpreter, each
// concrete case here is a plain Go type implementing this interface
// directly, so dispatch is a type switch rather than a virtual call.
type Value interface {
	Type() string
	String() string
}

// Nil is Gekko's absence-of-value.
type Nil struct{}

func (Nil) Type() string   { return "nil" }
func (Nil) String() string { return "nil" }

// Boolean is Gekko's true/false.
type Boolean bool

func (Boolean) Type() string { return "boolean" }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is Gekko's sole numeric type, an IEEE-754 double.
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	s := strconv.FormatFloat(float64(n), 'f', -1, 64)
	return s
}

// String is Gekko's text type.
type String string

func (String) Type() string   { return "string" }
func (s String) String() string { return string(s) }

// Callable is the capability set every invocable value implements:
// Function, Lambda and NativeFunction (see package interp).
type Callable interface {
	Value
	Call(args []Value) (Value, error)
	Arity() int
	Display() string
}

// Class bundles a name, an optional superclass, and the three method
// tables the evaluator consults for Get/Call dispatch. Class values are
// immutable after ClassDecl finishes executing.
type Class struct {
	Name          string
	Superclass    *Class
	Methods       map[string]Callable
	StaticMethods map[string]Callable
	Getters       map[string]Callable
}

func (*Class) Type() string     { return "class" }
func (c *Class) String() string { return c.Name }

// FindMethod walks the superclass chain looking for an instance method.
func (c *Class) FindMethod(name string) (Callable, bool) {
	for cur := c; cur != nil; cur = cur.Superclass {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindGetter walks the superclass chain looking for a getter.
func (c *Class) FindGetter(name string) (Callable, bool) {
	for cur := c; cur != nil; cur = cur.Superclass {
		if g, ok := cur.Getters[name]; ok {
			return g, true
		}
	}
	return nil, false
}

// FindStaticMethod looks up a class-side method. Static methods are not
// inherited in Gekko's model; only the declaring class's table is checked,
// mirroring how the resolver binds a class-body "class foo()" method to
// exactly the class it appears in.
func (c *Class) FindStaticMethod(name string) (Callable, bool) {
	m, ok := c.StaticMethods[name]
	return m, ok
}

// Instance is a live object: a shared reference to its Class plus a
// mutable field table. Each instance also carries a process-unique id,
// used only for --verbose construction tracing -- it plays no role in
// the language's own semantics (two distinct instances are never equal).
type Instance struct {
	Class  *Class
	Fields map[string]Value

	id uuid.UUID
}

// NewInstance allocates a zero-field instance of c.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, Fields: map[string]Value{}, id: uuid.New()}
}

// ID returns the instance's tracing id.
func (i *Instance) ID() string { return i.id.String() }

func (*Instance) Type() string { return "instance" }
func (i *Instance) String() string {
	return fmt.Sprintf("%s instance", i.Class.Name)
}

// Get returns a raw field, without consulting methods/getters: the
// method/getter fallback requires binding, which needs an interpreter,
// so it lives in package interp rather than here.
func (i *Instance) Get(name string) (Value, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

// Set assigns a field, creating it if absent.
func (i *Instance) Set(name string, v Value) {
	i.Fields[name] = v
}

// IsTruthy implements Gekko's truthiness rule: Nil and Boolean(false) are
// false, everything else -- including Number(0) and the empty string --
// is truthy.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Boolean:
		return bool(v)
	default:
		return true
	}
}

// Equal implements Gekko's equality rule: same-typed Boolean/Number/String
// compare by value and mismatched non-nil types are not comparable (the
// caller must raise a runtime error). Nil is the one exception: comparing
// Nil against anything never errors, it is simply equal only to Nil.
func Equal(a, b Value) (bool, bool) {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok, true
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv, ok
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv, ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv, ok
	default:
		return false, false
	}
}

// Stringify renders a value the way `print` does -- distinct from Go's
// %v in that Number never shows a trailing decimal for integral values
// (handled in Number.String) and Nil prints as the bare word "nil".
func Stringify(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}
