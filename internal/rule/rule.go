// internal/rule/rule.go
//
// Requirement declarations. A Recipe wraps a callable unit that produces the
// value of one named input; a Rule wraps a predicate that consumes named
// inputs and must answer with a boolean. The declared input names are what
// the cookbook resolver traverses; invocation itself is a thin forwarding
// layer around the wrapped unit.

package rule

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var (
	// ErrInvalidDefinition indicates the wrapped unit is not invocable
	// (nil, a plain value, or a type rather than a function or Caller).
	ErrInvalidDefinition = errors.New("rule: invalid definition")
	// ErrInvalidResult indicates a predicate answered with something other
	// than a boolean.
	ErrInvalidResult = errors.New("rule: non-boolean verdict")
)

// Caller is the explicit-registration form of a callable instance. A value
// implementing Caller can back a declaration the same way a plain function
// does; its type name becomes the default declaration name.
type Caller interface {
	Call(args []any) (any, error)
}

// Option customizes a declaration at construction time.
type Option func(*Recipe)

// WithName overrides the name derived from the unit.
func WithName(name string) Option {
	return func(r *Recipe) {
		r.name = strings.TrimSpace(name)
	}
}

// Requires declares the named inputs the unit consumes, in invocation order.
// Duplicates are kept as declared; the resolver treats the list as a set.
func Requires(names ...string) Option {
	return func(r *Recipe) {
		r.requires = append([]string{}, names...)
	}
}

// Recipe declares a unit that produces the value of the input named by
// Name() from the inputs named by Requires().
type Recipe struct {
	name     string
	requires []string
	fn       reflect.Value
	caller   Caller
}

// NewRecipe wraps an invocable unit as a recipe. The unit must be a Go
// function or a Caller instance; anything else, including a reflect.Type,
// fails with ErrInvalidDefinition.
func NewRecipe(unit any, opts ...Option) (*Recipe, error) {
	r := &Recipe{}
	if err := r.adopt(unit); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Recipe) adopt(unit any) error {
	if unit == nil {
		return fmt.Errorf("%w: unit is nil", ErrInvalidDefinition)
	}
	if t, ok := unit.(reflect.Type); ok {
		return fmt.Errorf("%w: %s is a type, not an invocable unit", ErrInvalidDefinition, t)
	}
	v := reflect.ValueOf(unit)
	if v.Kind() == reflect.Func {
		if v.IsNil() {
			return fmt.Errorf("%w: unit is a nil function", ErrInvalidDefinition)
		}
		if err := checkSignature(v.Type()); err != nil {
			return err
		}
		r.fn = v
		r.name = funcName(v)
		return nil
	}
	if caller, ok := unit.(Caller); ok {
		r.caller = caller
		r.name = typeName(v.Type())
		return nil
	}
	return fmt.Errorf("%w: %T is not invocable", ErrInvalidDefinition, unit)
}

// checkSignature accepts results shaped (), (T) or (T, error).
func checkSignature(t reflect.Type) error {
	if t.NumOut() > 2 {
		return fmt.Errorf("%w: %s returns more than two values", ErrInvalidDefinition, t)
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return fmt.Errorf("%w: %s second return value is not an error", ErrInvalidDefinition, t)
	}
	return nil
}

// Name reports the explicit name if one was supplied, otherwise the unit's
// own function name, or the type name of a Caller instance.
func (r *Recipe) Name() string {
	return r.name
}

// Requires reports the declared input names in declaration order.
func (r *Recipe) Requires() []string {
	return append([]string{}, r.requires...)
}

// Invoke forwards the arguments to the wrapped unit and returns its result.
// Arguments are matched positionally against Requires().
func (r *Recipe) Invoke(args ...any) (any, error) {
	if r.caller != nil {
		return r.caller.Call(args)
	}
	in, err := r.buildArgs(args)
	if err != nil {
		return nil, err
	}
	out := r.fn.Call(in)
	return r.splitResults(out)
}

func (r *Recipe) buildArgs(args []any) ([]reflect.Value, error) {
	t := r.fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("rule: %s expects at least %d arguments, got %d", r.name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("rule: %s expects %d arguments, got %d", r.name, fixed, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := t.In(minInt(i, t.NumIn()-1))
		if t.IsVariadic() && i >= fixed {
			paramType = t.In(t.NumIn() - 1).Elem()
		}
		value, err := argValue(arg, paramType)
		if err != nil {
			return nil, fmt.Errorf("rule: %s argument %d: %w", r.name, i, err)
		}
		in[i] = value
	}
	return in, nil
}

func argValue(arg any, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(paramType), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", paramType)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(paramType) {
		return v, nil
	}
	if v.Type().ConvertibleTo(paramType) {
		return v.Convert(paramType), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", arg, paramType)
}

func (r *Recipe) splitResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		if !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

// Rule declares a predicate over named inputs. It shares the recipe
// declaration surface but enforces a strictly boolean verdict.
type Rule struct {
	Recipe
}

// NewRule wraps an invocable unit as a predicate declaration.
func NewRule(unit any, opts ...Option) (*Rule, error) {
	recipe, err := NewRecipe(unit, opts...)
	if err != nil {
		return nil, err
	}
	return &Rule{Recipe: *recipe}, nil
}

// Invoke forwards the arguments to the predicate and fails with
// ErrInvalidResult unless the answer is exactly a bool. Truthy stand-ins
// like a non-zero int or a non-empty string are rejected.
func (r *Rule) Invoke(args ...any) (bool, error) {
	out, err := r.Recipe.Invoke(args...)
	if err != nil {
		return false, err
	}
	verdict, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rule %s: %w: got %T (%v)", r.name, ErrInvalidResult, out, out)
	}
	return verdict, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// funcName derives a declaration name from the function's own symbol:
// package path and method-value suffixes are stripped.
func funcName(v reflect.Value) string {
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
