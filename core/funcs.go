package core

import (
	"context"
	"fmt"
	"strings"
)

// Func is a transform or condition function.  The first argument is the
// current value unless the call carried the '@' prefix.
//
// A Func that returns an error (or panics) fails its call.  That
// failure is always absorbed at the condition/transform boundary; see
// CheckCondition and TransformValue.
type Func func(ctx context.Context, args ...interface{}) (interface{}, error)

// FuncMap is the function table for one evaluation: a map from function
// name to its implementation.  The evaluator only reads it.
type FuncMap map[string]Func

// Copy makes a shallow copy of the FuncMap.
func (fs FuncMap) Copy() FuncMap {
	acc := make(FuncMap, len(fs))
	for name, f := range fs {
		acc[name] = f
	}
	return acc
}

// Call is one parsed function-call directive.
type Call struct {
	Name string
	Args []interface{}

	// Invert negates a boolean result.  A non-boolean result passes
	// through unchanged.  From the '!' prefix.
	Invert bool

	// Bare means the current value is not prepended to Args.  From
	// the '@' prefix.
	Bare bool
}

// ParseCall parses a function-call directive: an object with exactly
// one property, the (possibly prefixed) function name, mapped to the
// argument list.
//
// The '!' and '@' prefixes can appear in either order.  A non-sequence
// argument value is treated as a one-argument list.
func ParseCall(x interface{}) (*Call, error) {
	m, is := x.(map[string]interface{})
	if !is || len(m) != 1 {
		return nil, &BadCall{x}
	}

	var c Call
	for name, args := range m {
	PREFIXES:
		for {
			switch {
			case strings.HasPrefix(name, "!"):
				c.Invert = true
				name = name[1:]
			case strings.HasPrefix(name, "@"):
				c.Bare = true
				name = name[1:]
			default:
				break PREFIXES
			}
		}
		c.Name = name

		switch vv := args.(type) {
		case []interface{}:
			c.Args = vv
		case nil:
			c.Args = nil
		default:
			c.Args = []interface{}{vv}
		}
	}

	return &c, nil
}

// invoke runs one call against the current value.
//
// A panicking Func surfaces here as an error rather than unwinding
// through the evaluator.
func (m *Mapper) invoke(ctx context.Context, c *Call, current interface{}) (x interface{}, err error) {
	f, have := m.Funcs[c.Name]
	if !have {
		return nil, &UnknownFunction{c.Name}
	}

	args := c.Args
	if !c.Bare {
		args = make([]interface{}, 0, len(c.Args)+1)
		args = append(args, current)
		args = append(args, c.Args...)
	}

	defer func() {
		if r := recover(); r != nil {
			x = nil
			err = fmt.Errorf(`function "%s" panic: %v`, c.Name, r)
		}
	}()

	if x, err = f(ctx, args...); err != nil {
		return nil, err
	}

	if c.Invert {
		if b, is := x.(bool); is {
			x = !b
		}
	}

	return x, nil
}
