package core

import (
	"context"

	"github.com/Comcast/remap/util"
)

// calls normalizes a directive that may be one call or a sequence of
// calls.
func calls(spec interface{}) []interface{} {
	if xs, is := spec.([]interface{}); is {
		return xs
	}
	return []interface{}{spec}
}

// CheckCondition evaluates one call or a sequence of calls as a
// conjunction against the current value.
//
// Every call must return exactly true (after prefix handling).  A call
// that fails -- unknown function, error, panic -- makes the conjunction
// false.  The failure is logged and never propagated, so a broken
// condition can't abort evaluation of its mapping node.
func (m *Mapper) CheckCondition(ctx context.Context, current interface{}, spec interface{}) bool {
	for _, x := range calls(spec) {
		c, err := ParseCall(x)
		if err != nil {
			util.Logf("core.CheckCondition %v on %s", err, util.Truncate(x))
			return false
		}
		v, err := m.invoke(ctx, c, current)
		if err != nil {
			util.Logf(`core.CheckCondition "%s" failed: %v`, c.Name, err)
			return false
		}
		if b, is := v.(bool); !is || !b {
			return false
		}
	}
	return true
}

// TransformValue runs a transform chain: each call's result becomes the
// current value fed to the next call.
//
// If any call fails, the whole chain's result is Absent -- not a
// partial result -- so the enclosing mapping node falls back to its
// default.  The failure is logged with the function name.
func (m *Mapper) TransformValue(ctx context.Context, current interface{}, spec interface{}) interface{} {
	for _, x := range calls(spec) {
		c, err := ParseCall(x)
		if err != nil {
			util.Logf("core.TransformValue %v on %s", err, util.Truncate(x))
			return Absent
		}
		v, err := m.invoke(ctx, c, current)
		if err != nil {
			util.Logf(`core.TransformValue "%s" failed: %v`, c.Name, err)
			return Absent
		}
		current = v
	}
	return current
}

// pickTransform selects the effective transform chain for a node.
//
// A plain call or a sequence of plain calls is returned unchanged.  A
// sequence of conditional transform groups ({condition, transform})
// returns the transform of the first group whose condition holds
// against the original source values; no winner means no transform (a
// nil result with a nil error).  Mixing the two forms in one sequence
// is a configuration error.
func (m *Mapper) pickTransform(ctx context.Context, sources interface{}, spec interface{}) (interface{}, error) {
	xs, is := spec.([]interface{})
	if !is {
		return spec, nil
	}

	var plain, conditional int
	for _, x := range xs {
		if g, is := x.(map[string]interface{}); is {
			if _, have := g["condition"]; have {
				conditional++
				continue
			}
		}
		plain++
	}

	switch {
	case conditional == 0:
		return xs, nil
	case 0 < plain:
		return nil, &MixedTransformSpec{xs}
	}

	for _, x := range xs {
		g := x.(map[string]interface{})
		if m.CheckCondition(ctx, sources, g["condition"]) {
			return g["transform"], nil
		}
	}

	return nil, nil
}
