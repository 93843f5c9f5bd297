package core

// These errors are user errors, not internal errors.  They indicate a
// bad call or a bad template, never a data-dependent condition.

import (
	"errors"
)

var (
	// NoSourceObject occurs when Map is given a source document that
	// isn't a structured value.
	NoSourceObject = errors.New("no source object provided")

	// NoMapping occurs when Map is given a template that isn't a
	// structured value.
	NoMapping = errors.New("no mapping provided")
)

// BadCall occurs when a function-call directive isn't an object with
// exactly one property.
type BadCall struct {
	Call interface{}
}

func (e *BadCall) Error() string {
	return "bad function call"
}

// UnknownFunction occurs when a call names a function that isn't in the
// FuncMap.
type UnknownFunction struct {
	Name string
}

func (e *UnknownFunction) Error() string {
	return `function "` + e.Name + `" not found`
}

// MixedTransformSpec occurs when a single transform sequence mixes
// plain function calls with conditional transform groups.  The template
// author has to pick one form per sequence.
type MixedTransformSpec struct {
	Spec []interface{}
}

func (e *MixedTransformSpec) Error() string {
	return "transform sequence mixes conditional and unconditional entries"
}
