/*
NAME
  param.go

DESCRIPTION
  param.go provides the typed parameter values used to configure processing
  stages, along with their canonical textual forms.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package param provides strongly typed stage parameter values, parameter
// descriptors with constraints, and validation of parameter maps against
// descriptors. The canonical textual form of a value is part of the artifact
// fingerprint recipe, so it must remain stable across releases.
package param

import (
	"fmt"
	"strconv"
)

// Type enumerates the value types a stage parameter may hold.
type Type int

const (
	Int32 Type = iota
	Uint32
	Float64
	Bool
	String
	// FilePath is a string carrying a file-extension hint in its descriptor.
	FilePath
)

// String returns the name of a parameter type.
func (t Type) String() string {
	switch t {
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	case FilePath:
		return "filepath"
	}
	return "unknown"
}

// Value is a typed parameter value. Values are immutable and comparable;
// two values are equal when their type and payload are equal.
type Value struct {
	typ Type
	num int64
	flt float64
	b   bool
	str string
}

// NewInt32 returns a signed 32-bit integer value.
func NewInt32(v int32) Value { return Value{typ: Int32, num: int64(v)} }

// NewUint32 returns an unsigned 32-bit integer value.
func NewUint32(v uint32) Value { return Value{typ: Uint32, num: int64(v)} }

// NewFloat64 returns a double precision value.
func NewFloat64(v float64) Value { return Value{typ: Float64, flt: v} }

// NewBool returns a boolean value.
func NewBool(v bool) Value { return Value{typ: Bool, b: v} }

// NewString returns a string value.
func NewString(v string) Value { return Value{typ: String, str: v} }

// NewFilePath returns a file path value.
func NewFilePath(v string) Value { return Value{typ: FilePath, str: v} }

// Type returns the type of the value.
func (v Value) Type() Type { return v.typ }

// Int32 returns the signed integer payload, and reports whether the value
// holds one.
func (v Value) Int32() (int32, bool) { return int32(v.num), v.typ == Int32 }

// Uint32 returns the unsigned integer payload, and reports whether the value
// holds one.
func (v Value) Uint32() (uint32, bool) { return uint32(v.num), v.typ == Uint32 }

// Float64 returns the floating point payload, and reports whether the value
// holds one.
func (v Value) Float64() (float64, bool) { return v.flt, v.typ == Float64 }

// Bool returns the boolean payload, and reports whether the value holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.typ == Bool }

// Str returns the string payload, and reports whether the value holds one.
// FilePath values are strings.
func (v Value) Str() (string, bool) { return v.str, v.typ == String || v.typ == FilePath }

// String returns the canonical textual form of the value:
// booleans as "true"/"false", integers as decimal with no leading zeros,
// doubles in shortest round-trip form, strings verbatim.
func (v Value) String() string {
	switch v.typ {
	case Int32:
		return strconv.FormatInt(v.num, 10)
	case Uint32:
		return strconv.FormatUint(uint64(uint32(v.num)), 10)
	case Float64:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	case String, FilePath:
		return v.str
	}
	return ""
}

// Parse converts a canonical textual form back into a value of the given
// type. This is the inverse of Value.String.
func Parse(s string, t Type) (Value, error) {
	switch t {
	case Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("could not parse %q as int32: %w", s, err)
		}
		return NewInt32(int32(n)), nil
	case Uint32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("could not parse %q as uint32: %w", s, err)
		}
		return NewUint32(uint32(n)), nil
	case Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("could not parse %q as float64: %w", s, err)
		}
		return NewFloat64(f), nil
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("could not parse %q as bool: %w", s, err)
		}
		return NewBool(b), nil
	case String:
		return NewString(s), nil
	case FilePath:
		return NewFilePath(s), nil
	}
	return Value{}, fmt.Errorf("unknown parameter type: %v", t)
}

// Map holds named parameter values for one stage instance.
type Map map[string]Value

// Clone returns a copy of the map. A nil map clones to nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
