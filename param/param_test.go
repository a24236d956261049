/*
NAME
  param_test.go

DESCRIPTION
  param_test.go tests canonical serialization and validation of stage
  parameters.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package param

import "testing"

func TestCanonicalString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "bool true", v: NewBool(true), want: "true"},
		{name: "bool false", v: NewBool(false), want: "false"},
		{name: "int positive", v: NewInt32(42), want: "42"},
		{name: "int negative", v: NewInt32(-7), want: "-7"},
		{name: "int zero", v: NewInt32(0), want: "0"},
		{name: "uint", v: NewUint32(4294967295), want: "4294967295"},
		{name: "double integral", v: NewFloat64(2), want: "2"},
		{name: "double fraction", v: NewFloat64(0.1), want: "0.1"},
		{name: "double negative", v: NewFloat64(-2.5), want: "-2.5"},
		{name: "string", v: NewString("F:20"), want: "F:20"},
		{name: "filepath", v: NewFilePath("/tmp/out.wav"), want: "/tmp/out.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	values := []Value{
		NewBool(true),
		NewInt32(-123),
		NewUint32(123),
		NewFloat64(1.25),
		NewString("hello"),
		NewFilePath("a/b.tbc"),
	}
	for _, v := range values {
		got, err := Parse(v.String(), v.Type())
		if err != nil {
			t.Fatalf("Parse(%q, %v) error: %v", v.String(), v.Type(), err)
		}
		if got != v {
			t.Errorf("Parse(%q, %v) = %#v, want %#v", v.String(), v.Type(), got, v)
		}
	}
}

func TestValidate(t *testing.T) {
	min := NewFloat64(0)
	max := NewFloat64(100)
	def := NewString("wav")
	descs := []Descriptor{
		{Name: "level", Type: Float64, Constraints: Constraints{Min: &min, Max: &max}},
		{Name: "spec", Type: String, Constraints: Constraints{Required: true}},
		{Name: "format", Type: String, Constraints: Constraints{Allowed: []string{"wav", "pcm"}, Default: &def}},
		{Name: "rate", Type: Uint32, DependsOn: &Dependency{Parent: "format", Allowed: []string{"pcm"}}, Constraints: Constraints{Required: true}},
	}

	tests := []struct {
		name    string
		m       Map
		wantErr bool
	}{
		{name: "ok", m: Map{"spec": NewString("F:20"), "level": NewFloat64(50)}, wantErr: false},
		{name: "unknown name", m: Map{"spec": NewString("x"), "bogus": NewBool(true)}, wantErr: true},
		{name: "type mismatch", m: Map{"spec": NewInt32(3)}, wantErr: true},
		{name: "below min", m: Map{"spec": NewString("x"), "level": NewFloat64(-1)}, wantErr: true},
		{name: "above max", m: Map{"spec": NewString("x"), "level": NewFloat64(101)}, wantErr: true},
		{name: "missing required", m: Map{"level": NewFloat64(1)}, wantErr: true},
		{name: "bad enum", m: Map{"spec": NewString("x"), "format": NewString("flac")}, wantErr: true},
		{name: "dependency inactive", m: Map{"spec": NewString("x"), "format": NewString("wav")}, wantErr: false},
		{name: "dependency active missing child", m: Map{"spec": NewString("x"), "format": NewString("pcm")}, wantErr: true},
		{name: "dependency active with child", m: Map{"spec": NewString("x"), "format": NewString("pcm"), "rate": NewUint32(44100)}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.m, descs)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	def := NewFloat64(0)
	descs := []Descriptor{
		{Name: "mask_ire", Type: Float64, Constraints: Constraints{Default: &def}},
	}
	m := ApplyDefaults(Map{}, descs)
	if v, ok := m["mask_ire"]; !ok || v != def {
		t.Errorf("ApplyDefaults did not fill mask_ire: %#v", m)
	}

	set := NewFloat64(50)
	m = ApplyDefaults(Map{"mask_ire": set}, descs)
	if m["mask_ire"] != set {
		t.Errorf("ApplyDefaults overwrote an explicit value: %#v", m)
	}
}
