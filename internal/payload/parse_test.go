package payload

import (
	"errors"
	"testing"
)

func TestParse_PreservesMemberOrder(t *testing.T) {
	v, err := ParseString(`{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": null}}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !v.IsObject() {
		t.Fatalf("kind = %s, want object", v.Kind())
	}

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	mid, ok := v.Get("mid")
	if !ok {
		t.Fatal("missing mid")
	}
	if got := mid.Members()[0].Key; got != "b" {
		t.Errorf("nested first key = %q, want b", got)
	}
}

func TestParse_ScalarKinds(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`false`, KindBool},
		{`12.5`, KindNumber},
		{`-3e2`, KindNumber},
		{`"1,234.50"`, KindString},
		{`[1, "a", {}]`, KindArray},
		{`{}`, KindObject},
		{"  ", KindNull},
	}
	for _, tt := range tests {
		v, err := ParseString(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if v.Kind() != tt.want {
			t.Errorf("Parse(%q) kind = %s, want %s", tt.in, v.Kind(), tt.want)
		}
	}
}

func TestParse_Values(t *testing.T) {
	v, err := ParseString(`{"n": -3e2, "s": "x\"y", "b": true, "arr": [1, 2]}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	n, _ := v.Get("n")
	if f, ok := n.AsNumber(); !ok || f != -300 {
		t.Errorf("n = %v (%v), want -300", f, ok)
	}
	s, _ := v.Get("s")
	if str, ok := s.AsString(); !ok || str != `x"y` {
		t.Errorf("s = %q, want x\"y", str)
	}
	b, _ := v.Get("b")
	if got, ok := b.AsBool(); !ok || !got {
		t.Errorf("b = %v, want true", got)
	}
	arr, _ := v.Get("arr")
	if arr.Len() != 2 {
		t.Errorf("arr len = %d, want 2", arr.Len())
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := ParseString(`{"broken": `)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err = %v, want ErrInvalidJSON", err)
	}
}

func TestGet_FirstDuplicateWins(t *testing.T) {
	v := Object(M("k", Number(1)), M("k", Number(2)))
	got, ok := v.Get("k")
	if !ok {
		t.Fatal("missing k")
	}
	if f, _ := got.AsNumber(); f != 1 {
		t.Errorf("k = %v, want 1", f)
	}
	if _, ok := Number(1).Get("k"); ok {
		t.Error("Get on scalar should report absent")
	}
}
