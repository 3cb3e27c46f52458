package lexer

import (
	"errors"
	"testing"

	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

func drain(t *testing.T, m *Multiplexer) []string {
	t.Helper()
	var out []string
	for {
		tok, err := m.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok.String())
	}
}

func TestMultiplexerIsLastInFirstOut(t *testing.T) {
	m := NewMultiplexer()
	m.AddString("first", "1 2")
	m.AddString("second", "3")

	got := drain(t, m)
	want := []string{"Number(3)", "Number(1)", "Number(2)"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}

func TestMultiplexerSkipsEmptyFragments(t *testing.T) {
	m := NewMultiplexer()
	m.AddString("a", "1")
	m.AddString("empty", "   ")
	m.AddString("blank", "")

	got := drain(t, m)
	if len(got) != 1 || got[0] != "Number(1)" {
		t.Fatalf("tokens = %v", got)
	}
}

func TestMultiplexerEmpty(t *testing.T) {
	m := NewMultiplexer()
	if m.Pending() {
		t.Fatalf("empty multiplexer reports pending input")
	}
	tok, err := m.Next()
	if err != nil || tok.Kind != token.EOF {
		t.Fatalf("Next = %v, %v; want EOF", tok, err)
	}
}

func TestMultiplexerPending(t *testing.T) {
	m := NewMultiplexer()
	m.AddString("a", "1")
	if !m.Pending() {
		t.Fatalf("queued fragment not reported as pending")
	}
	drain(t, m)
	if m.Pending() {
		t.Fatalf("drained multiplexer still pending")
	}
}

func TestMultiplexerErrorDropsBrokenFragment(t *testing.T) {
	m := NewMultiplexer()
	m.AddString("good", "7")
	m.AddString("bad", "'open")

	if _, err := m.Next(); !errors.Is(err, runtime.ErrMalformedInput) {
		t.Fatalf("expected MalformedInput, got %v", err)
	}
	got := drain(t, m)
	if len(got) != 1 || got[0] != "Number(7)" {
		t.Fatalf("tokens after error = %v", got)
	}
}

func TestMultiplexerReset(t *testing.T) {
	m := NewMultiplexer()
	m.AddString("a", "1 2")
	m.AddString("b", "3")
	if _, err := m.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	m.Reset()
	if m.Pending() {
		t.Fatalf("Reset left input pending")
	}
	m.AddString("c", "4")
	got := drain(t, m)
	if len(got) != 1 || got[0] != "Number(4)" {
		t.Fatalf("tokens after reset = %v", got)
	}
}
