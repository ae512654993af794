package emitter

import (
	"strings"
	"testing"
)

func TestEmitter_DeliversInOrder(t *testing.T) {
	e := New()
	var got []string
	e.On("nav.section", func(args ...string) { got = append(got, "a:"+strings.Join(args, "|")) })
	e.On("nav.section", func(args ...string) { got = append(got, "b:"+strings.Join(args, "|")) })

	e.Emit("nav.section", "Sec1", "Abs1")

	want := []string{"a:Sec1|Abs1", "b:Sec1|Abs1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestEmitter_OffIsIdempotent(t *testing.T) {
	e := New()
	calls := 0
	sub := e.On("nav.figure", func(...string) { calls++ })

	e.Off(sub)
	e.Off(sub)
	e.Off(nil)
	e.Emit("nav.figure", "Fig2")

	if calls != 0 {
		t.Errorf("expected no calls after Off, got %d", calls)
	}
	if e.Count("nav.figure") != 0 {
		t.Errorf("expected 0 handlers, got %d", e.Count("nav.figure"))
	}
}

func TestEmitter_OffDuringEmit(t *testing.T) {
	e := New()
	calls := 0
	var sub *Subscription
	sub = e.On("ready", func(...string) {
		calls++
		e.Off(sub)
	})

	e.Emit("ready")
	e.Emit("ready")

	if calls != 1 {
		t.Errorf("expected one-shot handler to run once, got %d", calls)
	}
}

func TestEmitter_UnknownEvent(t *testing.T) {
	// Should not panic.
	New().Emit("nav.reference", "ref-CR1")
}

func TestImmediate_RunsSynchronously(t *testing.T) {
	ran := false
	Immediate{}.On("ready", func(...string) { ran = true })
	if !ran {
		t.Error("expected handler to run during On")
	}
}

func TestArg(t *testing.T) {
	args := []string{"Fig2"}
	if Arg(args, 0) != "Fig2" || Arg(args, 1) != "" {
		t.Errorf("unexpected Arg results for %v", args)
	}
}
