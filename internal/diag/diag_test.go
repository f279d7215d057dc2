package diag

import "testing"

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder(nil)

	r.Warn(Warning{Code: CodeLFELabelMismatch, Message: "LFE label found on non-LFE channel", Fields: map[string]any{"channel": "LFE1"}})
	r.Warnf(CodeUnknownConfigKey, "unknown option key %q", "fooBar")

	got := r.Warnings()
	if len(got) != 2 {
		t.Fatalf("len(Warnings()) = %d, want 2", len(got))
	}
	if got[0].Code != CodeLFELabelMismatch {
		t.Errorf("got[0].Code = %q, want %q", got[0].Code, CodeLFELabelMismatch)
	}
	if got[1].Message != `unknown option key "fooBar"` {
		t.Errorf("got[1].Message = %q", got[1].Message)
	}
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder(nil)
	r.Warnf(CodeScreenRefOnHOA, "screenRef present on HOA item")
	r.Reset()
	if got := r.Warnings(); len(got) != 0 {
		t.Errorf("len(Warnings()) after Reset = %d, want 0", len(got))
	}
}

func TestWarningsReturnsCopy(t *testing.T) {
	r := NewRecorder(nil)
	r.Warnf(CodeFrequencyOnHOA, "frequency metadata present on HOA item")

	got := r.Warnings()
	got[0].Message = "mutated"

	if r.Warnings()[0].Message == "mutated" {
		t.Errorf("Warnings() leaked internal slice to caller")
	}
}
