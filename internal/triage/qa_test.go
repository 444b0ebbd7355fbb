package triage

import "testing"

func TestFinalizeNormalizesWhitespace(t *testing.T) {
	in := "  Hi alice,  \n\n   Thanks for your message.   \n\nBest,\nSmartMailr"
	want := "Hi alice,\nThanks for your message.\nBest,\nSmartMailr"
	if got := Finalize(in); got != want {
		t.Fatalf("Finalize() = %q, want %q", got, want)
	}
}

func TestFinalizeAppendsSignature(t *testing.T) {
	got := Finalize("Hi bob,\nsee attached")
	want := "Hi bob,\nsee attached\nBest,\nSmartMailr"
	if got != want {
		t.Fatalf("Finalize() = %q, want %q", got, want)
	}
}

func TestFinalizeKeepsExistingSignature(t *testing.T) {
	in := "Hi carol,\nThanks for the update — noted.\nBest,\nSmartMailr"
	if got := Finalize(in); got != in {
		t.Fatalf("signature duplicated: %q", got)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n  ",
		"Hi alice,\n\nsee you tomorrow\n\nBest,\nSmartMailr",
		"no signature at all",
		"  leading and trailing  \n\n\n  lines  ",
		Finalize("already finalized once"),
	}
	for _, in := range inputs {
		once := Finalize(in)
		twice := Finalize(once)
		if once != twice {
			t.Fatalf("Finalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestFinalizeEmptyInput(t *testing.T) {
	if got := Finalize(""); got != Signature {
		t.Fatalf("Finalize(\"\") = %q, want %q", got, Signature)
	}
}
