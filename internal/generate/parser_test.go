package generate

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	got := Parse("A\n---\nB\n---\nC")
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParseTrimsAndDropsEmpty(t *testing.T) {
	got := Parse("\n  first option  \n---\n\n---\n second \n")
	want := []string{"first option", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParseDelimiterMustBeWholeLine(t *testing.T) {
	got := Parse("a --- b")
	if len(got) != 1 {
		t.Fatalf("Parse split on inline ---: %v", got)
	}
}

func TestParseRepairsDashes(t *testing.T) {
	got := Parse("I said X — and Y -- done")
	if len(got) != 1 {
		t.Fatalf("Parse = %v, want single segment", got)
	}
	if strings.Contains(got[0], "—") || strings.Contains(got[0], "--") {
		t.Errorf("repair left banned dashes: %q", got[0])
	}
	if got[0] != "I said X, and Y, done" {
		t.Errorf("repair = %q, want %q", got[0], "I said X, and Y, done")
	}
}

func TestParseCollapsesRepeatedCommas(t *testing.T) {
	got := Parse("a —-- b")
	if len(got) != 1 {
		t.Fatalf("Parse = %v", got)
	}
	if strings.Contains(got[0], ",,") {
		t.Errorf("repair left double comma: %q", got[0])
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{
		"A\n---\nB\n---\nC",
		"I said X — and Y -- done",
		"weird  ,  spacing,, here",
		"plain text with no delimiters",
	}
	for _, raw := range inputs {
		once := Parse(raw)
		twice := Parse(strings.Join(once, "\n---\n"))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Parse not idempotent for %q: %v vs %v", raw, once, twice)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if got := Parse(""); got != nil {
		t.Errorf("Parse(\"\") = %v, want nil", got)
	}
	if got := Parse("---\n---"); got != nil {
		t.Errorf("Parse(delimiters only) = %v, want nil", got)
	}
}

func TestParsePreservesOrder(t *testing.T) {
	got := Parse("one\n---\ntwo\n---\nthree\n---\nfour\n---\nfive")
	want := []string{"one", "two", "three", "four", "five"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParseCRLF(t *testing.T) {
	got := Parse("A\r\n---\r\nB")
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}
