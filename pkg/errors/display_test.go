// Package errors tests for error formatting and display.
package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestFormatter_Format(t *testing.T) {
	f := &Formatter{Indent: "  "}

	if got := f.Format(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}
	if got := f.Format(fmt.Errorf("plain")); got != "Error: plain" {
		t.Errorf("unexpected plain format %q", got)
	}

	se := New(ErrParseFailed, CategoryParse, "could not parse").
		WithContext("file", "a.csv").
		WithCause(fmt.Errorf("line 3: wrong field count")).
		WithSuggestion("check the delimiter")

	got := f.Format(se)
	for _, want := range []string{
		"ERROR [PARSE_FAILED]: could not parse\n",
		"  file: a.csv\n",
		"  cause: line 3: wrong field count\n",
		"\n  → check the delimiter",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\033[") {
		t.Error("unexpected color codes")
	}
}

func TestFormatter_Color(t *testing.T) {
	f := &Formatter{UseColor: true, Indent: "  "}
	got := f.Format(New("X", CategoryIO, "m"))
	if !strings.Contains(got, colorRed) || !strings.Contains(got, colorReset) {
		t.Errorf("expected color codes in %q", got)
	}
}

func TestFormatter_Display(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, Indent: "  "}

	f.Display(nil)
	if buf.Len() != 0 {
		t.Error("nil error should write nothing")
	}
	f.Display(ResultNotFound("r1"))
	if !strings.Contains(buf.String(), "RESULT_NOT_FOUND") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestSprint(t *testing.T) {
	if got := Sprint(New("X", CategoryIO, "m")); !strings.HasPrefix(got, "ERROR [X]: m") {
		t.Errorf("unexpected %q", got)
	}
	if IsTTY(nil) {
		t.Error("nil file is not a terminal")
	}
}
