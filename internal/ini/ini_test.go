package ini

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/leefowlercu/compage/component"
)

func collect(t *testing.T, text string) ([]Entry, error) {
	t.Helper()
	var entries []Entry
	err := Parse(strings.NewReader(text), func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

func TestParse(t *testing.T) {
	text := "\ufeff; leading comment\n" +
		"[alpha]\n" +
		"  key = value  \n" +
		"# another comment\n" +
		"other: 42 ; trailing\n" +
		"url=http://host;port\n" +
		"\n" +
		"[alpha]\n" +
		"empty=\n"

	entries, err := collect(t, text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []Entry{
		{Section: "alpha", NewSection: true, Line: 2},
		{Section: "alpha", Key: "key", Value: "value", Line: 3},
		{Section: "alpha", Key: "other", Value: "42", Line: 5},
		{Section: "alpha", Key: "url", Value: "http://host;port", Line: 6},
		{Section: "alpha", NewSection: true, Line: 8},
		{Section: "alpha", Key: "empty", Value: "", Line: 9},
	}

	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestParse_MalformedLinesAreCollected(t *testing.T) {
	text := "orphan=1\n" +
		"[broken\n" +
		"[]\n" +
		"[ok]\n" +
		"no separator\n" +
		"=value\n" +
		"good=yes\n"

	entries, err := collect(t, text)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, component.ErrConfigParse) {
		t.Errorf("error should wrap ErrConfigParse: %v", err)
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error should be *ParseError, got %T", err)
	}

	wantLines := []int{1, 2, 3, 5, 6}
	if len(perr.Lines) != len(wantLines) {
		t.Fatalf("got %d bad lines, want %d: %v", len(perr.Lines), len(wantLines), perr)
	}
	for i, l := range wantLines {
		if perr.Lines[i].Line != l {
			t.Errorf("bad line %d = %d, want %d", i, perr.Lines[i].Line, l)
		}
	}

	if len(entries) != 2 || entries[1].Key != "good" {
		t.Errorf("valid lines should still be emitted: %+v", entries)
	}
}

func TestParse_HandlerErrorsAreCollected(t *testing.T) {
	errRejected := errors.New("rejected")
	err := Parse(strings.NewReader("[a]\nx=1\ny=2\n"), func(e Entry) error {
		if e.Key == "x" {
			return errRejected
		}
		return nil
	})

	if !errors.Is(err, errRejected) {
		t.Fatalf("handler error should be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestParse_LongLine(t *testing.T) {
	text := "[a]\nk=" + strings.Repeat("x", maxLineSize+1) + "\n"
	err := Parse(strings.NewReader(text), func(Entry) error { return nil })
	if err == nil {
		t.Fatal("expected read error for oversized line")
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Error("oversized line is a read failure, not a parse error")
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Comment("generated")
	w.Section("one")
	w.KeyValue("a", "1")
	w.Section("two")
	w.KeyValue("b", "")

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := "; generated\n[one]\na=1\n\n[two]\nb=\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_Error(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.Section("one")
	w.KeyValue("a", strings.Repeat("x", 8192))
	if err := w.Flush(); err == nil {
		t.Fatal("expected write error")
	}
}

func TestWriter_ParseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Section("s")
	w.KeyValue("k", "v")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	entries, err := collect(t, buf.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Key != "k" || entries[1].Value != "v" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
