package captcha

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestFixedReturnsTrimmedCode(t *testing.T) {
	s := &Fixed{Code: "  AB12 \n"}
	code, err := s.Solve(context.Background(), "prompt: ")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if code != "AB12" {
		t.Errorf("expected trimmed code, got %q", code)
	}
}

func TestForModeSelection(t *testing.T) {
	if _, ok := ForMode("fixed", "X", 0).(*Fixed); !ok {
		t.Error("fixed mode should yield the fixed solver")
	}
	if _, ok := ForMode("manual", "", 0).(*Manual); !ok {
		t.Error("manual mode should yield the interactive solver")
	}
	if _, ok := ForMode("something-else", "", 0).(*Manual); !ok {
		t.Error("unrecognized modes should fall back to the interactive solver")
	}
	if _, ok := ForMode(" FIXED ", "X", 0).(*Fixed); !ok {
		t.Error("mode matching should ignore case and whitespace")
	}
}

func TestManualReadsLine(t *testing.T) {
	var out bytes.Buffer
	m := &Manual{In: strings.NewReader("abc\n"), Out: &out}

	code, err := m.Solve(context.Background(), "enter: ")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if code != "abc" {
		t.Errorf("expected abc, got %q", code)
	}
	if out.String() != "enter: " {
		t.Errorf("prompt not written, got %q", out.String())
	}
}

func TestManualAcceptsFinalLineWithoutNewline(t *testing.T) {
	m := &Manual{In: strings.NewReader("xyz"), Out: &bytes.Buffer{}}

	code, err := m.Solve(context.Background(), "enter: ")
	if err != nil {
		t.Fatalf("an EOF-terminated line should still count: %v", err)
	}
	if code != "xyz" {
		t.Errorf("expected xyz, got %q", code)
	}
}

// blockingReader never delivers a line.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestManualDeadlineExpires(t *testing.T) {
	m := &Manual{In: blockingReader{}, Out: &bytes.Buffer{}, Deadline: 50 * time.Millisecond}

	start := time.Now()
	_, err := m.Solve(context.Background(), "enter: ")
	if err == nil {
		t.Fatal("expected a deadline error")
	}
	if !strings.Contains(err.Error(), "waiting for captcha input") {
		t.Errorf("unexpected error: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("deadline took far longer than configured")
	}
}

func TestManualHonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &Manual{In: blockingReader{}, Out: &bytes.Buffer{}}
	if _, err := m.Solve(ctx, "enter: "); err == nil {
		t.Fatal("a cancelled context must abort the wait")
	}
}
