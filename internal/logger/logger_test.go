package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects stdout for the duration of fn and returns what was written.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestTaggedLevels_NoPanic(t *testing.T) {
	out := capture(t, func() {
		Info("Scan", "message")
		Success("Scan", "message")
		Warn("Feed", "message")
		Error("DB", "message")
	})
	if out == "" {
		t.Error("no output written")
	}
}

func TestBanner_DefaultsVersion(t *testing.T) {
	out := capture(t, func() { Banner("") })
	if !bytes.Contains([]byte(out), []byte("dev")) {
		t.Errorf("banner missing default version: %q", out)
	}
}

func TestSectionAndStats_NoPanic(t *testing.T) {
	out := capture(t, func() {
		Section("Enriching")
		Stats("candidates", 42)
		Server("127.0.0.1:13380")
	})
	if !bytes.Contains([]byte(out), []byte("Enriching")) {
		t.Errorf("section title missing: %q", out)
	}
}
