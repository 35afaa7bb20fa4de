package logger

import (
	"bytes"
	"os"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels_NoPanic(t *testing.T) {
	// Output is environment-dependent (colors); just ensure nothing panics.
	captureStdout(t, func() {
		Info("TAG", "message")
		Success("TAG", "message")
		Warn("TAG", "message")
		Error("TAG", "message")
	})
}

func TestBanner_NoPanic(t *testing.T) {
	out := captureStdout(t, func() {
		Banner("v1.0.0")
		Banner("")
	})
	if out == "" {
		t.Error("Banner produced no output")
	}
}

func TestSectionAndStats_NoPanic(t *testing.T) {
	captureStdout(t, func() {
		Section("Catalog Statistics")
		Stats("Items", 8143)
	})
}

func TestServer_IncludesAddress(t *testing.T) {
	out := captureStdout(t, func() {
		Server("127.0.0.1:13380")
	})
	if !bytes.Contains([]byte(out), []byte("127.0.0.1:13380")) {
		t.Errorf("Server output %q missing address", out)
	}
}
