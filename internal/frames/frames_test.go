package frames

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ballsim/internal/sim"
)

func TestEncode_Format(t *testing.T) {
	f := sim.Frame{
		Time:       1.5,
		Positions:  []sim.Vec{{1, 2}, {3, 4}},
		Velocities: []sim.Vec{{0.1, 0.2}, {-0.1, -0.2}},
	}
	out := string(Encode(f))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected a header pair plus one line per ball, got %d lines: %q", len(lines), out)
	}
	if lines[0] != "# Time: 1.5" {
		t.Errorf("time header: got %q", lines[0])
	}
	if lines[1] != "# Balls: 2" {
		t.Errorf("balls header: got %q", lines[1])
	}
	if lines[2] != "0 1 2 0.1 0.2" {
		t.Errorf("ball 0 line: got %q", lines[2])
	}
	if lines[3] != "1 3 4 -0.1 -0.2" {
		t.Errorf("ball 1 line: got %q", lines[3])
	}
}

func TestWriter_EmitWritesFileAndRelays(t *testing.T) {
	dir := t.TempDir()
	var relayed [][]byte
	w, err := NewWriter(dir, func(b []byte) { relayed = append(relayed, b) })
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	f := sim.Frame{Time: 0, Positions: []sim.Vec{{0, 0}}, Velocities: []sim.Vec{{0, 0}}}
	if err := w.Emit(f); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if w.FrameCount() != 1 {
		t.Errorf("FrameCount: got %d, want 1", w.FrameCount())
	}
	if len(relayed) != 1 {
		t.Fatalf("expected one relayed frame, got %d", len(relayed))
	}

	path := filepath.Join(dir, "frame-0000.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written frame: %v", err)
	}
	if string(data) != string(Encode(f)) {
		t.Errorf("written file does not match Encode output")
	}
}

func TestWriter_OrdinalsIncrement(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	f := sim.Frame{Time: 0, Positions: nil, Velocities: nil}
	for i := 0; i < 3; i++ {
		if err := w.Emit(f); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
	for _, name := range []string{"frame-0000.txt", "frame-0001.txt", "frame-0002.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}
