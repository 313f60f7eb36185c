// Package frames writes Export frames to disk in a plain textual format.
// This is deliberately outside the sim package: frame serialization is an
// external collaborator, the core only emits Frame values.
package frames

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"ballsim/internal/sim"
)

// Writer implements sim.FrameSink by writing one file per frame into dir,
// named by ordinal ("frame-0000.txt", "frame-0001.txt", ...). It optionally
// fans each frame's encoded bytes out to a second sink (the live-feed
// broadcaster) without buffering them.
type Writer struct {
	dir     string
	ordinal int
	relay   func([]byte)
}

// NewWriter creates dir (and parents) if needed and returns a Writer
// rooted there. relay, if non-nil, is called with each frame's encoded
// bytes right after the file write succeeds.
func NewWriter(dir string, relay func([]byte)) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, relay: relay}, nil
}

// Emit writes f in the form:
//
//	# Time: <T>
//	# Balls: <N>
//	<i> <x> <y> [<z>] <vx> <vy> [<vz>]
//	...
func (w *Writer) Emit(f sim.Frame) error {
	path := filepath.Join(w.dir, fmt.Sprintf("frame-%04d.txt", w.ordinal))
	data := Encode(f)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing frame %d to %s: %w", w.ordinal, path, err)
	}
	log.WithFields(log.Fields{"ordinal": w.ordinal, "t": f.Time, "path": path}).Debug("frame written")

	if w.relay != nil {
		w.relay(data)
	}
	w.ordinal++
	return nil
}

// FrameCount returns how many frames have been written so far.
func (w *Writer) FrameCount() int { return w.ordinal }

// Encode renders a frame in the textual format above, independent of any
// file write (used directly by the live-feed relay too).
func Encode(f sim.Frame) []byte {
	var buf []byte
	buf = appendLine(buf, fmt.Sprintf("# Time: %g", f.Time))
	buf = appendLine(buf, fmt.Sprintf("# Balls: %d", len(f.Positions)))
	for i := range f.Positions {
		buf = appendLine(buf, formatBallLine(i, f.Positions[i], f.Velocities[i]))
	}
	return buf
}

func formatBallLine(i int, x, v sim.Vec) string {
	line := fmt.Sprintf("%d", i)
	for _, c := range x {
		line += fmt.Sprintf(" %g", c)
	}
	for _, c := range v {
		line += fmt.Sprintf(" %g", c)
	}
	return line
}

func appendLine(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, '\n')
	return buf
}
