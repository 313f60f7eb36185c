package sim

import (
	"math"
	"reflect"
	"testing"
)

type recordingSink struct {
	frames []Frame
}

func (r *recordingSink) Emit(f Frame) error {
	// Frame must be copied defensively; the driver reuses no slices across
	// calls, but be explicit so a future change can't alias state.
	cp := Frame{Time: f.Time, Positions: make([]Vec, len(f.Positions)), Velocities: make([]Vec, len(f.Velocities))}
	for i := range f.Positions {
		cp.Positions[i] = f.Positions[i].clone()
		cp.Velocities[i] = f.Velocities[i].clone()
	}
	r.frames = append(r.frames, cp)
	return nil
}

func baseConfig() Config {
	return Config{
		NDim:            2,
		NumBalls:        10,
		BallRadius:      0.3,
		DomainSize:      []float64{6, 6},
		SimulationTime:  20,
		Gravity:         false,
		BallRestitution: 1,
		WallRestitution: 1,
		OutputRate:      1,
		RandomSeed:      100,
	}
}

func kineticEnergy(f Frame) float64 {
	sum := 0.0
	for _, v := range f.Velocities {
		sum += v.dot(v)
	}
	return 0.5 * sum
}

// Energy drift cap: 10 balls, elastic, no gravity, 20s run:
// final KE within 1e-9 relative of initial.
func TestSimulation_EnergyConservation(t *testing.T) {
	sink := &recordingSink{}
	s, err := New(baseConfig(), sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.frames) < 2 {
		t.Fatalf("expected at least 2 frames, got %d", len(sink.frames))
	}

	initial := kineticEnergy(sink.frames[0])
	final := kineticEnergy(sink.frames[len(sink.frames)-1])
	relDrift := math.Abs(final-initial) / initial
	if relDrift > 1e-9 {
		t.Errorf("energy drift too large: initial=%v final=%v relDrift=%v", initial, final, relDrift)
	}
}

// Non-penetration: after the run, every exported
// frame has all ball pairs separated by at least 2r - eps and every ball
// within the walls.
func TestSimulation_NonPenetration(t *testing.T) {
	sink := &recordingSink{}
	cfg := baseConfig()
	s, err := New(cfg, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	const eps = 1e-6
	for _, f := range sink.frames {
		for i := range f.Positions {
			for j := i + 1; j < len(f.Positions); j++ {
				dist := f.Positions[i].sub(f.Positions[j]).norm()
				if dist < 2*cfg.BallRadius-eps {
					t.Errorf("t=%v: balls %d,%d overlap: dist=%v", f.Time, i, j, dist)
				}
			}
			for _, w := range s.walls {
				if d := w.signedDistance(f.Positions[i], cfg.BallRadius); d < -eps {
					t.Errorf("t=%v: ball %d penetrates wall axis %d: signedDistance=%v", f.Time, i, w.axis, d)
				}
			}
		}
	}
}

// Determinism: two runs with identical config and seed produce
// identical frame sequences.
func TestSimulation_Determinism(t *testing.T) {
	cfg := baseConfig()

	run := func() []Frame {
		sink := &recordingSink{}
		s, err := New(cfg, sink)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := s.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return sink.frames
	}

	a := run()
	b := run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two runs with the same seed diverged")
	}
}

// Grid consistency: every ball's grid cell always
// equals floor(x / cellSize) at its own proper time.
func TestSimulation_GridConsistency(t *testing.T) {
	cfg := baseConfig()
	sink := &recordingSink{}
	s, err := New(cfg, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, b := range s.balls {
		want := cellOf(b.x)
		if b.cell != want {
			t.Errorf("ball %d: cell %v does not match floor(x)=%v", i, b.cell, want)
		}
		if _, ok := s.grid.cells[b.cell][i]; !ok {
			t.Errorf("ball %d: not registered in grid cell %v", i, b.cell)
		}
	}
}

func TestNew_RejectsTooManyBalls(t *testing.T) {
	cfg := baseConfig()
	cfg.NumBalls = 10000
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected an error for a ball count exceeding interior cells")
	}
}

func TestNew_RejectsBadRadius(t *testing.T) {
	cfg := baseConfig()
	cfg.BallRadius = 0.6
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected an error for radius > 0.5")
	}
}

func TestNew_RejectsCellSizeViolation(t *testing.T) {
	cfg := baseConfig()
	cfg.BallRadius = 0.5
	cfg.DomainSize = []float64{6, 6}
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected an error when 2*radius >= cell size")
	}
}
