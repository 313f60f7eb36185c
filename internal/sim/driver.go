package sim

import (
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// Frame is one Export snapshot: for every ball, its position extrapolated
// to the frame time and its current piecewise-constant velocity.
type Frame struct {
	Time       float64
	Positions  []Vec
	Velocities []Vec
}

// FrameSink receives frames as the driver emits them. Serialization format
// and destination (files, a live-feed socket, both) are the caller's
// concern, not the kernel's.
type FrameSink interface {
	Emit(Frame) error
}

// Simulation owns the particle store, grid, walls, and event heap for the
// duration of a run. All mutation happens synchronously inside Run.
type Simulation struct {
	cfg     Config
	gravity Vec
	balls   []*ball
	walls   []*wall
	grid    *grid
	queue   *eventQueue
	rng     *rand.Rand
	sink    FrameSink
}

// New validates cfg, places balls without overlap, seeds initial
// velocities deterministically, and populates the event queue.
func New(cfg Config, sink FrameSink) (*Simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	capacity := cfg.interiorCells()
	if cfg.NumBalls > capacity {
		return nil, &ConfigError{Message: "num_balls exceeds available interior cells"}
	}

	s := &Simulation{
		cfg:     cfg,
		gravity: cfg.gravityVec(),
		walls:   buildWalls(cfg.DomainSize, cfg.WallRestitution),
		grid:    newGrid(cfg.NDim),
		queue:   newEventQueue(),
		rng:     rand.New(rand.NewSource(cfg.RandomSeed)),
		sink:    sink,
	}

	s.placeBalls()
	s.seedVelocities()
	for i := range s.balls {
		s.grid.insert(i, s.balls[i].cell)
	}
	for i := range s.balls {
		if err := s.generateForBall(i, 0, true); err != nil {
			return nil, err
		}
	}
	s.seedExportEvents()

	log.WithFields(log.Fields{
		"ndim":      cfg.NDim,
		"num_balls": cfg.NumBalls,
		"gravity":   cfg.Gravity,
		"seed":      cfg.RandomSeed,
	}).Info("simulation initialized")
	return s, nil
}

// placeBalls assigns each ball to the center of a distinct interior cell,
// in row-major order over the cell grid, so that identical configuration
// and seed always produce an identical initial layout.
func (s *Simulation) placeBalls() {
	s.balls = make([]*ball, s.cfg.NumBalls)
	counts := make([]int, s.cfg.NDim)
	for d, size := range s.cfg.DomainSize {
		counts[d] = int((size - 2*wallInset) / cellSize)
	}

	idx := make([]int, s.cfg.NDim)
	placed := 0
	for placed < s.cfg.NumBalls {
		x := make(Vec, s.cfg.NDim)
		for d := 0; d < s.cfg.NDim; d++ {
			x[d] = wallInset + (float64(idx[d])+0.5)*cellSize
		}
		b := newBall(x, make(Vec, s.cfg.NDim))
		b.cell = cellOf(x)
		s.balls[placed] = b
		placed++

		for d := s.cfg.NDim - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < counts[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// seedVelocities draws each velocity component i.i.d. from a zero-mean
// unit-variance Gaussian using the seeded generator.
func (s *Simulation) seedVelocities() {
	for _, b := range s.balls {
		for d := range b.v {
			b.v[d] = s.rng.NormFloat64()
		}
	}
}

// seedExportEvents schedules one Export event per output_rate tick strictly
// before SimulationTime; the End event always handles the final frame
// itself, so a SimulationTime that lands exactly on a tick doesn't get the
// same frame written twice.
func (s *Simulation) seedExportEvents() {
	for t := 0.0; t < s.cfg.SimulationTime-epsRoot; t += s.cfg.OutputRate {
		s.queue.push(&event{kind: eventExport, time: t, valid: true})
	}
	s.queue.push(&event{kind: eventEnd, time: s.cfg.SimulationTime, valid: true})
}

// Run pops events until End, dispatching each to its handler. It returns
// an *InvariantError if a runtime degeneracy is detected, and any error
// the frame sink returns.
func (s *Simulation) Run() error {
	var lastTime float64
	for {
		e := s.queue.pop()
		if e == nil {
			return &InvariantError{Message: "event queue exhausted before End event"}
		}
		if !e.valid {
			continue
		}
		if e.time < lastTime-epsRoot {
			return &InvariantError{Time: e.time, Message: "time moved backwards"}
		}
		lastTime = e.time

		switch e.kind {
		case eventBallBall:
			if err := s.handleBallBall(e); err != nil {
				return err
			}
		case eventBallWall:
			if err := s.handleBallWall(e); err != nil {
				return err
			}
		case eventGridTransit:
			if err := s.handleGridTransit(e); err != nil {
				return err
			}
		case eventExport:
			if err := s.handleExport(e.time); err != nil {
				return err
			}
		case eventEnd:
			if err := s.handleExport(e.time); err != nil {
				return err
			}
			log.WithField("t", e.time).Info("simulation complete")
			return nil
		}
	}
}

func (s *Simulation) handleBallBall(e *event) error {
	bi, bj := s.balls[e.i], s.balls[e.j]
	if math.IsNaN(e.time) || e.time < bi.t || e.time < bj.t {
		return &InvariantError{Time: e.time, BallIdx: []int{e.i, e.j}, Message: "predicted ball-ball time is not reachable"}
	}
	bi.advanceTo(e.time, s.gravity)
	bj.advanceTo(e.time, s.gravity)

	if approaching, ok := isApproaching(bi, bj); ok && !approaching {
		return &InvariantError{Time: e.time, BallIdx: []int{e.i, e.j}, Message: "ball-ball collision not approaching at impact"}
	}

	resolveBallBall(bi, bj, s.cfg.BallRestitution)

	log.WithFields(log.Fields{"t": e.time, "i": e.i, "j": e.j}).Debug("ball-ball collision")

	bi.invalidateAll()
	bj.invalidateAll()
	if err := s.generateForBall(e.i, e.time, false); err != nil {
		return err
	}
	return s.generateForBall(e.j, e.time, false)
}

// isApproaching reports whether i and j are closing along the contact
// normal at impact. ok is false when the distance is degenerate (zero)
// and the check cannot be made.
func isApproaching(bi, bj *ball) (approaching bool, ok bool) {
	delta := bj.x.sub(bi.x)
	dist := delta.norm()
	if dist == 0 {
		return false, false
	}
	n := delta.scale(1 / dist)
	vn := bj.v.sub(bi.v).dot(n)
	return vn <= epsRoot, true
}

func (s *Simulation) handleBallWall(e *event) error {
	b := s.balls[e.i]
	if math.IsNaN(e.time) || e.time < b.t {
		return &InvariantError{Time: e.time, BallIdx: []int{e.i}, Message: "predicted ball-wall time is not reachable"}
	}
	b.advanceTo(e.time, s.gravity)
	w := s.walls[e.wallIdx]
	resolveBallWall(b, w)

	log.WithFields(log.Fields{"t": e.time, "i": e.i, "wall": e.wallIdx}).Debug("ball-wall collision")

	b.invalidateAll()
	return s.generateForBall(e.i, e.time, false)
}

func (s *Simulation) handleGridTransit(e *event) error {
	b := s.balls[e.i]
	if math.IsNaN(e.time) || e.time < b.t {
		return &InvariantError{Time: e.time, BallIdx: []int{e.i}, Message: "predicted grid-transit time is not reachable"}
	}
	from := b.cell
	b.advanceTo(e.time, s.gravity)
	// Put the crossed coordinate on the new cell's side of the face, so that
	// rounding in advanceTo cannot leave floor(x) in the old cell.
	for d := range b.x {
		if e.newCell[d] > from[d] {
			b.x[d] = float64(e.newCell[d]) * cellSize
		} else if e.newCell[d] < from[d] {
			b.x[d] = math.Nextafter(float64(from[d])*cellSize, math.Inf(-1))
		}
	}

	s.grid.remove(e.i, from)
	b.cell = e.newCell
	s.grid.insert(e.i, e.newCell)
	delete(b.owned, e) // consumed; velocity is unchanged so nothing else is invalidated

	log.WithFields(log.Fields{"t": e.time, "i": e.i, "from": from, "to": e.newCell}).Trace("grid transit")

	// Existing BB events against balls still in the neighborhood remain
	// correct (velocity did not change); only the leading-face neighbors
	// and the continuing transit are new.
	if err := s.generateBallBallWithNewNeighbors(e.i, e.time, from, e.newCell); err != nil {
		return err
	}
	s.generateGridTransit(e.i, e.time)
	return nil
}

func (s *Simulation) handleExport(t float64) error {
	frame := Frame{
		Time:       t,
		Positions:  make([]Vec, len(s.balls)),
		Velocities: make([]Vec, len(s.balls)),
	}
	for i, b := range s.balls {
		frame.Positions[i] = b.positionAt(t, s.gravity)
		frame.Velocities[i] = b.v.clone()
	}
	if s.sink == nil {
		return nil
	}
	return s.sink.Emit(frame)
}
