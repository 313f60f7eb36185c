package sim

import log "github.com/sirupsen/logrus"

// generateForBall enumerates and enqueues the candidate events for ball i
// as of its current state at time T. When initSeeding is
// true, ball-ball candidates are restricted to j > i to avoid duplicate
// (i,j)/(j,i) pairs in the initial seeding only; every subsequent call
// considers the full neighborhood, relying on lazy invalidation to
// reconcile any resulting duplicate scheduling. It returns an
// *InvariantError if an already-overlapping ball pair is found.
func (s *Simulation) generateForBall(i int, T float64, initSeeding bool) error {
	if err := s.generateBallBall(i, T, initSeeding, s.grid.neighbors(s.balls[i].cell)); err != nil {
		return err
	}
	s.generateBallWall(i, T)
	s.generateGridTransit(i, T)
	return nil
}

func (s *Simulation) generateBallBall(i int, T float64, initSeeding bool, candidates []int) error {
	bi := s.balls[i]
	for _, j := range candidates {
		if j == i {
			continue
		}
		if initSeeding && j <= i {
			continue
		}
		bj := s.balls[j]
		t, ok, overlapping := predictBallBall(bi, bj, s.gravity, s.cfg.BallRadius)
		if overlapping {
			return s.overlapError(i, j, T)
		}
		if !ok {
			continue
		}
		e := &event{kind: eventBallBall, time: t, i: i, j: j, valid: true}
		s.queue.push(e)
		bi.own(e)
		bj.own(e)
	}
	return nil
}

// generateBallWall keeps only the earliest-per-wall candidate with t > T.
func (s *Simulation) generateBallWall(i int, T float64) {
	b := s.balls[i]
	for wIdx, w := range s.walls {
		t, ok := predictBallWall(b, w, s.gravity, s.cfg.BallRadius)
		if !ok || t <= T {
			continue
		}
		e := &event{kind: eventBallWall, time: t, i: i, wallIdx: wIdx, valid: true}
		s.queue.push(e)
		b.own(e)
	}
}

func (s *Simulation) generateGridTransit(i int, T float64) {
	b := s.balls[i]
	t, newCell, ok := predictGridTransit(b, s.gravity, s.cfg.NDim)
	if !ok {
		// A ball with zero velocity and no active gravity axis never
		// transits; that is expected, not an error.
		return
	}
	e := &event{kind: eventGridTransit, time: t, i: i, newCell: newCell, valid: true}
	s.queue.push(e)
	b.own(e)
}

// generateBallBallWithNewNeighbors is used by the GridTransit handler: only
// balls in the newly-entered ("leading") neighbor cells need a fresh
// ball-ball candidate, because events against balls that were already
// neighbors remain valid.
func (s *Simulation) generateBallBallWithNewNeighbors(i int, T float64, from, to Cell) error {
	return s.generateBallBall(i, T, false, s.grid.leadingNeighbors(from, to))
}

// overlapError reports a genuinely overlapping ball pair (beyond
// overlapTol's floating-point residue allowance) as an invariant breach:
// the driver halts rather than trying to "fix" the positions.
func (s *Simulation) overlapError(i, j int, t float64) error {
	log.WithFields(log.Fields{"t": t, "i": i, "j": j}).Error("already-overlapping pair detected")
	return &InvariantError{Time: t, BallIdx: []int{i, j}, Message: "already-overlapping ball pair detected"}
}
