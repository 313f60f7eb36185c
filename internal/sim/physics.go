package sim

import "math"

// epsRoot is the smallest root accepted as a future crossing: a root at or
// below it is rejected, for floating-point robustness near a face or
// boundary the ball is already sitting on.
const epsRoot = 1e-9

// smallestPositiveRoot solves A*tau^2 + B*tau + C = 0 for the smallest
// strictly-future root, treating a linear equation (A == 0) as a special
// case. A root within epsRoot of zero is degenerate: it describes the
// ball's current position, typically because it was just placed exactly
// on this boundary by the previous event, so it is skipped in favor of a
// later root (if the quadratic branch has one) rather than being reported
// as an immediate re-crossing. A popped event's own dispatch-time
// tolerance (see Simulation.Run) handles the separate case of a
// marginally-negative predicted time on an event already in the queue.
func smallestPositiveRoot(a, b, c float64) (float64, bool) {
	future := func(tau float64) (float64, bool) {
		if tau > epsRoot {
			return tau, true
		}
		return 0, false
	}

	if math.Abs(a) < 1e-14 {
		if math.Abs(b) < 1e-14 {
			return 0, false
		}
		return future(-c / b)
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if tau, ok := future(t1); ok {
		return tau, true
	}
	return future(t2)
}

// overlapTol tolerates the tiny negative penetration floating-point
// residue left behind right after a collision is resolved (the two
// surfaces are exactly tangent in exact arithmetic, c == 0); a gap deeper
// than this is a genuine overlap, not residue.
const overlapTol = 1e-9

// ballBallPrediction is the outcome of solving for the next contact between
// two already-advanced balls.
type ballBallPrediction struct {
	tau         float64
	found       bool
	overlapping bool // c < -overlapTol: a genuine already-overlapping pair
}

// predictBallBallTau solves the ball-ball contact quadratic in the
// relative frame, where gravity cancels because both particles share it.
func predictBallBallTau(dx, dv Vec, radius float64) ballBallPrediction {
	c := dx.dot(dx) - 4*radius*radius
	if c < -overlapTol {
		return ballBallPrediction{overlapping: true}
	}
	a := dv.dot(dv)
	if a <= 1e-14 {
		return ballBallPrediction{}
	}
	if dx.dot(dv) >= 0 {
		return ballBallPrediction{} // separating or tangential, never approaching
	}
	b := 2 * dx.dot(dv)
	disc := b*b - 4*a*c
	if disc <= 0 {
		return ballBallPrediction{}
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	tau, found := math.Inf(1), false
	for _, t := range [2]float64{t1, t2} {
		if t > epsRoot && t < tau {
			tau, found = t, true
		}
	}
	if !found {
		return ballBallPrediction{}
	}
	return ballBallPrediction{tau: tau, found: true}
}

// predictBallBall returns the absolute collision time for balls i and j, or
// ok=false if no collision is predicted. overlapping reports a detected
// numerical degeneracy (already-overlapping pair).
func predictBallBall(bi, bj *ball, gravity Vec, radius float64) (t float64, ok, overlapping bool) {
	tBase := bi.t
	if bj.t > tBase {
		tBase = bj.t
	}
	xi := bi.positionAt(tBase, gravity)
	vi := velocityAt(bi.v, gravity, tBase-bi.t)
	xj := bj.positionAt(tBase, gravity)
	vj := velocityAt(bj.v, gravity, tBase-bj.t)

	dx := xj.sub(xi)
	dv := vj.sub(vi)
	res := predictBallBallTau(dx, dv, radius)
	if res.overlapping {
		return 0, false, true
	}
	if !res.found {
		return 0, false, false
	}
	return tBase + res.tau, true, false
}

// predictBallWall returns the absolute time at which ball b first touches
// wall w,.1.
func predictBallWall(b *ball, w *wall, gravity Vec, radius float64) (float64, bool) {
	k := w.axis
	a := 0.5 * w.normal * gravity[k]
	bcoef := w.normal * b.v[k]
	c := w.normal*(b.x[k]-w.offset) - radius
	tau, ok := smallestPositiveRoot(a, bcoef, c)
	if !ok {
		return 0, false
	}
	return b.t + tau, true
}

// predictGridTransit returns the absolute time and destination cell for the
// next face crossing of ball b's current cell,.1.
func predictGridTransit(b *ball, gravity Vec, ndim int) (float64, Cell, bool) {
	bestTau := math.Inf(1)
	bestAxis := -1
	bestDelta := 0

	for d := 0; d < ndim; d++ {
		faces := [2]struct {
			target float64
			delta  int
		}{
			{float64(b.cell[d]), -1},
			{float64(b.cell[d] + 1), 1},
		}
		for _, face := range faces {
			a := 0.5 * gravity[d]
			bcoef := b.v[d]
			c := b.x[d] - face.target
			tau, ok := smallestPositiveRoot(a, bcoef, c)
			if ok && tau < bestTau {
				bestTau = tau
				bestAxis = d
				bestDelta = face.delta
			}
		}
	}
	if bestAxis < 0 {
		return 0, Cell{}, false
	}
	newCell := b.cell
	newCell[bestAxis] += bestDelta
	return b.t + bestTau, newCell, true
}

// resolveBallBall applies the restitution-scaled normal impulse to two
// balls already advanced to the collision time.
func resolveBallBall(bi, bj *ball, restitution float64) {
	delta := bj.x.sub(bi.x)
	dist := delta.norm()
	if dist == 0 {
		return // degenerate; caller should have already reported overlap
	}
	n := delta.scale(1 / dist)
	dv := bj.v.sub(bi.v)
	vn := dv.dot(n)
	j := (1 + restitution) * vn / 2
	bi.v = bi.v.add(n.scale(j))
	bj.v = bj.v.sub(n.scale(j))
}

// resolveBallWall reflects the ball's velocity component along the wall's
// normal axis, scaled by the wall's restitution.
func resolveBallWall(b *ball, w *wall) {
	b.v[w.axis] = -w.restitution * b.v[w.axis]
}
