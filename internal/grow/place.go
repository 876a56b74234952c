package grow

import (
	"snapmap/internal/geom"
	"snapmap/internal/moduledb"
)

// halfTurn flips a door transform to face back the way it came.
var halfTurn = geom.Identity().Yaw(180)

// alignTo returns the module transform that puts the candidate connection
// onto the open door. Magnet pairs also turn the module so the doors face
// each other; any Free side keeps the module's authored orientation.
func alignTo(door geom.Transform, open, cand moduledb.ConnectionDescriptor) geom.Transform {
	if open.Constraint == moduledb.Free || cand.Constraint == moduledb.Free {
		l := door.Location.Sub(cand.Local.Location)
		return geom.At(l[0], l[1], l[2]).Snapped()
	}
	target := door.Mul(halfTurn)
	return target.Mul(cand.Local.Inverse()).Snapped()
}

// rejection says why a placement was refused.
type rejection uint8

const (
	accepted rejection = iota
	rejectOverlap
	rejectNegation
)

// fits tests a world-space box against placed modules and negation volumes.
func (a *attempt) fits(bounds geom.AABB) rejection {
	c := a.cfg.BoundsContraction
	shrunk := bounds.Contract(c)
	for _, n := range a.graph.Nodes {
		if shrunk.Intersects(n.Bounds.Contract(c)) {
			return rejectOverlap
		}
	}
	insideRequired, hasRequired := false, false
	for _, v := range a.cfg.NegationVolumes {
		if v.Inverse {
			hasRequired = true
			if v.Bounds.Contains(shrunk) {
				insideRequired = true
			}
			continue
		}
		if shrunk.Intersects(v.Bounds) {
			return rejectNegation
		}
	}
	if hasRequired && !insideRequired {
		return rejectNegation
	}
	return accepted
}
