package textmesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/unixpickle/model3d/model2d"
)

const (
	// Vertices closer than this are merged before triangulating.
	mergeEpsilon = 1e-9

	// Corners whose turning angle has a sine below this are treated as
	// straight and their vertex is dropped.
	collinearEpsilon = 1e-10
)

// ContourRole is the part a polyline plays in the filled region.
//
// Available options:
//   - RoleOuter: the boundary of a filled region.
//   - RoleHole: the boundary of an unfilled cavity inside an outer
//     boundary.
//   - RoleRedundant: nested inside a contour with the same winding, so
//     it does not change what is filled.
type ContourRole int

const (
	RoleOuter ContourRole = iota
	RoleHole
	RoleRedundant
)

func (c ContourRole) String() string {
	switch c {
	case RoleOuter:
		return "outer"
	case RoleHole:
		return "hole"
	case RoleRedundant:
		return "redundant"
	default:
		panic("unknown ContourRole")
	}
}

// Classify determines the role of every polyline from nesting.
//
// The innermost contour containing a polyline is its parent. A polyline
// without a parent is an outer boundary. Otherwise, a winding opposite to
// the parent's toggles between filled and unfilled, making it a hole
// inside a filled region or an outer boundary (an island) inside a hole.
// A winding equal to the parent's leaves the fill unchanged.
//
// No global handedness is assumed, so fonts winding their outer contours
// either way are handled alike.
func Classify(polys []Polyline) []ContourRole {
	parents := containmentParents(polys)

	order := make([]int, len(polys))
	areas := make([]float64, len(polys))
	for i, p := range polys {
		order[i] = i
		areas[i] = p.SignedArea()
	}
	sort.SliceStable(order, func(i, j int) bool {
		return math.Abs(areas[order[i]]) > math.Abs(areas[order[j]])
	})

	roles := make([]ContourRole, len(polys))
	filled := make([]bool, len(polys))
	for _, i := range order {
		p := parents[i]
		if p == -1 {
			roles[i] = RoleOuter
			filled[i] = true
		} else if (areas[i] < 0) != (areas[p] < 0) {
			filled[i] = !filled[p]
			if filled[i] {
				roles[i] = RoleOuter
			} else {
				roles[i] = RoleHole
			}
		} else {
			filled[i] = filled[p]
			roles[i] = RoleRedundant
		}
	}
	return roles
}

// containmentParents finds the smallest contour containing each contour,
// or -1 if there is none.
func containmentParents(polys []Polyline) []int {
	type bounds struct {
		min, max model2d.Coord
		area     float64
	}
	info := make([]bounds, len(polys))
	for i, p := range polys {
		min, max := p.Bounds()
		info[i] = bounds{min: min, max: max, area: math.Abs(p.SignedArea())}
	}

	parents := make([]int, len(polys))
	for i := range polys {
		parents[i] = -1
		for j := range polys {
			if i == j || info[j].area <= info[i].area {
				continue
			}
			if info[i].min.X < info[j].min.X || info[i].min.Y < info[j].min.Y ||
				info[i].max.X > info[j].max.X || info[i].max.Y > info[j].max.Y {
				continue
			}
			if !polylineInside(polys[i], polys[j]) {
				continue
			}
			if parents[i] == -1 || info[j].area < info[parents[i]].area {
				parents[i] = j
			}
		}
	}
	return parents
}

// polylineInside checks if inner lies within outer, assuming the two do
// not cross. Vertices on the boundary of outer are inconclusive and skipped.
func polylineInside(inner, outer Polyline) bool {
	if len(inner) < 2 {
		return false
	}
	for _, c := range inner {
		if distToPolyline(outer, c) <= mergeEpsilon {
			continue
		}
		return outer.Contains(c)
	}
	// Every vertex touches the other contour; fall back to an edge midpoint.
	return outer.Contains(inner[0].Mid(inner[1]))
}

func distToPolyline(p Polyline, c model2d.Coord) float64 {
	res := math.Inf(1)
	for i, a := range p {
		res = math.Min(res, segmentDist(a, p[(i+1)%len(p)], c))
	}
	return res
}

func segmentDist(a, b, c model2d.Coord) float64 {
	d := b.Sub(a)
	l := d.Dot(d)
	if l == 0 {
		return c.Dist(a)
	}
	t := math.Max(0, math.Min(1, c.Sub(a).Dot(d)/l))
	return c.Dist(a.Add(d.Scale(t)))
}

// Triangulate splits the region enclosed by polys into triangles.
//
// Holes are found with Classify. The resulting triangles exactly cover
// the filled region and are all counter-clockwise. An empty input gives
// an empty mesh.
//
// It returns ErrTriangulationFailed for non-finite coordinates, crossing
// edges, contours overlapping along shared edges, or when no valid
// triangulation can be found.
func Triangulate(polys []Polyline) (*Mesh2D, error) {
	m := NewMesh2D()
	if err := TriangulateInto(m, polys); err != nil {
		return nil, err
	}
	return m, nil
}

// TriangulateInto is like Triangulate, but writes into dst, which is
// cleared first.
func TriangulateInto(dst *Mesh2D, polys []Polyline) error {
	dst.Clear()
	if len(polys) == 0 {
		return nil
	}

	for i, p := range polys {
		for _, c := range p {
			if !isFiniteCoord(c) {
				return fmt.Errorf("%w: contour %d has non-finite coordinates", ErrTriangulationFailed, i)
			}
		}
	}

	roles := Classify(polys)
	parents := containmentParents(polys)

	rings := make([]Polyline, len(polys))
	for i, p := range polys {
		if roles[i] == RoleRedundant {
			Logger().Debug("skipping redundant nested contour", "contour", i)
			continue
		}
		rings[i] = cleanRing(p)
		if len(rings[i]) < 3 {
			Logger().Debug("skipping degenerate contour", "contour", i, "points", len(rings[i]))
			rings[i] = nil
		}
	}

	if i, j, ok := findCrossing(rings, roles); ok {
		return fmt.Errorf("%w: contours %d and %d intersect or overlap", ErrTriangulationFailed, i, j)
	}

	holes := map[int][]int{}
	for i, role := range roles {
		if role != RoleHole || rings[i] == nil {
			continue
		}
		owner := parents[i]
		for owner != -1 && roles[owner] != RoleOuter {
			owner = parents[owner]
		}
		if owner == -1 {
			return fmt.Errorf("%w: hole %d has no enclosing boundary", ErrTriangulationFailed, i)
		}
		holes[owner] = append(holes[owner], i)
	}

	indices := map[model2d.Coord]uint32{}
	vertexIndex := func(c model2d.Coord) uint32 {
		if idx, ok := indices[c]; ok {
			return idx
		}
		idx := dst.PushVertex(c)
		indices[c] = idx
		return idx
	}

	for i, role := range roles {
		if role != RoleOuter || rings[i] == nil {
			continue
		}
		reg := &region{outer: rings[i]}
		for _, h := range holes[i] {
			reg.holes = append(reg.holes, rings[h])
		}
		if err := reg.triangulate(dst, vertexIndex); err != nil {
			dst.Clear()
			return fmt.Errorf("%w: contour %d: %s", ErrTriangulationFailed, i, err)
		}
	}

	return nil
}

// cleanRing merges near-coincident neighbors and drops vertices on
// straight runs or spikes.
func cleanRing(p Polyline) Polyline {
	res := make(Polyline, 0, len(p))
	for _, c := range p {
		if len(res) > 0 && res[len(res)-1].Dist(c) <= mergeEpsilon {
			continue
		}
		res = append(res, c)
	}
	for len(res) > 1 && res[len(res)-1].Dist(res[0]) <= mergeEpsilon {
		res = res[:len(res)-1]
	}

	for changed := true; changed && len(res) >= 3; {
		changed = false
		for i := 0; i < len(res) && len(res) >= 3; {
			prev := res[(i+len(res)-1)%len(res)]
			next := res[(i+1)%len(res)]
			if isStraightCorner(prev, res[i], next) {
				Logger().Debug("removing collinear vertex", "x", res[i].X, "y", res[i].Y)
				res = append(res[:i], res[i+1:]...)
				changed = true
				continue
			}
			i++
		}
	}
	return res
}

func isStraightCorner(a, b, c model2d.Coord) bool {
	scale := b.Dist(a) * c.Dist(b)
	return math.Abs(cross2(a, b, c)) <= collinearEpsilon*scale
}

// findCrossing looks for two edges, in any rings, which properly cross or
// which run along each other with material on the same side. The latter
// covers duplicated and partially overlapping contours, while a hole may
// still share a stretch of boundary with its outer contour.
func findCrossing(rings []Polyline, roles []ContourRole) (int, int, bool) {
	type edge struct {
		ring     int
		a, b     model2d.Coord
		min, max model2d.Coord

		// side is 1 if material is left of a->b, and -1 otherwise.
		side float64
	}
	var edges []edge
	for i, r := range rings {
		if len(r) == 0 {
			continue
		}
		side := 1.0
		if (r.SignedArea() < 0) != (roles[i] == RoleHole) {
			side = -1
		}
		for j, a := range r {
			b := r[(j+1)%len(r)]
			edges = append(edges, edge{ring: i, a: a, b: b, min: a.Min(b), max: a.Max(b), side: side})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].min.X < edges[j].min.X
	})
	for i, e1 := range edges {
		for _, e2 := range edges[i+1:] {
			if e2.min.X > e1.max.X {
				break
			}
			if e2.min.Y > e1.max.Y || e2.max.Y < e1.min.Y {
				continue
			}
			if segmentsCross(e1.a, e1.b, e2.a, e2.b) ||
				segmentsOverlap(e1.a, e1.b, e1.side, e2.a, e2.b, e2.side) {
				return e1.ring, e2.ring, true
			}
		}
	}
	return 0, 0, false
}

// segmentsCross checks if segments p1-p2 and q1-q2 cross at a point
// interior to both.
func segmentsCross(p1, p2, q1, q2 model2d.Coord) bool {
	d1 := cross2(q1, q2, p1)
	d2 := cross2(q1, q2, p2)
	d3 := cross2(p1, p2, q1)
	d4 := cross2(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// segmentsOverlap checks if segments p1-p2 and q1-q2 are collinear, share
// a stretch of positive length, and keep material on the same side of it.
func segmentsOverlap(p1, p2 model2d.Coord, pSide float64, q1, q2 model2d.Coord, qSide float64) bool {
	d := p2.Sub(p1)
	l := d.Norm()
	if l <= mergeEpsilon || q1.Dist(q2) <= mergeEpsilon {
		return false
	}
	if pSide*qSide*d.Dot(q2.Sub(q1)) <= 0 {
		return false
	}
	if math.Abs(cross2(p1, p2, q1)) > mergeEpsilon*l || math.Abs(cross2(p1, p2, q2)) > mergeEpsilon*l {
		return false
	}
	u := d.Scale(1 / l)
	t1, t2 := q1.Sub(p1).Dot(u), q2.Sub(p1).Dot(u)
	lo := math.Max(0, math.Min(t1, t2))
	hi := math.Min(l, math.Max(t1, t2))
	return hi-lo > mergeEpsilon
}

// cross2 computes (b-a) x (c-a), which is positive when a, b, c turn
// counter-clockwise.
func cross2(a, b, c model2d.Coord) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// pointInTriangle checks if p is inside or on the boundary of the
// counter-clockwise triangle a, b, c.
func pointInTriangle(a, b, c, p model2d.Coord) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

// A region is one outer boundary together with the holes it directly
// encloses.
type region struct {
	outer Polyline
	holes []Polyline
}

// A ringNode is a vertex in a doubly-linked polygon ring. The filled
// region always lies to the left of each edge.
type ringNode struct {
	idx  uint32
	p    model2d.Coord
	prev *ringNode
	next *ringNode
}

func (r *region) triangulate(dst *Mesh2D, vertexIndex func(model2d.Coord) uint32) error {
	ring := newRing(r.outer, r.outer.SignedArea() < 0, vertexIndex)

	holeRings := make([]*ringNode, len(r.holes))
	for i, h := range r.holes {
		holeRings[i] = newRing(h, h.SignedArea() > 0, vertexIndex)
	}

	// Bridge holes from right to left.
	order := make([]int, len(holeRings))
	maxNodes := make([]*ringNode, len(holeRings))
	for i, h := range holeRings {
		order[i] = i
		maxNodes[i] = rightmostNode(h)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return maxNodes[order[i]].p.X > maxNodes[order[j]].p.X
	})
	for k, i := range order {
		var pending []*ringNode
		for _, j := range order[k+1:] {
			pending = append(pending, holeRings[j])
		}
		if err := bridgeHole(ring, maxNodes[i], pending); err != nil {
			return err
		}
	}

	dst.Reserve(0, r.numPoints())
	return earClip(ring, dst)
}

func (r *region) numPoints() int {
	n := len(r.outer)
	for _, h := range r.holes {
		n += len(h)
	}
	return n
}

func newRing(points Polyline, reverse bool, vertexIndex func(model2d.Coord) uint32) *ringNode {
	var first, last *ringNode
	for i := range points {
		c := points[i]
		if reverse {
			c = points[len(points)-1-i]
		}
		n := &ringNode{idx: vertexIndex(c), p: c}
		if first == nil {
			first = n
		} else {
			last.next = n
			n.prev = last
		}
		last = n
	}
	last.next = first
	first.prev = last
	return first
}

func rightmostNode(start *ringNode) *ringNode {
	res := start
	for n := start.next; n != start; n = n.next {
		if n.p.X > res.p.X || (n.p.X == res.p.X && n.p.Y < res.p.Y) {
			res = n
		}
	}
	return res
}

// bridgeHole connects the hole containing m to the outer ring with a pair
// of coincident edges, producing a single weakly simple ring.
//
// Candidate outer vertices are tried from nearest to farthest; the first
// one whose connecting segment is locally inside at both ends and crosses
// no edge of the outer ring or of any hole is used.
func bridgeHole(outer, m *ringNode, pending []*ringNode) error {
	type candidate struct {
		node *ringNode
		dist float64
	}
	var candidates []candidate
	n := outer
	for {
		if locallyInside(n, m.p) && locallyInside(m, n.p) {
			candidates = append(candidates, candidate{node: n, dist: n.p.Dist(m.p)})
		}
		n = n.next
		if n == outer {
			break
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	for _, c := range candidates {
		if segmentCrossesRing(c.node.p, m.p, outer) || segmentCrossesRing(c.node.p, m.p, m) {
			continue
		}
		crosses := false
		for _, h := range pending {
			if segmentCrossesRing(c.node.p, m.p, h) {
				crosses = true
				break
			}
		}
		if crosses {
			continue
		}
		splitRing(c.node, m)
		return nil
	}
	return fmt.Errorf("no bridge to hole at (%g, %g)", m.p.X, m.p.Y)
}

// locallyInside checks if the direction from a towards q starts inside
// the filled region at a.
func locallyInside(a *ringNode, q model2d.Coord) bool {
	p, n := a.prev.p, a.next.p
	if cross2(p, a.p, n) >= 0 {
		return cross2(a.p, n, q) > 0 && cross2(a.p, q, p) > 0
	}
	return cross2(a.p, n, q) > 0 || cross2(a.p, q, p) > 0
}

// segmentCrossesRing checks if a-b intersects any edge of the ring that
// does not share an endpoint with it.
func segmentCrossesRing(a, b model2d.Coord, ring *ringNode) bool {
	n := ring
	for {
		p, q := n.p, n.next.p
		if p != a && p != b && q != a && q != b {
			if segmentsCross(a, b, p, q) {
				return true
			}
			// A vertex lying on the bridge would make it touch the
			// boundary, which is just as bad as crossing.
			if onSegment(a, b, p) {
				return true
			}
		}
		n = n.next
		if n == ring {
			return false
		}
	}
}

func onSegment(a, b, p model2d.Coord) bool {
	return segmentDist(a, b, p) <= mergeEpsilon
}

// splitRing joins ring a with ring b through the diagonal a-b, duplicating
// both endpoints.
func splitRing(a, b *ringNode) {
	a2 := &ringNode{idx: a.idx, p: a.p}
	b2 := &ringNode{idx: b.idx, p: b.p}
	an, bp := a.next, b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp
}

// earClip triangulates a ring by repeatedly cutting off ears.
//
// A simple ring of n vertices yields exactly n-2 triangles. When a full
// pass finds no ear, degenerate vertices are removed and the search is
// retried; if there are none, the ring cannot be triangulated.
func earClip(ear *ringNode, dst *Mesh2D) error {
	stop := ear
	for ear.prev != ear.next {
		if isEar(ear) {
			dst.PushTriangle(ear.prev.idx, ear.idx, ear.next.idx)
			ear = removeNode(ear)
			stop = ear
			continue
		}
		ear = ear.next
		if ear == stop {
			var removed bool
			ear, removed = filterDegenerate(ear)
			if !removed {
				return fmt.Errorf("no ear found among remaining vertices")
			}
			if ear == nil {
				return nil
			}
			stop = ear
		}
	}
	return nil
}

func isEar(b *ringNode) bool {
	a, c := b.prev, b.next
	if cross2(a.p, b.p, c.p) <= collinearEpsilon*a.p.Dist(b.p)*b.p.Dist(c.p) {
		return false
	}
	for n := c.next; n != a; n = n.next {
		if n.p == a.p || n.p == b.p || n.p == c.p {
			continue
		}
		if pointInTriangle(a.p, b.p, c.p, n.p) {
			return false
		}
	}
	return true
}

func removeNode(n *ringNode) *ringNode {
	n.prev.next = n.next
	n.next.prev = n.prev
	return n.next
}

// filterDegenerate removes vertices with a zero-length edge or a straight
// corner. It returns a remaining node, or nil if fewer than three remain.
func filterDegenerate(start *ringNode) (*ringNode, bool) {
	var removed bool
	n := start
	for {
		if n.prev == n.next {
			return nil, true
		}
		if n.p.Dist(n.next.p) <= mergeEpsilon || isStraightCorner(n.prev.p, n.p, n.next.p) {
			Logger().Debug("dropping degenerate vertex during ear clipping", "x", n.p.X, "y", n.p.Y)
			n = removeNode(n)
			start = n
			removed = true
			continue
		}
		n = n.next
		if n == start {
			return n, removed
		}
	}
}
