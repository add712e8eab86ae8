package easel

// PathOp is a path command verb.
type PathOp uint8

const (
	PathMoveTo  PathOp = iota // start a new subpath at Pts[0]
	PathLineTo                // straight line to Pts[0]
	PathQuadTo                // quadratic Bézier through control Pts[0] to Pts[1]
	PathCubicTo               // cubic Bézier through controls Pts[0], Pts[1] to Pts[2]
	PathClose                 // close the current subpath
)

// PathCommand is one verb with its points.
type PathCommand struct {
	Op  PathOp
	Pts [3]Vec2
}

// Path is a sequence of subpaths built with MoveTo/LineTo/QuadTo/CubicTo/Close.
// Builder methods return the path for chaining:
//
//	p := new(easel.Path).MoveTo(0, 0).LineTo(100, 0).QuadTo(150, 50, 100, 100).Close()
//
// A path that is mutated after being assigned to a shape needs Shape.MarkDirty.
type Path struct {
	cmds    []PathCommand
	version uint64

	flat         []subpath
	flatVersion  uint64
	flatSegments int
}

// subpath is a flattened run of points. Closed subpaths do not repeat their
// first point at the end.
type subpath struct {
	pts    []Vec2
	closed bool
}

func (p *Path) push(c PathCommand) *Path {
	p.cmds = append(p.cmds, c)
	p.version++
	return p
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) *Path {
	return p.push(PathCommand{Op: PathMoveTo, Pts: [3]Vec2{{x, y}}})
}

// LineTo adds a straight segment.
func (p *Path) LineTo(x, y float64) *Path {
	return p.push(PathCommand{Op: PathLineTo, Pts: [3]Vec2{{x, y}}})
}

// QuadTo adds a quadratic Bézier segment.
func (p *Path) QuadTo(cx, cy, x, y float64) *Path {
	return p.push(PathCommand{Op: PathQuadTo, Pts: [3]Vec2{{cx, cy}, {x, y}}})
}

// CubicTo adds a cubic Bézier segment.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	return p.push(PathCommand{Op: PathCubicTo, Pts: [3]Vec2{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	return p.push(PathCommand{Op: PathClose})
}

// Reset removes every command.
func (p *Path) Reset() {
	p.cmds = p.cmds[:0]
	p.version++
}

// Commands returns the command list. The returned slice MUST NOT be mutated.
func (p *Path) Commands() []PathCommand {
	return p.cmds
}

// Version changes whenever a command is added or the path is reset.
func (p *Path) Version() uint64 {
	return p.version
}

// flatten converts curves into line runs, each curve split into segments
// pieces. The result is cached until the path changes.
func (p *Path) flatten(segments int) []subpath {
	if p.flat != nil && p.flatVersion == p.version && p.flatSegments == segments {
		return p.flat
	}
	p.flat = p.flat[:0]
	var cur *subpath
	var pen, start Vec2
	begin := func(at Vec2) {
		p.flat = append(p.flat, subpath{pts: []Vec2{at}})
		cur = &p.flat[len(p.flat)-1]
		start = at
	}
	for _, c := range p.cmds {
		switch c.Op {
		case PathMoveTo:
			begin(c.Pts[0])
			pen = c.Pts[0]
		case PathLineTo:
			if cur == nil {
				begin(pen)
			}
			cur.pts = append(cur.pts, c.Pts[0])
			pen = c.Pts[0]
		case PathQuadTo:
			if cur == nil {
				begin(pen)
			}
			p0, p1, p2 := pen, c.Pts[0], c.Pts[1]
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				u := 1 - t
				cur.pts = append(cur.pts, Vec2{
					X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
					Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
				})
			}
			pen = p2
		case PathCubicTo:
			if cur == nil {
				begin(pen)
			}
			p0, p1, p2, p3 := pen, c.Pts[0], c.Pts[1], c.Pts[2]
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				u := 1 - t
				cur.pts = append(cur.pts, Vec2{
					X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
					Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
				})
			}
			pen = p3
		case PathClose:
			if cur != nil {
				if n := len(cur.pts); n > 1 && cur.pts[n-1] == start {
					cur.pts = cur.pts[:n-1]
				}
				cur.closed = true
				cur = nil
			}
			pen = start
		}
	}
	p.flatVersion = p.version
	p.flatSegments = segments
	return p.flat
}

// pathBounds returns the bounds of the flattened path.
func pathBounds(p *Path, segments int) Rect {
	var (
		r     Rect
		first = true
	)
	for _, sp := range p.flatten(segments) {
		b := rectFromPoints(sp.pts)
		if len(sp.pts) == 0 {
			continue
		}
		if first {
			r, first = b, false
			continue
		}
		r = r.Union(b)
	}
	return r
}
