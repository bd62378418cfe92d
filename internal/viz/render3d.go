package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

// Camera manages 3D projection onto the canvas sub-pixel plane.
type Camera struct {
	Position         Vec3
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

// NewCamera sits the eye a few shell radii back so a unit sphere fills most
// of the vertical extent at zoom 1.
func NewCamera() *Camera {
	return &Camera{Position: Vec3{0, 0, 4}, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(8, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.25, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts world coordinates to canvas sub-pixel coordinates.
// Returns x, y, camera-space depth, and whether the point is on screen.
// Depth grows toward the viewer; callers sort ascending for painter order.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	dist := c.Position.Z
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
}

// Wireframe is a bag of edges in world space.
type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe         { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Clear()            { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe to the canvas using a simple painter's
// algorithm: farthest edges first, nearer ones drawn over them.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// Marker is a dot on the shell with a relative size in [0,1].
type Marker struct {
	Pos  Vec3
	Size float64
}

// RenderMarkers projects markers and draws them as filled disks, far to
// near, so closer markers overdraw farther ones. Marker size shrinks with
// distance through the same perspective term the projection uses, and
// positions are renormalized onto the unit shell.
func RenderMarkers(c *Canvas, markers []Marker, cam *Camera) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	type projected struct {
		x, y  int
		r     int
		depth float64
	}
	proj := make([]projected, 0, len(markers))
	for _, m := range markers {
		x, y, d, vis := cam.Project(m.Pos.Normalize(), sw, sh)
		if !vis {
			continue
		}
		persp := cam.Position.Z / (cam.Position.Z - d)
		r := int(math.Round((1 + m.Size*3) * persp))
		if r < 1 {
			r = 1
		}
		proj = append(proj, projected{x, y, r, d})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, p := range proj {
		c.FillCircle(p.x, p.y, p.r)
	}
}

// SphereShell builds latitude rings and meridians for a sphere of the given
// radius. It gives the scatter view its depth cue without crowding the
// markers.
func SphereShell(radius float64, rings, meridians, segments int) *Wireframe {
	w := NewWireframe()
	if segments < 3 {
		segments = 3
	}
	for i := 1; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings+1)
		y := math.Cos(phi)
		r := math.Sin(phi)
		for s := 0; s < segments; s++ {
			a1 := 2 * math.Pi * float64(s) / float64(segments)
			a2 := 2 * math.Pi * float64(s+1) / float64(segments)
			p1 := Vec3{r * math.Cos(a1), y, r * math.Sin(a1)}.Scale(radius)
			p2 := Vec3{r * math.Cos(a2), y, r * math.Sin(a2)}.Scale(radius)
			w.AddEdge(p1, p2)
		}
	}
	for m := 0; m < meridians; m++ {
		theta := math.Pi * float64(m) / float64(meridians)
		for s := 0; s < segments; s++ {
			a1 := 2 * math.Pi * float64(s) / float64(segments)
			a2 := 2 * math.Pi * float64(s+1) / float64(segments)
			p1 := Vec3{math.Sin(a1) * math.Cos(theta), math.Cos(a1), math.Sin(a1) * math.Sin(theta)}.Scale(radius)
			p2 := Vec3{math.Sin(a2) * math.Cos(theta), math.Cos(a2), math.Sin(a2) * math.Sin(theta)}.Scale(radius)
			w.AddEdge(p1, p2)
		}
	}
	return w
}
