package viz

import "testing"

func TestProjectOriginCenters(t *testing.T) {
	cam := NewCamera()
	c := NewCanvas(80, 24)
	sw, sh := c.Width*2, c.Height*4

	x, y, _, vis := cam.Project(Vec3{}, sw, sh)
	if !vis {
		t.Fatal("origin should be visible")
	}
	if x != sw/2 || y != sh/2 {
		t.Errorf("origin projected to (%d,%d), want (%d,%d)", x, y, sw/2, sh/2)
	}
}

func TestProjectBehindEyeInvisible(t *testing.T) {
	cam := NewCamera()
	if _, _, _, vis := cam.Project(Vec3{Z: cam.Position.Z}, 160, 96); vis {
		t.Error("point at the eye should not be visible")
	}
}

func TestZoomClamps(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom > 8 {
		t.Errorf("zoom exceeded cap: %f", cam.Zoom)
	}
	for i := 0; i < 50; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.25 {
		t.Errorf("zoom below floor: %f", cam.Zoom)
	}
}

func TestRenderMarkersDraws(t *testing.T) {
	c := NewCanvas(80, 24)
	cam := NewCamera()
	RenderMarkers(c, []Marker{{Pos: Vec3{0, 0, 1}, Size: 0.5}}, cam)

	set := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				set++
			}
		}
	}
	if set == 0 {
		t.Error("marker drew nothing")
	}
}

func TestSphereShellEdgeCount(t *testing.T) {
	w := SphereShell(1.0, 3, 4, 24)
	want := 3*24 + 4*24
	if len(w.Edges) != want {
		t.Errorf("expected %d edges, got %d", want, len(w.Edges))
	}
}
