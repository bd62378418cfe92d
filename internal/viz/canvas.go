package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot-matrix backed by a rune grid. One terminal cell
// holds a 2x4 dot block, so the drawable area is (Width*2) x (Height*4)
// sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// cell maps a sub-pixel coordinate to its grid cell and dot bit. ok is false
// when the coordinate is off-canvas.
func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set turns on the dot at sub-pixel (x, y). Off-canvas coordinates are
// ignored so callers can draw shapes that spill over the edge.
func (c *Canvas) Set(x, y int) {
	row, col, bit, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= bit
}

// Unset turns off the dot at sub-pixel (x, y).
func (c *Canvas) Unset(x, y int) {
	row, col, bit, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &= ^bit
	if c.Grid[row][col] < 0x2800 {
		c.Grid[row][col] = 0x2800
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline using the midpoint algorithm.
// Radius 0 degenerates to a single dot.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r < 0 {
		return
	}
	if r == 0 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		c.Set(cx+x, cy+y)
		c.Set(cx-x, cy+y)
		c.Set(cx+x, cy-y)
		c.Set(cx-x, cy-y)
		c.Set(cx+y, cy+x)
		c.Set(cx-y, cy+x)
		c.Set(cx+y, cy-x)
		c.Set(cx-y, cy-x)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// FillCircle fills a disk by horizontal spans. Used for bubbles that should
// read as solid against the outlined ones.
func (c *Canvas) FillCircle(cx, cy, r int) {
	if r < 0 {
		return
	}
	for dy := -r; dy <= r; dy++ {
		span := isqrt(r*r - dy*dy)
		for dx := -span; dx <= span; dx++ {
			c.Set(cx+dx, cy+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// isqrt is the integer square root, rounded down.
func isqrt(v int) int {
	if v <= 0 {
		return 0
	}
	x := v
	for y := (x + 1) / 2; y < x; {
		x = y
		y = (x + v/x) / 2
	}
	return x
}
