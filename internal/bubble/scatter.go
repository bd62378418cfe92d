package bubble

import "math"

// goldenAngle is the golden-section azimuth increment, pi*(3-sqrt(5)).
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// SpherePoint returns the i-th of n points of a Fibonacci lattice on the
// unit sphere. Purely index-based, so a batch scatters identically across
// rebuilds.
func SpherePoint(i, n int) (x, y, z float64) {
	if n <= 0 {
		return 0, 0, 1
	}
	polar := math.Acos(2*(float64(i)+0.5)/float64(n) - 1)
	azimuth := goldenAngle * float64(i)
	s := math.Sin(polar)
	return s * math.Cos(azimuth), s * math.Sin(azimuth), math.Cos(polar)
}

// SpiralPoint returns the i-th of n points of a golden-angle spiral inside
// the unit disk. Renderers fall back to it for nodes that have no 2D layout
// state yet.
func SpiralPoint(i, n int) (x, y float64) {
	if n <= 0 {
		return 0, 0
	}
	r := math.Sqrt((float64(i) + 0.5) / float64(n))
	theta := goldenAngle * float64(i)
	return r * math.Cos(theta), r * math.Sin(theta)
}
