package storage

import (
	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/sim"
)

var _ sim.Observer = (*Recorder)(nil)

// Recorder samples node motion during a headless run, keeping every Nth
// frame. Attach it to a runner, then pass Frames to Store.Save.
type Recorder struct {
	every  int
	frame  int
	frames []FrameRow
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(nodes []*bubble.Node, t float64) {
	keep := r.frame%r.every == 0
	r.frame++
	if !keep {
		return
	}
	for _, n := range nodes {
		st := n.Layout
		if st == nil {
			continue
		}
		r.frames = append(r.frames, FrameRow{
			Time: t,
			ID:   n.ID(),
			X:    st.X,
			Y:    st.Y,
			VX:   st.VX,
			VY:   st.VY,
		})
	}
}

// Frames returns everything recorded so far.
func (r *Recorder) Frames() []FrameRow { return r.frames }
