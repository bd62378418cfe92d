package viz

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/scene"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
	refreshSeconds  = 3
)

type TickMsg time.Time

// Model drives the live bubble view: a scene stepped at the frame rate and
// drawn onto a braille canvas, with a stats panel beside it. Gainers render
// as solid disks, losers as outlines.
type Model struct {
	sc    *scene.Scene
	src   market.Source
	batch []market.Instrument

	fps           int
	dt            float64
	frame         int
	refreshFrames int
	t             float64

	canvas *Canvas
	camera *Camera
	shell  *Wireframe
	sphere bool

	running  bool
	showHelp bool

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	speedHist []float64
	coverHist []float64

	recording bool
	frames    []*image.Paletted

	srcErr error
}

// NewModel populates the scene with the batch and primes the first frame.
// src may be nil, in which case the batch never refreshes.
func NewModel(sc *scene.Scene, src market.Source, batch []market.Instrument, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	sc.SetBatch(batch)

	params := make(map[string]float64)
	initial := make(map[string]float64)
	for k, v := range sc.Stepper().GetParams() {
		params[k] = v
		initial[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := Model{
		sc:            sc,
		src:           src,
		batch:         batch,
		fps:           fps,
		dt:            1.0 / float64(fps),
		refreshFrames: fps * refreshSeconds,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		shell:         SphereShell(1.0, 3, 4, 24),
		running:       true,
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
		speedHist:     make([]float64, 0, historyCapacity),
		coverHist:     make([]float64, 0, historyCapacity),
	}
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the scene on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "m":
			m.cycleMode()
		case "f":
			m.cycleTimeframe()
		case "3":
			m.sphere = !m.sphere
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the physics and samples the metric histories.
func (m *Model) step() {
	m.sc.Step(m.dt)
	m.t += m.dt
	m.frame++

	if m.src != nil && m.refreshFrames > 0 && m.frame%m.refreshFrames == 0 {
		m.refreshBatch()
	}

	speed, cover := m.sample()
	m.speedHist = append(m.speedHist, speed)
	if len(m.speedHist) > historyCapacity {
		m.speedHist = m.speedHist[1:]
	}
	m.coverHist = append(m.coverHist, cover)
	if len(m.coverHist) > historyCapacity {
		m.coverHist = m.coverHist[1:]
	}
}

// refreshBatch pulls a fresh batch from the source. The scene rebuild keeps
// surviving instruments in place, so a refresh reads as bubbles resizing
// rather than the view reshuffling.
func (m *Model) refreshBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	batch, err := m.src.Instruments(ctx)
	if err != nil {
		m.srcErr = err
		return
	}
	m.srcErr = nil
	m.batch = batch
	m.sc.SetBatch(batch)
}

func (m *Model) sample() (avgSpeed, coverage float64) {
	w, h := m.sc.Viewport()
	var sum, area float64
	var count int
	for _, n := range m.sc.Nodes() {
		if n.Layout == nil {
			continue
		}
		sum += math.Hypot(n.Layout.VX, n.Layout.VY)
		r := n.ScaledRadius()
		area += math.Pi * r * r
		count++
	}
	if count > 0 {
		avgSpeed = sum / float64(count)
	}
	if w > 0 && h > 0 {
		coverage = area / (w * h)
	}
	return avgSpeed, coverage
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	m.params[key] = newVal
	m.sc.Stepper().SetParam(key, newVal)
}

func (m *Model) cycleMode() {
	cur := m.sc.Options().Mode
	for i, mode := range market.SizeModes {
		if mode == cur {
			m.sc.SetMode(market.SizeModes[(i+1)%len(market.SizeModes)])
			return
		}
	}
	m.sc.SetMode(market.SizeModes[0])
}

func (m *Model) cycleTimeframe() {
	cur := m.sc.Options().Timeframe
	for i, tf := range market.Timeframes {
		if tf == cur {
			m.sc.SetTimeframe(market.Timeframes[(i+1)%len(market.Timeframes)])
			return
		}
	}
	m.sc.SetTimeframe(market.Timeframes[0])
}

// reset rebuilds the scene from its original options, dropping all carried
// layout state, and restores the stock motion parameters.
func (m *Model) reset() {
	m.sc = scene.New(m.sc.Options())
	m.sc.SetBatch(m.batch)
	m.t = 0
	m.frame = 0
	m.speedHist = m.speedHist[:0]
	m.coverHist = m.coverHist[:0]
	for k, v := range m.initialParams {
		m.params[k] = v
		m.sc.Stepper().SetParam(k, v)
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.sphere {
		m.drawShell()
	} else {
		m.drawPack()
	}
}

func (m *Model) drawPack() {
	w, h := m.sc.Viewport()
	DrawPack(m.canvas, m.sc.Nodes(), w, h, m.sc.Options().Timeframe)
}

// DrawPack renders packed nodes onto the canvas, mapping viewport pixels
// onto the sub-pixel grid. Radii use the smaller axis scale so circles stay
// round on non-square terminals. Gainers fill, losers outline.
func DrawPack(c *Canvas, nodes []*bubble.Node, w, h float64, tf market.Timeframe) {
	if w <= 0 || h <= 0 {
		return
	}
	sx := float64(c.Width*2) / w
	sy := float64(c.Height*4) / h
	rs := math.Min(sx, sy)
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		cx := int(math.Round(n.Layout.X * sx))
		cy := int(math.Round(n.Layout.Y * sy))
		r := int(math.Round(n.ScaledRadius() * rs))
		if r < 1 {
			r = 1
		}
		if market.ChangePercent(n.Instrument, tf) >= 0 {
			c.FillCircle(cx, cy, r)
		} else {
			c.DrawCircle(cx, cy, r)
		}
	}
}

// drawShell renders the Fibonacci scatter on its unit sphere.
func (m *Model) drawShell() {
	// slow rotate unless the user has grabbed the camera
	if m.camera.RotX == 0 && m.camera.RotZ == 0 {
		m.camera.RotY += 0.004
	}
	Render3D(m.canvas, m.shell, m.camera)
	nodes := m.sc.Nodes()
	markers := make([]Marker, 0, len(nodes))
	for _, n := range nodes {
		markers = append(markers, Marker{Pos: Vec3{n.X, n.Y, n.Z}, Size: n.SizeFactor})
	}
	RenderMarkers(m.canvas, markers, m.camera)
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render("BUBBLESIM") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.recording {
		status += "  " + recordingStyle().Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.speedHist) > 1 {
		chart := asciigraph.Plot(m.speedHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("avg speed px/s"))
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	cover := 0.0
	if len(m.coverHist) > 0 {
		cover = m.coverHist[len(m.coverHist)-1]
	}
	s.WriteString(labelStyle().Render("Coverage") + Sparkline(m.coverHist, 24) + valueStyle().Render(fmt.Sprintf(" %4.1f%%", cover*100)) + "\n")
	s.WriteString(labelStyle().Render("Time") + valueStyle().Render(fmt.Sprintf("%.1fs", m.t)) + "\n")
	s.WriteString(labelStyle().Render("Bubbles") + valueStyle().Render(fmt.Sprintf("%d", len(m.sc.Nodes()))) + "\n")
	s.WriteString(labelStyle().Render("Mode") + valueStyle().Render(string(m.sc.Options().Mode)) + "\n")
	s.WriteString(labelStyle().Render("Window") + valueStyle().Render(string(m.sc.Options().Timeframe)) + "\n")
	view := "pack"
	if m.sphere {
		view = "sphere"
	}
	s.WriteString(labelStyle().Render("View") + valueStyle().Render(view) + "\n")
	if m.srcErr != nil {
		s.WriteString(labelStyle().Render("Source") + recordingStyle().Render("stale: "+m.srcErr.Error()) + "\n")
	}

	tf := m.sc.Options().Timeframe
	s.WriteString("\nMOVERS\n")
	for _, inst := range m.topMovers(3) {
		pct := market.ChangePercent(inst, tf)
		s.WriteString(fmt.Sprintf("  %-6s ", strings.ToUpper(inst.Symbol)) + ChangeStyle(pct).Render(fmt.Sprintf("%+7.2f%%", pct)) + "\n")
	}

	s.WriteString("\nMOTION\n")
	for i, k := range m.paramKeys {
		val := m.params[k]
		denom := 2 * m.initialParams[k]
		if denom == 0 {
			denom = 1
		}
		line := fmt.Sprintf("%-12s %s %.3f", k, bar(val/denom, 10), val)
		if i == m.selected {
			s.WriteString(activeStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + mutedStyle().Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle().Render("\n─────────────────────\nSP:Pause R:Repack Q:Quit\nM:Mode F:Window 3:Sphere\nT:Theme G:Record ?:Help"))
	statsView := panelStyle().Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay() + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) topMovers(n int) []market.Instrument {
	tf := m.sc.Options().Timeframe
	sorted := append([]market.Instrument(nil), m.batch...)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(market.ChangePercent(sorted[i], tf)) > math.Abs(market.ChangePercent(sorted[j], tf))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func helpOverlay() string {
	rows := [][2]string{
		{"Space", "Pause/Resume"},
		{"R", "Re-pack from scratch"},
		{"M", "Cycle size mode"},
		{"F", "Cycle change window"},
		{"3", "Toggle sphere view"},
		{"X/Y/Z", "Rotate camera (shift reverses)"},
		{"+/-", "Zoom camera"},
		{"Tab", "Cycle motion params"},
		{"Up/K", "Increase param (+5%)"},
		{"Down/J", "Decrease param (-5%)"},
		{"T", "Cycle themes"},
		{"G", "Toggle GIF recording"},
		{"?", "Toggle this help"},
		{"Q", "Quit"},
	}
	var b strings.Builder
	b.WriteString("╔═══════════════════════════════════════════╗\n")
	b.WriteString("║             KEYBOARD SHORTCUTS            ║\n")
	b.WriteString("╠═══════════════════════════════════════════╣\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("║  %-7s - %-30s ║\n", r[0], r[1]))
	}
	b.WriteString("╚═══════════════════════════════════════════╝")
	return b.String()
}

// captureFrame rasterizes the braille grid into a paletted image, one 8x16
// pixel block per cell.
func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	for y := 0; y < imgH; y++ {
		for x := 0; x < imgW; x++ {
			img.SetColorIndex(x, y, 0)
		}
	}
	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			r := m.canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			dotW, dotH := charW/2, charH/4
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	delay := 100 / m.fps
	if delay < 2 {
		delay = 2
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create("bubbles.gif")
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

// RunLive starts the live bubble view and blocks until the user quits.
func RunLive(sc *scene.Scene, src market.Source, batch []market.Instrument, fps int) error {
	p := tea.NewProgram(NewModel(sc, src, batch, fps))
	_, err := p.Run()
	return err
}
