package export

import (
	"strings"
	"testing"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/viz"
)

func packedNode(id, symbol string, radius, x, y, change float64) *bubble.Node {
	return &bubble.Node{
		Instrument: market.Instrument{ID: id, Symbol: symbol, Change24h: change},
		Radius:     radius,
		Layout:     &bubble.LayoutState{X: x, Y: y, Scale: 1},
	}
}

func TestSceneToSVG(t *testing.T) {
	nodes := []*bubble.Node{
		packedNode("bitcoin", "btc", 40, 200, 200, 5.2),
		packedNode("tether", "usdt", 8, 500, 300, -3.1),
	}

	svg := SceneToSVG(nodes, 900, 700, market.TimeframeDay)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML declaration")
	}
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Error("not an svg document")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(svg, upFill) {
		t.Error("gainer not filled with the up color")
	}
	if !strings.Contains(svg, downFill) {
		t.Error("loser not filled with the down color")
	}
	if !strings.Contains(svg, ">BTC</text>") {
		t.Error("large bubble should carry its symbol label")
	}
	if strings.Contains(svg, "USDT") {
		t.Error("small bubble should not carry a label")
	}
}

func TestSceneToSVGSkipsBareNodes(t *testing.T) {
	nodes := []*bubble.Node{
		{Instrument: market.Instrument{ID: "bitcoin", Symbol: "btc"}, Radius: 40},
	}
	svg := SceneToSVG(nodes, 900, 700, market.TimeframeDay)
	if strings.Contains(svg, "<circle") {
		t.Error("unpacked node should not render")
	}
}

func TestSceneToSVGEscapesSymbols(t *testing.T) {
	nodes := []*bubble.Node{
		packedNode("weird", "a&b", 40, 200, 200, 1),
	}
	svg := SceneToSVG(nodes, 900, 700, market.TimeframeDay)
	if strings.Contains(svg, ">A&B<") {
		t.Error("symbol not escaped")
	}
	if !strings.Contains(svg, "A&amp;B") {
		t.Error("expected escaped ampersand")
	}
}

func TestChangeColorFlatBand(t *testing.T) {
	if changeColor(0.03) != flatFill || changeColor(-0.03) != flatFill {
		t.Error("small moves should read flat")
	}
	if changeColor(0.06) != upFill {
		t.Error("expected up color")
	}
	if changeColor(-0.06) != downFill {
		t.Error("expected down color")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should yield empty output")
	}

	c := viz.NewCanvas(10, 5)
	c.Set(3, 7)
	svg := CanvasToSVG(c, 4)
	if got := strings.Count(svg, "<circle"); got != 1 {
		t.Errorf("expected 1 dot, got %d", got)
	}
}

func TestTrailToSVG(t *testing.T) {
	if TrailToSVG([]Point{{X: 1, Y: 1}}, 400, 300, upFill) != "" {
		t.Error("a single point is not a trail")
	}

	svg := TrailToSVG([]Point{{100, 100}, {150, 140}, {200, 90}}, 400, 300, upFill)
	if !strings.Contains(svg, "<path") {
		t.Error("missing path element")
	}
	if !strings.Contains(svg, `stroke="`+upFill+`"`) {
		t.Error("missing stroke color")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments, got %d", strings.Count(svg, " L"))
	}
}
