package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/sim"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
)

type op struct {
	kind string
	args []float64
	text string
	c    color.RGBA
}

type recorder struct {
	w, h float64
	ops  []op
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Clear(c color.RGBA)        { r.ops = append(r.ops, op{kind: "clear", c: c}) }
func (r *recorder) Line(x0, y0, x1, y1, w float64, c color.RGBA) {
	r.ops = append(r.ops, op{kind: "line", args: []float64{x0, y0, x1, y1, w}, c: c})
}
func (r *recorder) FillCircle(cx, cy, rad float64, c color.RGBA) {
	r.ops = append(r.ops, op{kind: "fill", args: []float64{cx, cy, rad}, c: c})
}
func (r *recorder) StrokeCircle(cx, cy, rad, w float64, c color.RGBA) {
	r.ops = append(r.ops, op{kind: "stroke", args: []float64{cx, cy, rad, w}, c: c})
}
func (r *recorder) LinearGradient(x, y, w, h float64, top, bottom color.RGBA) {
	r.ops = append(r.ops, op{kind: "linear", args: []float64{x, y, w, h}, c: top})
}
func (r *recorder) RadialGradient(cx, cy, rad float64, inner, outer color.RGBA) {
	r.ops = append(r.ops, op{kind: "radial", args: []float64{cx, cy, rad}, c: inner})
}
func (r *recorder) Text(x, y float64, s string, c color.RGBA) {
	r.ops = append(r.ops, op{kind: "text", args: []float64{x, y}, text: s, c: c})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func testFrame() Frame {
	s := model.Defaults()
	s.Rhythm.NodeCount = 4
	s = s.Clamped()
	return Frame{
		Now:     time.Unix(100, 0),
		Playing: true,
		BPM:     s.Rhythm.BPM(),
		Nodes: []sim.Node{
			{Position: 0, Velocity: 1, Speed: 1},
			{Position: 0.25, Velocity: 1, Speed: 1},
			{Position: 0.5, Velocity: -1, Speed: 1},
			{Position: 1, Velocity: -1, Speed: 1},
		},
		Configs:   s.Nodes,
		LastHit:   make([]time.Time, 4),
		MaxVoices: 16,
	}
}

func TestDrawUnavailableSurface(t *testing.T) {
	p := NewPass()
	if err := p.Draw(nil, testFrame()); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Fatalf("nil surface err = %v", err)
	}
	r := &recorder{w: 0, h: 100}
	if err := p.Draw(r, testFrame()); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Fatalf("zero width err = %v", err)
	}
	if len(r.ops) != 0 {
		t.Fatalf("drew %d ops on a zero-sized surface", len(r.ops))
	}
}

func TestNodesPlacedOnLanes(t *testing.T) {
	r := &recorder{w: 400, h: 316}
	f := testFrame()
	if err := NewPass().Draw(r, f); err != nil {
		t.Fatal(err)
	}
	l := NewLayout(400, 316, 16, 4)
	var fills []op
	for _, o := range r.ops {
		if o.kind == "fill" {
			fills = append(fills, o)
		}
	}
	if len(fills) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(fills))
	}
	for i, o := range fills {
		if o.args[0] != float64(i*100+50) {
			t.Fatalf("node %d x = %v", i, o.args[0])
		}
		if o.args[1] != l.NodeY(f.Nodes[i].Position) {
			t.Fatalf("node %d y = %v", i, o.args[1])
		}
	}
	if fills[0].args[1] <= fills[3].args[1] {
		t.Fatalf("bottom node drawn above top node")
	}
}

func TestLayoutKeepsNodesInside(t *testing.T) {
	l := NewLayout(300, 200, 16, 3)
	if top := l.NodeY(1) - l.Radius; top < 16 {
		t.Fatalf("top node overlaps status line: %v", top)
	}
	if bottom := l.NodeY(0) + l.Radius; bottom > 200 {
		t.Fatalf("bottom node clipped: %v", bottom)
	}
}

func TestGlowScalesWithActiveVoices(t *testing.T) {
	f := testFrame()
	f.Voices = []voice.Voice{
		{ID: 1, NodeIndex: 1, StartTime: f.Now.Add(-time.Second), Duration: 2 * time.Second, Volume: 1, Active: true},
		{ID: 2, NodeIndex: 2, StartTime: f.Now.Add(-time.Second), Duration: 2 * time.Second, Volume: 1, Active: true},
		{ID: 3, NodeIndex: 2, StartTime: f.Now.Add(-time.Second), Duration: 2 * time.Second, Volume: 1, Active: true},
		{ID: 4, NodeIndex: 3, StartTime: f.Now.Add(-time.Second), Duration: 2 * time.Second, Volume: 1, Active: false},
	}
	r := &recorder{w: 400, h: 300}
	if err := NewPass().Draw(r, f); err != nil {
		t.Fatal(err)
	}
	var radii []float64
	for _, o := range r.ops {
		if o.kind == "radial" {
			radii = append(radii, o.args[2])
		}
	}
	if len(radii) != 2 {
		t.Fatalf("expected glow for nodes 1 and 2 only, got %v", radii)
	}
	if radii[1] <= radii[0] {
		t.Fatalf("glow did not grow with voice count: %v", radii)
	}
}

func TestRippleExpandsAndFades(t *testing.T) {
	p := NewPass()
	base := testFrame()
	ripple := func(age time.Duration) (float64, uint8, bool) {
		f := base
		f.Voices = []voice.Voice{{ID: 1, NodeIndex: 0, StartTime: f.Now.Add(-age), Duration: time.Second, Volume: 1, Active: true}}
		r := &recorder{w: 400, h: 300}
		if err := p.Draw(r, f); err != nil {
			t.Fatal(err)
		}
		for _, o := range r.ops {
			if o.kind == "stroke" {
				return o.args[2], o.c.A, true
			}
		}
		return 0, 0, false
	}
	r1, a1, ok1 := ripple(50 * time.Millisecond)
	r2, a2, ok2 := ripple(400 * time.Millisecond)
	if !ok1 || !ok2 {
		t.Fatalf("ripple missing")
	}
	if r2 <= r1 || a2 >= a1 {
		t.Fatalf("ripple should expand and fade: r %v->%v a %v->%v", r1, r2, a1, a2)
	}
	if _, _, ok := ripple(p.RippleLife); ok {
		t.Fatalf("ripple still drawn after its life")
	}
}

func TestHitFlash(t *testing.T) {
	f := testFrame()
	f.LastHit[2] = f.Now.Add(-10 * time.Millisecond)
	r := &recorder{w: 400, h: 300}
	if err := NewPass().Draw(r, f); err != nil {
		t.Fatal(err)
	}
	if r.count("stroke") != 1 {
		t.Fatalf("expected one flash ring, got %d", r.count("stroke"))
	}

	f.LastHit[2] = f.Now.Add(-time.Second)
	r = &recorder{w: 400, h: 300}
	NewPass().Draw(r, f)
	if r.count("stroke") != 0 {
		t.Fatalf("stale hit still flashing")
	}
}

func TestDisabledNodeColor(t *testing.T) {
	f := testFrame()
	f.Configs[1].Enabled = false
	r := &recorder{w: 400, h: 300}
	NewPass().Draw(r, f)
	var fills []op
	for _, o := range r.ops {
		if o.kind == "fill" {
			fills = append(fills, o)
		}
	}
	if fills[1].c != DefaultTheme.NodeOff || fills[0].c != DefaultTheme.Node {
		t.Fatalf("unexpected node colors %v %v", fills[0].c, fills[1].c)
	}
}

func TestLabelsAndStatus(t *testing.T) {
	f := testFrame()
	f.Voices = []voice.Voice{{ID: 9, NodeIndex: 0, StartTime: f.Now, Duration: time.Second, Active: true}}
	r := &recorder{w: 400, h: 300}
	NewPass().Draw(r, f)
	var texts []string
	for _, o := range r.ops {
		if o.kind == "text" {
			texts = append(texts, o.text)
		}
	}
	want := []string{"C4", "D4", "E4", "F4"}
	if !reflect.DeepEqual(texts[:4], want) {
		t.Fatalf("labels = %v, want %v", texts[:4], want)
	}
	status := texts[len(texts)-1]
	if !strings.HasPrefix(status, "PLAYING") || !strings.Contains(status, "60 BPM") || !strings.Contains(status, "voices 1/16") {
		t.Fatalf("status = %q", status)
	}
	f.Playing = false
	if !strings.HasPrefix(StatusLine(f), "PAUSED") {
		t.Fatalf("paused status = %q", StatusLine(f))
	}
}

func TestDrawDeterministic(t *testing.T) {
	f := testFrame()
	f.Voices = []voice.Voice{{ID: 1, NodeIndex: 3, StartTime: f.Now.Add(-100 * time.Millisecond), Duration: time.Second, Volume: 0.5, Active: true}}
	f.LastHit[0] = f.Now.Add(-50 * time.Millisecond)
	a, b := &recorder{w: 640, h: 480}, &recorder{w: 640, h: 480}
	NewPass().Draw(a, f)
	NewPass().Draw(b, f)
	if !reflect.DeepEqual(a.ops, b.ops) {
		t.Fatalf("equal frames drew differently")
	}
	for _, o := range a.ops {
		for _, v := range o.args {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite coordinate in %s", fmt.Sprint(o))
			}
		}
	}
}
