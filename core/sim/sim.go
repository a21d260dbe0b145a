// Package sim holds the authoritative kinematic state of the bouncing nodes.
package sim

import (
	"math"
	"time"

	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
	"github.com/ingyamilmolinar/polyrhythm/internal/utils"
)

// K converts speed units into normalized field units per millisecond. A node
// with speed 1 travels the full height in one second.
const K = 0.001

// Edge names the boundary a node reflected off.
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
)

func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// Node is one bouncing element. Position 0 is the bottom of the field and 1
// the top; Velocity is a direction sign, always +1 or -1.
type Node struct {
	Position float64
	Velocity float64
	Speed    float64
}

// BoundaryEvent is emitted when a node reflects during Advance.
type BoundaryEvent struct {
	Index int
	Edge  Edge
}

// SpeedFunc returns the speed of node i.
type SpeedFunc func(i int) float64

type Simulation struct {
	nodes     []Node
	initial   []Node
	advancing bool
	log       *game_log.Logger
}

func New(logger *game_log.Logger) *Simulation {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Simulation{log: logger}
}

// Initialize discards any previous nodes and creates count fresh ones at the
// middle of the field moving up.
func (s *Simulation) Initialize(count int, speed SpeedFunc) {
	if count < 0 {
		count = 0
	}
	s.nodes = make([]Node, count)
	for i := range s.nodes {
		s.nodes[i] = Node{Position: 0.5, Velocity: 1, Speed: speed(i)}
	}
	s.initial = make([]Node, count)
	copy(s.initial, s.nodes)
	s.log.Debugf("[SIM] initialized %d nodes", count)
}

// Resize is Initialize under another name; node identity does not survive a
// count change.
func (s *Simulation) Resize(count int, speed SpeedFunc) {
	s.Initialize(count, speed)
}

// Reset restores position and velocity from the initial snapshot and takes
// speed from the current settings.
func (s *Simulation) Reset(speed SpeedFunc) {
	s.nodes = make([]Node, len(s.initial))
	for i, n := range s.initial {
		n.Speed = speed(i)
		s.nodes[i] = n
	}
	s.log.Debugf("[SIM] reset %d nodes", len(s.nodes))
}

// SetSpeeds recomputes every node's speed without touching its position.
func (s *Simulation) SetSpeeds(speed SpeedFunc) {
	for i := range s.nodes {
		s.nodes[i].Speed = speed(i)
	}
}

// Len returns the node count.
func (s *Simulation) Len() int { return len(s.nodes) }

// Nodes returns a copy of the current node state.
func (s *Simulation) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Initial returns a copy of the snapshot Reset restores from.
func (s *Simulation) Initial() []Node {
	out := make([]Node, len(s.initial))
	copy(out, s.initial)
	return out
}

// Advance moves every node by one Euler step of dt and returns the
// reflections in index order. Non-positive dt moves nothing. A nested call
// made while Advance is running is ignored.
func (s *Simulation) Advance(dt time.Duration) []BoundaryEvent {
	events, _ := s.Step(dt)
	return events
}

// Step is Advance that also reports the largest displacement any node made.
func (s *Simulation) Step(dt time.Duration) ([]BoundaryEvent, float64) {
	if s.advancing {
		s.log.Warnf("[SIM] nested advance ignored")
		return nil, 0
	}
	if dt <= 0 {
		return nil, 0
	}
	s.advancing = true
	defer func() { s.advancing = false }()

	dtMs := float64(dt) / float64(time.Millisecond)
	var events []BoundaryEvent
	var moved float64
	for i := range s.nodes {
		n := &s.nodes[i]
		prev := n.Position
		p := n.Position + n.Velocity*n.Speed*dtMs*K

		switch {
		case p >= 1:
			n.Position = utils.Clamp01(1 - (p - 1))
			n.Velocity = -1
			events = append(events, BoundaryEvent{Index: i, Edge: EdgeTop})
		case p <= 0:
			n.Position = utils.Clamp01(math.Abs(p))
			n.Velocity = 1
			events = append(events, BoundaryEvent{Index: i, Edge: EdgeBottom})
		default:
			n.Position = p
		}

		if d := math.Abs(n.Position - prev); d > moved {
			moved = d
		}
	}
	if moved == 0 && len(events) > 0 {
		// a reflection landing on the old position still changed direction
		moved = 1
	}
	return events, moved
}
