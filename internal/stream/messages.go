package stream

import (
	"encoding/json"

	"github.com/san-kum/blobsim/internal/sim"
)

const (
	MsgDown     = "down"
	MsgMove     = "move"
	MsgUp       = "up"
	MsgReset    = "reset"
	MsgHello    = "hello"
	MsgSnapshot = "snapshot"
)

// PointerMessage is sent by clients. X and Y are pixels in a Width x Height
// viewport with Y down.
type PointerMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (m PointerMessage) Viewport() sim.Viewport {
	return sim.Viewport{Width: m.Width, Height: m.Height}
}

// HelloMessage is the first message a client receives.
type HelloMessage struct {
	Type    string    `json:"type"`
	Client  int       `json:"client"`
	Variant string    `json:"variant"`
	Shape   sim.Shape `json:"shape"`
	Bodies  int       `json:"bodies"`
	TickHz  int       `json:"tick_hz"`
}

// BodyMessage carries a body in texture space ([0,1], Y up) and in NDC.
type BodyMessage struct {
	U        float64 `json:"u"`
	V        float64 `json:"v"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Dragging bool    `json:"dragging,omitempty"`
}

type SnapshotMessage struct {
	Type           string        `json:"type"`
	Tick           int           `json:"tick"`
	Time           float64       `json:"time"`
	Bodies         []BodyMessage `json:"bodies"`
	CalmTimer      float64       `json:"calm_timer"`
	MergeKickArmed bool          `json:"merge_kick_armed"`
	UserInteracted bool          `json:"user_interacted"`
	Events         []string      `json:"events,omitempty"`
}

func newSnapshotMessage(snap sim.Snapshot, ev sim.Events) SnapshotMessage {
	bodies := make([]BodyMessage, len(snap.Bodies))
	for i, b := range snap.Bodies {
		uv := sim.ToTexture(b.Pos)
		bodies[i] = BodyMessage{U: uv[0], V: uv[1], X: b.Pos[0], Y: b.Pos[1], Dragging: b.Dragging}
	}
	msg := SnapshotMessage{
		Type:           MsgSnapshot,
		Tick:           snap.Tick,
		Time:           snap.Time,
		Bodies:         bodies,
		CalmTimer:      snap.CalmTimer,
		MergeKickArmed: snap.MergeKickArmed,
		UserInteracted: snap.UserInteracted,
	}
	if ev.Has(sim.EventMergeKick) {
		msg.Events = append(msg.Events, "merge_kick")
	}
	if ev.Has(sim.EventReset) {
		msg.Events = append(msg.Events, "reset")
	}
	if ev.Has(sim.EventConverged) {
		msg.Events = append(msg.Events, "converged")
	}
	return msg
}

func encode(v any) ([]byte, error) { return json.Marshal(v) }
