package websocket

import (
	"encoding/json"

	"github.com/stemsi/lms-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client message shape; monitors are read-only.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventResult   Event = "result"
	EventPong     Event = "pong"
)

// SnapshotResponse is sent once after connecting with the current quiz statistics.
type SnapshotResponse struct {
	Event Event            `json:"event"`
	Stats *model.QuizStats `json:"stats"`
}

// ResultResponse forwards a published SubmissionEvent without re-encoding it.
type ResultResponse struct {
	Event  Event           `json:"event"`
	Result json.RawMessage `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
