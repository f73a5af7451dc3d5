package events

import (
	"encoding/json"
	"time"
)

const (
	TypeRunStarted  = "run_started"
	TypeRunFinished = "run_finished"
	TypeJobUpserted = "job_upserted"
)

// Event is the envelope published on the hub and streamed over SSE.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New stamps an event with the current time and marshals its payload.
func New(reqID, typ string, v int, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
}

// JSON renders the event for the wire.
func (e Event) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}
