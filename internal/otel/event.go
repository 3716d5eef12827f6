// Package otel provides the structured event log for bestcombo.
//
// Events are typed structs serialized as JSONL lines. The Logger writes them
// asynchronously through a buffered channel drained by one goroutine. An
// optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Suggestion loop
	KindSuggestSchedule EventKind = "suggest.schedule"
	KindSuggestRequest  EventKind = "suggest.request"
	KindSuggestResult   EventKind = "suggest.result"
	KindSuggestStale    EventKind = "suggest.stale"
	KindSuggestError    EventKind = "suggest.error"

	// Selection + mirror
	KindSelectionAdd    EventKind = "selection.add"
	KindSelectionRemove EventKind = "selection.remove"
	KindMirrorSent      EventKind = "mirror.sent"
	KindMirrorAck       EventKind = "mirror.ack"
	KindMirrorStale     EventKind = "mirror.stale"
	KindMirrorError     EventKind = "mirror.error"

	// Poll chain
	KindPollStart    EventKind = "poll.start"
	KindPollAttempt  EventKind = "poll.attempt"
	KindPollReady    EventKind = "poll.ready"
	KindPollTimeout  EventKind = "poll.timeout"
	KindPollError    EventKind = "poll.error"
	KindPollCancel   EventKind = "poll.cancel"
	KindHistorySaved EventKind = "history.saved"

	// UI
	KindKeyPress EventKind = "ui.key"
	KindNotice   EventKind = "ui.notice"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace (BESTCOMBO_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "suggest", "selection", "poll", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the whole run
	ChainID   string         `json:"chain,omitempty"`      // poll chain or mirror generation
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Input     string         `json:"input,omitempty"`
	Items     []string       `json:"items,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
