// Package ui provides the Bubble Tea TUI for bestcombo.
package ui

import "github.com/adrior11/check24-best-combination-submission/internal/combo"

// SuggestionUpdated is sent when a suggestion request for Input completes.
type SuggestionUpdated struct {
	Input      string
	Suggestion string
	Err        error
}

// SelectionChanged is sent after an add or remove was applied.
type SelectionChanged struct {
	Items   []string
	Added   string // resolved value of an add, even when it was a duplicate
	Removed string
	Changed bool
	// SearchCancelled is set when the change stopped a running search.
	SearchCancelled bool
}

// MirrorAcked is sent when the newest mirror call returns.
type MirrorAcked struct {
	Generation uint64
	Status     combo.Status
	Err        error
}

// PollFinished is sent when a poll chain ends. Err is context.Canceled when
// a newer search superseded it.
type PollFinished struct {
	Items        []string
	Combinations []combo.Combination
	Err          error
}

// noticeExpired clears the notice of concern c if it is still generation seq.
type noticeExpired struct {
	concern concern
	seq     int
}
