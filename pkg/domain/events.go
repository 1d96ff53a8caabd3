package domain

import "context"

// TransitionEvent describes one advance of the state machine.
type TransitionEvent struct {
	SessionID string `json:"session_id"`
	From      Mode   `json:"from"`
	To        Mode   `json:"to"`
	MainID    string `json:"main_id,omitempty"`
	SubID     string `json:"sub_id,omitempty"`
}

// ExtractEvent describes a value written into memory by extraction.
type ExtractEvent struct {
	SessionID string `json:"session_id"`
	FieldID   string `json:"field_id"`
	Kind      Kind   `json:"kind"`
	Source string `json:"source"`
}

// Extraction sources reported in ExtractEvent.Source.
const (
	SourceMixed      = "mixed"
	SourceComposite  = "composite"
	SourceSub        = "sub"
	SourceEnrichment = "enrichment"
)

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnExtract    func(context.Context, *ExtractEvent)
	OnComplete   func(context.Context, *State)
}
