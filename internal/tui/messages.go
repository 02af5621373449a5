package tui

import (
	"github.com/SandraS2611/agrimensores-sde/internal/client"
)

// ProgressAdvanced carries an animation value in [0, 1] into the model.
type ProgressAdvanced struct {
	Value float64
}

// GenerationCompleted carries a published memoria back to the model.
type GenerationCompleted struct {
	Result *client.GenerateResult
}

// GenerationFailed signals that the generation request failed.
type GenerationFailed struct {
	Err error
}

// DownloadFinished signals that saving the artifact completed.
type DownloadFinished struct {
	Path  string
	Bytes int64
	Err   error
}

// Phase identifies the panel state.
type Phase int

const (
	// PhaseGenerating means a generation is in flight.
	PhaseGenerating Phase = iota
	// PhaseDone means the memoria is published and downloadable.
	PhaseDone
	// PhaseFailed means the generation errored out.
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseGenerating:
		return "generating"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
