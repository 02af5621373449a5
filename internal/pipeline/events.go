package pipeline

// Event is a domain event published by the orchestrator and consumed by handlers.
type Event interface {
	Name() string
	GenerationID() string
}

// Event names used in the generation pipeline.
const (
	EventGenerationReceived  = "GenerationReceived"
	EventBuildingStarted     = "BuildingStarted"
	EventStylingStarted      = "StylingStarted"
	EventSerializingStarted  = "SerializingStarted"
	EventGenerationPublished = "GenerationPublished"
	EventGenerationFailed    = "GenerationFailed"
)

// StageEvent carries one pipeline transition.
type StageEvent struct {
	Event      string `json:"event"`
	Generation string `json:"generation_id"`
	PlanID     string `json:"plan_id"`
	State      State  `json:"state"`
	// Error holds the failure message on GenerationFailed, empty otherwise.
	Error string `json:"error,omitempty"`
	// ArtifactID is set on GenerationPublished.
	ArtifactID string `json:"artifact_id,omitempty"`
}

func (e StageEvent) Name() string         { return e.Event }
func (e StageEvent) GenerationID() string { return e.Generation }

// allEventNames lists every event a generation run can emit, for
// subscribers that mirror the full stream.
var allEventNames = []string{
	EventGenerationReceived,
	EventBuildingStarted,
	EventStylingStarted,
	EventSerializingStarted,
	EventGenerationPublished,
	EventGenerationFailed,
}
