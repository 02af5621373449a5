package eventstore

import "time"

// Event is one persisted pipeline event. Seq is assigned by the store on
// append and defines the total order across all generations.
type Event struct {
	Seq          int64
	GenerationID string
	Type         string
	RecordedAt   time.Time
	Payload      []byte
	Metadata     map[string]string
}
