package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	appended []string
	err      error
}

func (r *recordingStore) Append(ctx context.Context, generationID, eventType string, payload []byte, metadata map[string]string) error {
	r.appended = append(r.appended, generationID+"/"+eventType)
	return r.err
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(EventBuildingStarted, func(e Event) error {
		got = append(got, e.GenerationID())
		return nil
	})

	require.NoError(t, bus.Publish(StageEvent{Event: EventBuildingStarted, Generation: "gen-1"}))
	require.NoError(t, bus.Publish(StageEvent{Event: EventStylingStarted, Generation: "gen-2"}))

	assert.Equal(t, []string{"gen-1"}, got)
}

func TestBusHandlerErrorPropagates(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(EventGenerationFailed, func(Event) error { return errors.New("boom") })

	err := bus.Publish(StageEvent{Event: EventGenerationFailed, Generation: "gen-1"})
	assert.EqualError(t, err, "boom")
}

func TestBusPersistsToEventStore(t *testing.T) {
	store := &recordingStore{}
	bus := NewBusWithEventStore(store)

	require.NoError(t, bus.Publish(StageEvent{Event: EventGenerationReceived, Generation: "gen-1"}))
	require.NoError(t, bus.Publish(StageEvent{Event: EventGenerationPublished, Generation: "gen-1"}))

	assert.Equal(t, []string{
		"gen-1/" + EventGenerationReceived,
		"gen-1/" + EventGenerationPublished,
	}, store.appended)
}

func TestBusSurvivesEventStoreFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("db locked")}
	bus := NewBusWithEventStore(store)

	delivered := false
	bus.Subscribe(EventGenerationReceived, func(Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, bus.Publish(StageEvent{Event: EventGenerationReceived, Generation: "gen-1"}))
	assert.True(t, delivered)
}

func TestSubscribeAllCoversEveryEvent(t *testing.T) {
	bus := NewBus()

	var seen []string
	bus.SubscribeAll(func(e Event) error {
		seen = append(seen, e.Name())
		return nil
	})

	for _, name := range allEventNames {
		require.NoError(t, bus.Publish(StageEvent{Event: name, Generation: "gen-1"}))
	}
	assert.Equal(t, allEventNames, seen)
}
