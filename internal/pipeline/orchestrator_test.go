package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

func sampleRecord() *survey.Record {
	return &survey.Record{
		Object:     "Mensura y División",
		Place:      "CARTAVIO",
		Department: "FIGUEROA",
		Date:       "16/02/2024",
		Owners: []survey.Owner{
			{Name: "Julian, Luis", NationalID: "07.203.770", TaxID: "20-07203770-8"},
		},
		ResultingLots: []survey.ResultingLot{
			{Label: "LOTE U-2", AreaHectares: "5", AreaAres: "43", AreaCentiares: "30.94"},
		},
	}
}

func TestGeneratePublishesArtifact(t *testing.T) {
	store := storage.NewMockStore()
	orch := NewOrchestrator(nil, store, nil)

	result, err := orch.Generate(context.Background(), "plan-1", sampleRecord())
	require.NoError(t, err)

	assert.NotEmpty(t, result.GenerationID)
	assert.NotEmpty(t, result.ArtifactID)
	assert.NotEmpty(t, result.TemplateVersion)
	assert.Contains(t, result.Preview, "MEMORIA DESCRIPTIVA")
	assert.Greater(t, result.Duration, time.Duration(0))

	artifact, err := store.Get(context.Background(), result.ArtifactID)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", artifact.Metadata.PlanID)
	assert.Equal(t, result.GenerationID, artifact.Metadata.GenerationID)
	assert.NotEmpty(t, artifact.Data)
}

func TestGenerateEmitsStageEvents(t *testing.T) {
	bus := NewBus()
	var names []string
	bus.SubscribeAll(func(e Event) error {
		names = append(names, e.Name())
		return nil
	})
	orch := NewOrchestrator(nil, storage.NewMockStore(), bus)

	_, err := orch.Generate(context.Background(), "plan-1", sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, []string{
		EventGenerationReceived,
		EventBuildingStarted,
		EventStylingStarted,
		EventSerializingStarted,
		EventGenerationPublished,
	}, names)
}

func TestGenerateStorageFailure(t *testing.T) {
	store := storage.NewMockStore()
	store.PutErr = derrors.StorageError("disk full").Build()

	bus := NewBus()
	var last Event
	bus.SubscribeAll(func(e Event) error {
		last = e
		return nil
	})
	orch := NewOrchestrator(nil, store, bus)

	_, err := orch.Generate(context.Background(), "plan-1", sampleRecord())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryStorage))

	require.NotNil(t, last)
	assert.Equal(t, EventGenerationFailed, last.Name())
}

func TestGenerateNilRecord(t *testing.T) {
	orch := NewOrchestrator(nil, storage.NewMockStore(), nil)

	_, err := orch.Generate(context.Background(), "plan-1", nil)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestGenerateCanceledContext(t *testing.T) {
	orch := NewOrchestrator(nil, storage.NewMockStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Generate(ctx, "plan-1", sampleRecord())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryBuild))
}

func TestGenerateFreshIDsPerRun(t *testing.T) {
	store := storage.NewMockStore()
	orch := NewOrchestrator(nil, store, nil)
	ctx := context.Background()

	first, err := orch.Generate(ctx, "plan-1", sampleRecord())
	require.NoError(t, err)
	second, err := orch.Generate(ctx, "plan-1", sampleRecord())
	require.NoError(t, err)

	assert.NotEqual(t, first.GenerationID, second.GenerationID)
	assert.NotEqual(t, first.ArtifactID, second.ArtifactID)

	ids, err := store.List(ctx, "plan-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestGenerateDeterministicArtifactBytes(t *testing.T) {
	store := storage.NewMockStore()
	orch := NewOrchestrator(nil, store, nil)
	ctx := context.Background()

	first, err := orch.Generate(ctx, "plan-1", sampleRecord())
	require.NoError(t, err)
	second, err := orch.Generate(ctx, "plan-1", sampleRecord())
	require.NoError(t, err)

	a, err := store.Get(ctx, first.ArtifactID)
	require.NoError(t, err)
	b, err := store.Get(ctx, second.ArtifactID)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}
