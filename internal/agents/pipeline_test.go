package agents_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

type recordedIteration struct {
	refined json.RawMessage
	plan    json.RawMessage
	notes   json.RawMessage
	files   models.FileSet
}

type fakeStore struct {
	status     string
	iterations []recordedIteration
}

func (s *fakeStore) ProjectStatus(ctx context.Context, projectID uuid.UUID) (string, error) {
	return s.status, nil
}

func (s *fakeStore) RecordIteration(ctx context.Context, projectID uuid.UUID, refined, plan, notes json.RawMessage, files models.FileSet) (int, error) {
	s.iterations = append(s.iterations, recordedIteration{
		refined: refined, plan: plan, notes: notes, files: files.Clone(),
	})
	return len(s.iterations), nil
}

type fakeResolver struct {
	roles map[uuid.UUID]access.Role
}

func (r *fakeResolver) ResolveRole(ctx context.Context, projectID, userID uuid.UUID) (access.Role, error) {
	return r.roles[userID], nil
}

type fakeEvents struct {
	events []string
}

func (e *fakeEvents) PublishProjectEvent(projectID uuid.UUID, event string, payload map[string]interface{}) error {
	e.events = append(e.events, event)
	return nil
}

const cleanReview = `{"overall_score": 95, "security_issues": [], "quality_issues": [], "deployment_ready": true, "summary": "solid"}`

func newPipeline(gen *fakeGenerator, store *fakeStore, resolver *fakeResolver, events *fakeEvents) *agents.Pipeline {
	log := zap.NewNop()
	extractor := agents.NewExtractor(gen, log)
	return agents.NewPipeline(
		agents.NewSystemGenerator(gen, 1048576, log),
		agents.NewReviewer(extractor),
		agents.NewRefactorer(gen, 1048576, log),
		access.NewController(resolver),
		store,
		events,
		log,
	)
}

func editorSetup() (uuid.UUID, uuid.UUID, *fakeResolver) {
	projectID := uuid.New()
	userID := uuid.New()
	return projectID, userID, &fakeResolver{roles: map[uuid.UUID]access.Role{userID: access.RoleEditor}}
}

func TestRunGenerationBatchAssignsSequentialIterations(t *testing.T) {
	projectID, userID, resolver := editorSetup()
	store := &fakeStore{status: models.StatusDraft}
	events := &fakeEvents{}

	// Two batches: generate x2, review x1 each; score 95 skips refactoring.
	gen := &fakeGenerator{responses: []string{
		"print('v1')", "<html>v1</html>", cleanReview,
		"print('v2')", "<html>v2</html>", cleanReview,
	}}
	pipeline := newPipeline(gen, store, resolver, events)

	first, err := pipeline.RunGenerationBatch(context.Background(), projectID, userID, testPlan(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, 1, first.IterationNumber)

	second, err := pipeline.RunGenerationBatch(context.Background(), projectID, userID, testPlan(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, 2, second.IterationNumber)

	require.Len(t, store.iterations, 2)
	assert.Equal(t, "print('v2')", store.iterations[1].files["app.py"])
	assert.Equal(t, []string{
		"generation_started", "generation_completed",
		"generation_started", "generation_completed",
	}, events.events)
}

func TestRunGenerationBatchReviewFailurePersistsNothing(t *testing.T) {
	projectID, userID, resolver := editorSetup()
	store := &fakeStore{status: models.StatusDraft}
	events := &fakeEvents{}

	// Both review attempts return unparsable output.
	gen := &fakeGenerator{responses: []string{
		"print('v1')", "<html>v1</html>", "not json", "still not json",
	}}
	pipeline := newPipeline(gen, store, resolver, events)

	_, err := pipeline.RunGenerationBatch(context.Background(), projectID, userID, testPlan(), testSpec())
	require.Error(t, err)

	var pe *apperr.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "review", pe.Stage)
	assert.Empty(t, store.iterations)
	assert.Contains(t, events.events, "generation_failed")
}

func TestRunGenerationBatchRefactorFailureFallsBack(t *testing.T) {
	projectID, userID, resolver := editorSetup()
	store := &fakeStore{status: models.StatusDraft}

	lowReview := `{"overall_score": 50, "security_issues": ["no auth"], "quality_issues": [], "deployment_ready": false}`
	// Refactored output blows the size ceiling, failing the refactor stage.
	oversize := strings.Repeat("x", 1048577)
	gen := &fakeGenerator{responses: []string{
		"print('v1')", "<html>v1</html>", lowReview, oversize, oversize,
	}}
	pipeline := newPipeline(gen, store, resolver, &fakeEvents{})

	result, err := pipeline.RunGenerationBatch(context.Background(), projectID, userID, testPlan(), testSpec())
	require.NoError(t, err)

	assert.Equal(t, "print('v1')", result.Files["app.py"])
	assert.Equal(t, "refactoring failed, reviewed output kept unchanged", result.RefactorMessage)

	require.Len(t, store.iterations, 1)
	var notes models.ReviewNotes
	require.NoError(t, json.Unmarshal(store.iterations[0].notes, &notes))
	assert.True(t, notes.RefactorSkipped)
	assert.Equal(t, 50, notes.Review.OverallScore)
}

func TestRunGenerationBatchViewerIsForbidden(t *testing.T) {
	projectID := uuid.New()
	viewer := uuid.New()
	resolver := &fakeResolver{roles: map[uuid.UUID]access.Role{viewer: access.RoleViewer}}
	store := &fakeStore{status: models.StatusDraft}
	gen := &fakeGenerator{}
	pipeline := newPipeline(gen, store, resolver, &fakeEvents{})

	_, err := pipeline.RunGenerationBatch(context.Background(), projectID, viewer, testPlan(), testSpec())
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, store.iterations)
}

func TestRunGenerationBatchStrangerGetsNotFound(t *testing.T) {
	projectID, _, _ := editorSetup()
	stranger := uuid.New()
	resolver := &fakeResolver{roles: map[uuid.UUID]access.Role{}}
	store := &fakeStore{status: models.StatusDraft}
	pipeline := newPipeline(&fakeGenerator{}, store, resolver, &fakeEvents{})

	_, err := pipeline.RunGenerationBatch(context.Background(), projectID, stranger, testPlan(), testSpec())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRunGenerationBatchArchivedProjectRejected(t *testing.T) {
	projectID, userID, resolver := editorSetup()
	store := &fakeStore{status: models.StatusArchived}
	gen := &fakeGenerator{}
	pipeline := newPipeline(gen, store, resolver, &fakeEvents{})

	_, err := pipeline.RunGenerationBatch(context.Background(), projectID, userID, testPlan(), testSpec())
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}
