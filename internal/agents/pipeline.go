package agents

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

// IterationStore is the slice of the project store the pipeline needs.
type IterationStore interface {
	ProjectStatus(ctx context.Context, projectID uuid.UUID) (string, error)
	RecordIteration(ctx context.Context, projectID uuid.UUID, refined, plan, notes json.RawMessage, files models.FileSet) (int, error)
}

// EventPublisher emits generation lifecycle events. Publishing is
// best-effort and never fails a batch.
type EventPublisher interface {
	PublishProjectEvent(projectID uuid.UUID, event string, payload map[string]interface{}) error
}

// BatchResult is the outcome of one generate-review-refactor batch.
type BatchResult struct {
	Files           models.FileSet
	Review          models.ReviewReport
	RefactorMessage string
	IterationNumber int
}

// Pipeline orchestrates a full generation batch. Generation, review and
// refactoring are pure computation; only RecordIteration mutates state, in
// one transaction.
type Pipeline struct {
	generator  *SystemGenerator
	reviewer   *Reviewer
	refactorer *Refactorer
	access     *access.Controller
	store      IterationStore
	events     EventPublisher
	log        *zap.Logger
}

func NewPipeline(
	generator *SystemGenerator,
	reviewer *Reviewer,
	refactorer *Refactorer,
	accessCtl *access.Controller,
	store IterationStore,
	events EventPublisher,
	log *zap.Logger,
) *Pipeline {
	return &Pipeline{
		generator:  generator,
		reviewer:   reviewer,
		refactorer: refactorer,
		access:     accessCtl,
		store:      store,
		events:     events,
		log:        log,
	}
}

// RunGenerationBatch executes generate -> review -> refactor and persists
// exactly one new iteration. Generate and review failures abort with no
// state change; a refactor failure falls back to the reviewed file set and
// the fallback is recorded in the persisted review notes.
func (p *Pipeline) RunGenerationBatch(ctx context.Context, projectID, userID uuid.UUID, plan *models.Plan, spec *models.RefinedSpec) (*BatchResult, error) {
	if _, err := p.access.RequireRole(ctx, projectID, userID, access.RoleEditor); err != nil {
		return nil, err
	}

	status, err := p.store.ProjectStatus(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if status == models.StatusArchived {
		return nil, apperr.New(apperr.KindValidation, "project is archived")
	}

	p.publish(projectID, "generation_started", map[string]interface{}{
		"project_id": projectID.String(),
		"status":     "generating",
	})

	files, err := p.generator.Generate(ctx, plan, spec)
	if err != nil {
		p.publishFailed(projectID, err)
		return nil, &apperr.PipelineError{Stage: "generate", Err: err}
	}

	review, err := p.reviewer.Review(ctx, files)
	if err != nil {
		// An unreviewed system is incomplete output; nothing persists.
		p.publishFailed(projectID, err)
		return nil, &apperr.PipelineError{Stage: "review", Err: err}
	}

	notes := models.ReviewNotes{Review: *review}
	final, message, err := p.refactorer.Refactor(ctx, files, review)
	if err != nil {
		// Refactoring is an enhancement, not a correctness gate.
		p.log.Warn("refactor stage failed, keeping reviewed file set",
			zap.String("project_id", projectID.String()), zap.Error(err))
		final = files
		message = "refactoring failed, reviewed output kept unchanged"
		notes.RefactorSkipped = true
	}
	notes.RefactorMessage = message

	refinedJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "refined specification is not serializable", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "plan is not serializable", err)
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "review notes are not serializable", err)
	}

	iterationNumber, err := p.store.RecordIteration(ctx, projectID, refinedJSON, planJSON, notesJSON, final)
	if err != nil {
		p.publishFailed(projectID, err)
		return nil, err
	}

	p.publish(projectID, "generation_completed", map[string]interface{}{
		"project_id":       projectID.String(),
		"status":           models.StatusGenerated,
		"iteration_number": iterationNumber,
		"file_count":       len(final),
	})

	p.log.Info("generation batch recorded",
		zap.String("project_id", projectID.String()),
		zap.Int("iteration_number", iterationNumber),
		zap.Int("file_count", len(final)),
		zap.Int("review_score", review.OverallScore))

	return &BatchResult{
		Files:           final,
		Review:          *review,
		RefactorMessage: message,
		IterationNumber: iterationNumber,
	}, nil
}

func (p *Pipeline) publish(projectID uuid.UUID, event string, payload map[string]interface{}) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishProjectEvent(projectID, event, payload); err != nil {
		p.log.Debug("event publish failed", zap.String("event", event), zap.Error(err))
	}
}

func (p *Pipeline) publishFailed(projectID uuid.UUID, cause error) {
	p.publish(projectID, "generation_failed", map[string]interface{}{
		"project_id": projectID.String(),
		"status":     "failed",
		"error":      apperr.Message(cause),
	})
}
