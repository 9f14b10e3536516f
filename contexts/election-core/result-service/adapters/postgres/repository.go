package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type resultModel struct {
	ID                     string `gorm:"primaryKey;column:id"`
	CenterID               string `gorm:"column:center_id;index"`
	SubmittedBy            string `gorm:"column:submitted_by;index"`
	Votes                  []byte `gorm:"column:votes;type:jsonb"`
	InvalidVotes           int    `gorm:"column:invalid_votes"`
	TotalVotes             int    `gorm:"column:total_votes"`
	Status                 string `gorm:"column:status;index"`
	FlaggedReason          string `gorm:"column:flagged_reason"`
	DocumentMismatch       bool   `gorm:"column:document_mismatch"`
	DocumentMismatchReason string `gorm:"column:document_mismatch_reason"`
	Documents              []byte `gorm:"column:documents;type:jsonb"`
	Channel                string `gorm:"column:channel"`
	VerifiedBy             string `gorm:"column:verified_by"`
	VerifiedAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time `gorm:"column:updated_at;index"`
}

func (resultModel) TableName() string { return "results" }

type transitionModel struct {
	ID         string `gorm:"primaryKey;column:id"`
	ResultID   string `gorm:"column:result_id;index"`
	Action     string `gorm:"column:action"`
	FromStatus string `gorm:"column:from_status"`
	ToStatus   string `gorm:"column:to_status"`
	ActorID    string `gorm:"column:actor_id"`
	Comment    string `gorm:"column:comment"`
	OccurredAt time.Time
}

func (transitionModel) TableName() string { return "result_transitions" }

func (r *Repository) SaveResult(ctx context.Context, result entities.Result) error {
	row, err := resultModelFromEntity(result)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"votes":                    row.Votes,
			"invalid_votes":            row.InvalidVotes,
			"total_votes":              row.TotalVotes,
			"status":                   row.Status,
			"flagged_reason":           row.FlaggedReason,
			"document_mismatch":        row.DocumentMismatch,
			"document_mismatch_reason": row.DocumentMismatchReason,
			"documents":                row.Documents,
			"verified_by":              row.VerifiedBy,
			"verified_at":              row.VerifiedAt,
			"updated_at":               row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrInvalidSubmission
		}
		return r.logError("result_repo_save_failed", create.Error,
			"result_id", result.ResultID,
			"center_id", result.CenterID,
		)
	}
	return nil
}

func (r *Repository) GetResult(ctx context.Context, resultID string) (entities.Result, error) {
	var row resultModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(resultID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Result{}, domainerrors.ErrResultNotFound
		}
		return entities.Result{}, r.logError("result_repo_get_failed", err, "result_id", resultID)
	}
	return row.toEntity()
}

func (r *Repository) ListResults(ctx context.Context, filter ports.ResultFilter) ([]entities.Result, error) {
	query := r.db.WithContext(ctx).Model(&resultModel{}).Order("created_at desc")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CenterID != "" {
		query = query.Where("center_id = ?", filter.CenterID)
	}
	if filter.SubmittedBy != "" {
		query = query.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []resultModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("result_repo_list_failed", err)
	}
	return resultsFromModels(rows)
}

func (r *Repository) ListStale(ctx context.Context, cutoff time.Time) ([]entities.Result, error) {
	var rows []resultModel
	err := r.db.WithContext(ctx).
		Where("updated_at < ? AND status <> ?", cutoff, string(entities.StatusArchived)).
		Order("updated_at asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("result_repo_list_stale_failed", err)
	}
	return resultsFromModels(rows)
}

func (r *Repository) AppendTransition(ctx context.Context, transition entities.Transition) error {
	row := transitionModel{
		ID:         transition.TransitionID,
		ResultID:   transition.ResultID,
		Action:     string(transition.Action),
		FromStatus: string(transition.FromStatus),
		ToStatus:   string(transition.ToStatus),
		ActorID:    transition.ActorID,
		Comment:    transition.Comment,
		OccurredAt: transition.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("result_repo_append_transition_failed", err,
			"result_id", transition.ResultID,
		)
	}
	return nil
}

func (r *Repository) ListTransitions(ctx context.Context, resultID string) ([]entities.Transition, error) {
	var rows []transitionModel
	err := r.db.WithContext(ctx).
		Where("result_id = ?", strings.TrimSpace(resultID)).
		Order("occurred_at asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("result_repo_list_transitions_failed", err, "result_id", resultID)
	}
	items := make([]entities.Transition, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Transition{
			TransitionID: row.ID,
			ResultID:     row.ResultID,
			Action:       entities.Action(row.Action),
			FromStatus:   entities.Status(row.FromStatus),
			ToStatus:     entities.Status(row.ToStatus),
			ActorID:      row.ActorID,
			Comment:      row.Comment,
			OccurredAt:   row.OccurredAt,
		})
	}
	return items, nil
}

func resultModelFromEntity(result entities.Result) (resultModel, error) {
	votes, err := json.Marshal(result.Votes)
	if err != nil {
		return resultModel{}, err
	}
	documents, err := json.Marshal(result.Documents)
	if err != nil {
		return resultModel{}, err
	}
	return resultModel{
		ID:                     result.ResultID,
		CenterID:               result.CenterID,
		SubmittedBy:            result.SubmittedBy,
		Votes:                  votes,
		InvalidVotes:           result.InvalidVotes,
		TotalVotes:             result.TotalVotes,
		Status:                 string(result.Status),
		FlaggedReason:          result.FlaggedReason,
		DocumentMismatch:       result.DocumentMismatch,
		DocumentMismatchReason: result.DocumentMismatchReason,
		Documents:              documents,
		Channel:                string(result.Channel),
		VerifiedBy:             result.VerifiedBy,
		VerifiedAt:             result.VerifiedAt,
		CreatedAt:              result.CreatedAt,
		UpdatedAt:              result.UpdatedAt,
	}, nil
}

func (m resultModel) toEntity() (entities.Result, error) {
	var votes map[entities.Category]map[string]int
	if len(m.Votes) > 0 {
		if err := json.Unmarshal(m.Votes, &votes); err != nil {
			return entities.Result{}, err
		}
	}
	var documents []entities.DocumentRef
	if len(m.Documents) > 0 {
		if err := json.Unmarshal(m.Documents, &documents); err != nil {
			return entities.Result{}, err
		}
	}
	return entities.Result{
		ResultID:               m.ID,
		CenterID:               m.CenterID,
		SubmittedBy:            m.SubmittedBy,
		Votes:                  votes,
		InvalidVotes:           m.InvalidVotes,
		TotalVotes:             m.TotalVotes,
		Status:                 entities.Status(m.Status),
		FlaggedReason:          m.FlaggedReason,
		DocumentMismatch:       m.DocumentMismatch,
		DocumentMismatchReason: m.DocumentMismatchReason,
		Documents:              documents,
		Channel:                entities.Channel(m.Channel),
		VerifiedBy:             m.VerifiedBy,
		VerifiedAt:             m.VerifiedAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}, nil
}

func resultsFromModels(rows []resultModel) ([]entities.Result, error) {
	items := make([]entities.Result, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-core/result-service",
		"layer", "adapters/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("result repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
