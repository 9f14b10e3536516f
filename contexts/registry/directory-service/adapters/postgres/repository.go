package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	"tallyroom/contexts/registry/directory-service/domain/entities"

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

type centerModel struct {
	ID               string `gorm:"primaryKey;column:id"`
	Code             string `gorm:"column:code;uniqueIndex"`
	Name             string `gorm:"column:name"`
	Constituency     string `gorm:"column:constituency"`
	Ward             string `gorm:"column:ward"`
	RegisteredVoters int    `gorm:"column:registered_voters"`
	Active           bool   `gorm:"column:active"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (centerModel) TableName() string { return "polling_centers" }

type candidateModel struct {
	ID           string `gorm:"primaryKey;column:id"`
	Name         string `gorm:"column:name"`
	Party        string `gorm:"column:party"`
	Category     string `gorm:"column:category;index"`
	Abbreviation string `gorm:"column:abbreviation"`
	Constituency string `gorm:"column:constituency;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (candidateModel) TableName() string { return "candidates" }

type agentModel struct {
	ID          string `gorm:"primaryKey;column:id"`
	PhoneNumber string `gorm:"column:phone_number;uniqueIndex"`
	FirstName   string `gorm:"column:first_name"`
	LastName    string `gorm:"column:last_name"`
	Role        string `gorm:"column:role"`
	Approved    bool   `gorm:"column:approved"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (agentModel) TableName() string { return "field_agents" }

func (r *Repository) SaveCenter(ctx context.Context, center entities.PollingCenter) error {
	row := centerModel{
		ID:               center.CenterID,
		Code:             center.Code,
		Name:             center.Name,
		Constituency:     center.Constituency,
		Ward:             center.Ward,
		RegisteredVoters: center.RegisteredVoters,
		Active:           center.Active,
		CreatedAt:        center.CreatedAt,
		UpdatedAt:        center.UpdatedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"code":              row.Code,
			"name":              row.Name,
			"constituency":      row.Constituency,
			"ward":              row.Ward,
			"registered_voters": row.RegisteredVoters,
			"active":            row.Active,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("directory_repo_save_center_failed", create.Error,
			"center_id", center.CenterID,
		)
	}
	return nil
}

func (r *Repository) GetCenter(ctx context.Context, centerID string) (entities.PollingCenter, error) {
	var row centerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(centerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PollingCenter{}, domainerrors.ErrCenterNotFound
		}
		return entities.PollingCenter{}, r.logError("directory_repo_get_center_failed", err, "center_id", centerID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetCenterByCode(ctx context.Context, code string) (entities.PollingCenter, bool, error) {
	var row centerModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PollingCenter{}, false, nil
		}
		return entities.PollingCenter{}, false, r.logError("directory_repo_get_center_by_code_failed", err, "code", code)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListCenters(ctx context.Context) ([]entities.PollingCenter, error) {
	var rows []centerModel
	err := r.db.WithContext(ctx).
		Order("code asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("directory_repo_list_centers_failed", err)
	}
	items := make([]entities.PollingCenter, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModel{
		ID:           candidate.CandidateID,
		Name:         candidate.Name,
		Party:        candidate.Party,
		Category:     string(candidate.Category),
		Abbreviation: candidate.Abbreviation,
		Constituency: candidate.Constituency,
		CreatedAt:    candidate.CreatedAt,
		UpdatedAt:    candidate.UpdatedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":         row.Name,
			"party":        row.Party,
			"category":     row.Category,
			"abbreviation": row.Abbreviation,
			"constituency": row.Constituency,
			"updated_at":   row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("directory_repo_save_candidate_failed", create.Error,
			"candidate_id", candidate.CandidateID,
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("directory_repo_get_candidate_failed", err, "candidate_id", candidateID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidates(
	ctx context.Context,
	category entities.Category,
	constituency string,
) ([]entities.Candidate, error) {
	query := r.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Order("abbreviation asc")
	if constituency != "" {
		query = query.Where("constituency = ?", constituency)
	}
	var rows []candidateModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("directory_repo_list_candidates_failed", err, "category", string(category))
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveAgent(ctx context.Context, agent entities.FieldAgent) error {
	row := agentModel{
		ID:          agent.AgentID,
		PhoneNumber: agent.PhoneNumber,
		FirstName:   agent.FirstName,
		LastName:    agent.LastName,
		Role:        string(agent.Role),
		Approved:    agent.Approved,
		CreatedAt:   agent.CreatedAt,
		UpdatedAt:   agent.UpdatedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"first_name": row.FirstName,
			"last_name":  row.LastName,
			"role":       row.Role,
			"approved":   row.Approved,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrPhoneAlreadyRegistered
		}
		return r.logError("directory_repo_save_agent_failed", create.Error,
			"agent_id", agent.AgentID,
		)
	}
	return nil
}

func (r *Repository) GetAgent(ctx context.Context, agentID string) (entities.FieldAgent, error) {
	var row agentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FieldAgent{}, domainerrors.ErrAgentNotFound
		}
		return entities.FieldAgent{}, r.logError("directory_repo_get_agent_failed", err, "agent_id", agentID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetAgentByPhone(ctx context.Context, phoneNumber string) (entities.FieldAgent, bool, error) {
	var row agentModel
	err := r.db.WithContext(ctx).
		Where("phone_number = ?", strings.TrimSpace(phoneNumber)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FieldAgent{}, false, nil
		}
		return entities.FieldAgent{}, false, r.logError("directory_repo_get_agent_by_phone_failed", err)
	}
	return row.toEntity(), true, nil
}

func (m centerModel) toEntity() entities.PollingCenter {
	return entities.PollingCenter{
		CenterID:         m.ID,
		Code:             m.Code,
		Name:             m.Name,
		Constituency:     m.Constituency,
		Ward:             m.Ward,
		RegisteredVoters: m.RegisteredVoters,
		Active:           m.Active,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID:  m.ID,
		Name:         m.Name,
		Party:        m.Party,
		Category:     entities.Category(m.Category),
		Abbreviation: m.Abbreviation,
		Constituency: m.Constituency,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (m agentModel) toEntity() entities.FieldAgent {
	return entities.FieldAgent{
		AgentID:     m.ID,
		PhoneNumber: m.PhoneNumber,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Role:        entities.Role(m.Role),
		Approved:    m.Approved,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "registry/directory-service",
		"layer", "adapters/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("directory repository operation failed", fields...)
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
