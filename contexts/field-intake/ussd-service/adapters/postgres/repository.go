package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tallyroom/contexts/field-intake/ussd-service/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists USSD sessions so any API replica can serve the next turn
// of a conversation.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

type sessionModel struct {
	ID          string    `gorm:"primaryKey;column:id"`
	PhoneNumber string    `gorm:"column:phone_number;index"`
	CurrentStep string    `gorm:"column:current_step"`
	Data        []byte    `gorm:"column:data;type:jsonb"`
	Active      bool      `gorm:"column:active"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (sessionModel) TableName() string { return "ussd_sessions" }

func (s *Store) GetSession(ctx context.Context, sessionID string) (entities.Session, bool, error) {
	var row sessionModel
	err := s.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, false, nil
		}
		return entities.Session{}, false, s.logError("ussd_session_get_failed", err, "session_id", sessionID)
	}

	session, err := row.toEntity()
	if err != nil {
		return entities.Session{}, false, s.logError("ussd_session_decode_failed", err, "session_id", sessionID)
	}
	return session, true, nil
}

func (s *Store) SaveSession(ctx context.Context, session entities.Session) error {
	data, err := json.Marshal(session.Data)
	if err != nil {
		return err
	}
	row := sessionModel{
		ID:          strings.TrimSpace(session.SessionID),
		PhoneNumber: session.PhoneNumber,
		CurrentStep: string(session.CurrentStep),
		Data:        data,
		Active:      session.Active,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}

	create := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"phone_number": row.PhoneNumber,
			"current_step": row.CurrentStep,
			"data":         row.Data,
			"active":       row.Active,
			"expires_at":   row.ExpiresAt,
			"updated_at":   row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return s.logError("ussd_session_save_failed", create.Error, "session_id", session.SessionID)
	}
	return nil
}

func (m sessionModel) toEntity() (entities.Session, error) {
	var data entities.SessionData
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return entities.Session{}, err
		}
	}
	return entities.Session{
		SessionID:   m.ID,
		PhoneNumber: m.PhoneNumber,
		CurrentStep: entities.Step(m.CurrentStep),
		Data:        data,
		Active:      m.Active,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func (s *Store) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "field-intake/ussd-service",
		"layer", "adapters/postgres",
		"error", err.Error(),
	}, args...)
	s.logger.Error("ussd session store operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
