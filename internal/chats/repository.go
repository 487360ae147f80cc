package chats

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
)

// ErrNotFound signals a missing chat thread.
var ErrNotFound = errors.New("chat thread not found")

// Repository wires chat persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindOrCreateThread returns the customer's thread, creating it on first
// contact. Concurrent first messages race on the unique customer index; the
// loser refetches.
func (r *Repository) FindOrCreateThread(ctx context.Context, customerID uuid.UUID) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).First(&thread, "customer_id = ?", customerID).Error
	if err == nil {
		return &thread, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	thread = models.ChatThread{ID: uuid.New(), CustomerID: customerID}
	if createErr := r.db.WithContext(ctx).Create(&thread).Error; createErr != nil {
		if db.IsUniqueViolation(createErr, "") {
			var existing models.ChatThread
			if refetchErr := r.db.WithContext(ctx).First(&existing, "customer_id = ?", customerID).Error; refetchErr != nil {
				return nil, refetchErr
			}
			return &existing, nil
		}
		return nil, createErr
	}
	return &thread, nil
}

// FindThread loads a thread by ID.
func (r *Repository) FindThread(ctx context.Context, threadID uuid.UUID) (*models.ChatThread, error) {
	var thread models.ChatThread
	if err := r.db.WithContext(ctx).First(&thread, "id = ?", threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// AppendMessage inserts a message and bumps the thread's last activity.
func (r *Repository) AppendMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.ChatThread{}).
			Where("id = ?", message.ThreadID).
			Update("last_message_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// Messages returns a thread's messages oldest first.
func (r *Repository) Messages(ctx context.Context, threadID uuid.UUID) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListThreads returns every thread, most recently active first.
func (r *Repository) ListThreads(ctx context.Context) ([]models.ChatThread, error) {
	var rows []models.ChatThread
	err := r.db.WithContext(ctx).
		Order("last_message_at desc NULLS LAST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
