package chats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

const maxMessageLength = 4000

// Store is the persistence surface the chat service needs.
type Store interface {
	FindOrCreateThread(ctx context.Context, customerID uuid.UUID) (*models.ChatThread, error)
	FindThread(ctx context.Context, threadID uuid.UUID) (*models.ChatThread, error)
	AppendMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	Messages(ctx context.Context, threadID uuid.UUID) ([]models.ChatMessage, error)
	ListThreads(ctx context.Context) ([]models.ChatThread, error)
}

// ThreadView is a thread with its messages loaded.
type ThreadView struct {
	Thread   models.ChatThread    `json:"thread"`
	Messages []models.ChatMessage `json:"messages"`
}

// Service exposes the customer support chat operations.
type Service interface {
	OpenThread(ctx context.Context, customerID uuid.UUID) (*ThreadView, error)
	PostAsCustomer(ctx context.Context, customerID uuid.UUID, body string) (*models.ChatMessage, error)
	PostAsAdmin(ctx context.Context, adminID, threadID uuid.UUID, body string) (*models.ChatMessage, error)
	Thread(ctx context.Context, threadID uuid.UUID) (*ThreadView, error)
	ListThreads(ctx context.Context) ([]models.ChatThread, error)
}

// ServiceParams wires the chat service dependencies.
type ServiceParams struct {
	Store  Store
	Logger *logger.Logger
}

type service struct {
	store Store
	logg  *logger.Logger
}

// NewService constructs the chat service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("chat store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: params.Store, logg: params.Logger}, nil
}

// OpenThread returns the customer's conversation, creating it on first use.
func (s *service) OpenThread(ctx context.Context, customerID uuid.UUID) (*ThreadView, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	thread, err := s.store.FindOrCreateThread(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening thread")
	}
	return s.view(ctx, thread)
}

func (s *service) PostAsCustomer(ctx context.Context, customerID uuid.UUID, body string) (*models.ChatMessage, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	cleaned, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	thread, err := s.store.FindOrCreateThread(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening thread")
	}
	return s.append(ctx, thread.ID, customerID, cleaned)
}

func (s *service) PostAsAdmin(ctx context.Context, adminID, threadID uuid.UUID, body string) (*models.ChatMessage, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	cleaned, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, thread.ID, adminID, cleaned)
}

func (s *service) Thread(ctx context.Context, threadID uuid.UUID) (*ThreadView, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, thread)
}

func (s *service) ListThreads(ctx context.Context) ([]models.ChatThread, error) {
	threads, err := s.store.ListThreads(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing threads")
	}
	return threads, nil
}

func (s *service) append(ctx context.Context, threadID, senderID uuid.UUID, body string) (*models.ChatMessage, error) {
	message, err := s.store.AppendMessage(ctx, &models.ChatMessage{
		ThreadID: threadID,
		SenderID: senderID,
		Body:     body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending message")
	}
	return message, nil
}

func (s *service) view(ctx context.Context, thread *models.ChatThread) (*ThreadView, error) {
	messages, err := s.store.Messages(ctx, thread.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading messages")
	}
	return &ThreadView{Thread: *thread, Messages: messages}, nil
}

func (s *service) findThread(ctx context.Context, threadID uuid.UUID) (*models.ChatThread, error) {
	thread, err := s.store.FindThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "thread not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading thread")
	}
	return thread, nil
}

func validateBody(body string) (string, error) {
	cleaned := strings.TrimSpace(body)
	if cleaned == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(cleaned) > maxMessageLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("message exceeds %d characters", maxMessageLength))
	}
	return cleaned, nil
}
