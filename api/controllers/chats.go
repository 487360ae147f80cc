package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	chatsvc "github.com/boutique2v/commerce-backend/internal/chats"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// ChatFetch opens (or returns) the caller's support thread.
func ChatFetch(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.OpenThread(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThreadViewResponse(view))
	}
}

// ChatPost appends a customer message to their own thread.
func ChatPost(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload chatMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.PostAsCustomer(r.Context(), userID, payload.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newChatMessageResponse(message))
	}
}

// AdminChatThreads lists every conversation, most recently active first.
func AdminChatThreads(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		threads, err := svc.ListThreads(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lo.Map(threads, func(t models.ChatThread, _ int) chatThreadResponse {
			return newChatThreadResponse(&t)
		}))
	}
}

// AdminChatThread returns one conversation with its messages.
func AdminChatThread(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		threadID, err := validators.ParsePathUUID(chi.URLParam(r, "threadID"), "thread_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Thread(r.Context(), threadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThreadViewResponse(view))
	}
}

// AdminChatReply appends a store reply to an existing thread.
func AdminChatReply(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		adminID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		threadID, err := validators.ParsePathUUID(chi.URLParam(r, "threadID"), "thread_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload chatMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.PostAsAdmin(r.Context(), adminID, threadID, payload.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newChatMessageResponse(message))
	}
}

type chatMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type chatThreadResponse struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newChatThreadResponse(t *models.ChatThread) chatThreadResponse {
	return chatThreadResponse{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
	}
}

type chatMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func newChatMessageResponse(m *models.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

type threadViewResponse struct {
	Thread   chatThreadResponse    `json:"thread"`
	Messages []chatMessageResponse `json:"messages"`
}

func newThreadViewResponse(view *chatsvc.ThreadView) threadViewResponse {
	return threadViewResponse{
		Thread: newChatThreadResponse(&view.Thread),
		Messages: lo.Map(view.Messages, func(m models.ChatMessage, _ int) chatMessageResponse {
			return newChatMessageResponse(&m)
		}),
	}
}
