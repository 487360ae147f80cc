package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/api/middleware"
	"github.com/boutique2v/commerce-backend/internal/orders"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
)

// requestUserID resolves the authenticated user's id from the request context.
func requestUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// requestActor resolves the authenticated user plus their role.
func requestActor(r *http.Request) (orders.Actor, error) {
	id, err := requestUserID(r)
	if err != nil {
		return orders.Actor{}, err
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return orders.Actor{UserID: id, Role: role}, nil
}
