package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/littlemija/littlemija-backend/api/middleware"
	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/internal/orders"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

func actorFromContext(ctx context.Context) (orders.Actor, error) {
	userID, role, ok := middleware.Principal(ctx)
	if !ok {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return orders.Actor{UserID: userID, Role: role}, nil
}

func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.UserID, nil
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
