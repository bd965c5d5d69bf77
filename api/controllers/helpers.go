package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/api/middleware"
	pkgAuth "github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

// pathUUID parses a uuid route parameter or returns a validation error
// naming the parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// requireActor pulls the authenticated caller from the request context.
func requireActor(r *http.Request) (pkgAuth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return pkgAuth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
