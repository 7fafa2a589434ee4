package handler

import (
	"net/http"

	"inventory-api/internal/middleware"
	"inventory-api/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = user.ID
	actor.Email = user.Email
	actor.Role = user.Role

	return actor
}
