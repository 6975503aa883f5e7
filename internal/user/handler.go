package user

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/circleband/backend/internal/middleware"
	"github.com/circleband/backend/internal/response"
)

// Handler holds HTTP handlers for profile endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type updateProfileRequest struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
}

// GetProfile godoc
//
//	@Summary		Get current user profile
//	@Description	Returns the profile of the currently authenticated user.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "missing authentication")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w, err)
		return
	}

	response.OK(w, "profile", u)
}

// UpdateProfile godoc
//
//	@Summary		Update current user profile
//	@Description	Updates nickname and/or avatar URL. Omitted fields are left unchanged.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		updateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	response.Envelope{data=User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/profile [post]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "missing authentication")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Nickname == nil && req.AvatarURL == nil {
		response.BadRequest(w, "nothing to update")
		return
	}
	if req.Nickname != nil && utf8.RuneCountInString(*req.Nickname) > 30 {
		response.BadRequest(w, "nickname must be 30 characters or fewer")
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, req.Nickname, req.AvatarURL)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w, err)
		return
	}

	response.OK(w, "profile updated", u)
}
