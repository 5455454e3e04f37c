package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rittz/backend/internal/middleware"
	"github.com/rittz/backend/internal/response"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
//
//	@Summary		Register a new account
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"Account details"
//	@Success		201	{object}	response.Envelope{data=User}
//	@Failure		400	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Router			/users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	var fullName *string
	if req.FullName != "" {
		fullName = &req.FullName
	}

	u, err := h.svc.Register(r.Context(), req.UserName, req.Email, req.Password, fullName)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrAlreadyExists):
			response.Conflict(w, "user already exists")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login godoc
//
//	@Summary		Log in with email and password
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200	{object}	response.Envelope{data=loginResponse}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "user not found")
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "invalid credentials")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, loginResponse{Token: token, User: u})
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}
