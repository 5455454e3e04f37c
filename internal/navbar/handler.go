package navbar

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rittz/backend/internal/media"
	"github.com/rittz/backend/internal/response"
)

// Handler holds HTTP handlers for navbar endpoints.
type Handler struct {
	svc      *Service
	uploader *media.Uploader
}

// NewHandler creates a new navbar Handler.
func NewHandler(svc *Service, uploader *media.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

// Get godoc
//
//	@Summary		Get the navbar document
//	@Tags			navbar
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=Navbar}
//	@Failure		404	{object}	response.Envelope
//	@Router			/navbar/getnavbar [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "navbar not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, n)
}

// Update godoc
//
//	@Summary		Update the navbar document
//	@Description	Upserts the navbar; an optional nav_image multipart field replaces the logo.
//	@Tags			navbar
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Navbar}
//	@Failure		400	{object}	response.Envelope
//	@Router			/navbar/update [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logo, err := h.uploader.Single(r, "nav_image")
	if err != nil {
		writeError(w, err)
		return
	}

	data := r.FormValue("data")
	if data == "" {
		h.svc.RollbackUpload(r.Context(), logo)
		response.BadRequest(w, "fields required")
		return
	}

	var input Navbar
	if err := json.Unmarshal([]byte(data), &input); err != nil {
		h.svc.RollbackUpload(r.Context(), logo)
		response.BadRequest(w, "invalid JSON in data field")
		return
	}

	n, err := h.svc.Update(r.Context(), &input, logo)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, n)
}

func writeError(w http.ResponseWriter, err error) {
	if media.IsValidation(err) {
		response.BadRequest(w, err.Error())
		return
	}
	response.Error(w, http.StatusInternalServerError, err.Error())
}
