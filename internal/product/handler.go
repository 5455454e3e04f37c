package product

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rittz/backend/internal/media"
	"github.com/rittz/backend/internal/response"
)

// imageFields are the multipart fields carrying the two catalog images.
var imageFields = []media.FieldSpec{
	{Name: "viewImage", MaxCount: 1},
	{Name: "hoverImage", MaxCount: 1},
}

// Handler holds HTTP handlers for product endpoints.
type Handler struct {
	svc      *Service
	uploader *media.Uploader
}

// NewHandler creates a new product Handler.
func NewHandler(svc *Service, uploader *media.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

// AddNew godoc
//
//	@Summary		Create a product
//	@Description	Creates a catalog entry with its view and hover images.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	response.Envelope{data=Product}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/products/addnewproduct [post]
func (h *Handler) AddNew(w http.ResponseWriter, r *http.Request) {
	uploaded, err := h.uploader.HandleRequest(r, imageFields)
	if err != nil {
		h.rollback(r, uploaded)
		writeError(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), inputFromForm(r),
		firstObject(uploaded, "viewImage"), firstObject(uploaded, "hoverImage"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, p)
}

// Update godoc
//
//	@Summary		Update a product
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	response.Envelope{data=Product}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/products/updateproduct/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uploaded, err := h.uploader.HandleRequest(r, imageFields)
	if err != nil {
		h.rollback(r, uploaded)
		writeError(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), inputFromForm(r),
		firstObject(uploaded, "viewImage"), firstObject(uploaded, "hoverImage"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a product
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/products/deleteproduct/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, nil)
}

// Get godoc
//
//	@Summary		Get the latest product
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=Product}
//	@Failure		404	{object}	response.Envelope
//	@Router			/products/getproduct [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

func (h *Handler) rollback(r *http.Request, uploaded map[string][]media.StoredObject) {
	for _, objs := range uploaded {
		for _, obj := range objs {
			h.svc.deleter.DeleteByKey(r.Context(), obj.Key)
		}
	}
}

func inputFromForm(r *http.Request) Input {
	return Input{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		URL:           r.FormValue("url"),
		CategoryTitle: r.FormValue("categoryTitle"),
		SubmenuTitle:  r.FormValue("submenuTitle"),
	}
}

func firstObject(m map[string][]media.StoredObject, field string) *media.StoredObject {
	if objs := m[field]; len(objs) > 0 {
		return &objs[0]
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case media.IsValidation(err):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrTitleTaken):
		response.BadRequest(w, ErrTitleTaken.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, ErrNotFound.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
