package seo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rittz/backend/internal/media"
	"github.com/rittz/backend/internal/response"
)

// Handler holds HTTP handlers for SEO management endpoints.
type Handler struct {
	svc      *Service
	uploader *media.Uploader
}

// NewHandler creates a new SEO Handler.
func NewHandler(svc *Service, uploader *media.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

// List godoc
//
//	@Summary		List SEO pages
//	@Tags			seo
//	@Produce		json
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Param			search	query		string	false	"Search in page name, slug, and SEO title"
//	@Param			status	query		string	false	"Filter by status"
//	@Success		200	{object}	response.PageEnvelope
//	@Router			/seo/getAll [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   atoiDefault(q.Get("page"), 1),
		Limit:  atoiDefault(q.Get("limit"), 10),
	}

	pages, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		response.InternalError(w)
		return
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	response.Page(w, pages, response.Pagination{
		CurrentPage:  f.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: f.Limit,
	})
}

// Get godoc
//
//	@Summary		Get one SEO page
//	@Tags			seo
//	@Produce		json
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	response.Envelope{data=Page}
//	@Failure		404	{object}	response.Envelope
//	@Router			/seo/get/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

// GetBySlug godoc
//
//	@Summary		Get an active SEO page by slug
//	@Tags			seo
//	@Produce		json
//	@Param			slug	path		string	true	"Page slug"
//	@Success		200	{object}	response.Envelope{data=Page}
//	@Failure		404	{object}	response.Envelope
//	@Router			/seo/slug/{slug} [get]
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Create godoc
//
//	@Summary		Create an SEO page
//	@Description	Creates a page from multipart form fields; an optional icon field uploads the page icon.
//	@Tags			seo
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	response.Envelope{data=Page}
//	@Failure		400	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Router			/seo/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	icon, err := h.uploader.Single(r, "icon")
	if err != nil {
		writeError(w, err)
		return
	}

	page := &Page{
		PageName: r.FormValue("page_name"),
		PageSlug: r.FormValue("page_slug"),
		Status:   r.FormValue("status"),
		Seo: Meta{
			Title:       r.FormValue("seo_title"),
			Description: r.FormValue("seo_description"),
			Canonical:   r.FormValue("canonical"),
			GoogleSiteVerification: SiteVerification{
				Name:    r.FormValue("google_site_verification_name"),
				Content: r.FormValue("google_site_verification_content"),
			},
		},
		GoogleTagManager: TagManager{
			Header: r.FormValue("google_tag_manager_header"),
			Body:   r.FormValue("google_tag_manager_body"),
		},
		Sitemap: Sitemap{
			Loc:        r.FormValue("sitemap_loc"),
			Priority:   atofDefault(r.FormValue("sitemap_priority"), 0),
			Changefreq: r.FormValue("sitemap_changefreq"),
		},
	}

	if ok := h.parseMetaTags(w, r, page, icon); !ok {
		return
	}

	created, err := h.svc.Create(r.Context(), page, icon)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

// Update godoc
//
//	@Summary		Update an SEO page
//	@Tags			seo
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	response.Envelope{data=Page}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/seo/update/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	icon, err := h.uploader.Single(r, "icon")
	if err != nil {
		writeError(w, err)
		return
	}

	var patch Page
	if ok := h.parseMetaTags(w, r, &patch, icon); !ok {
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), func(p *Page) {
		setIfPresent(r, "page_name", &p.PageName)
		setIfPresent(r, "page_slug", &p.PageSlug)
		setIfPresent(r, "status", &p.Status)
		setIfPresent(r, "seo_title", &p.Seo.Title)
		setIfPresent(r, "seo_description", &p.Seo.Description)
		setIfPresent(r, "canonical", &p.Seo.Canonical)
		setIfPresent(r, "google_site_verification_name", &p.Seo.GoogleSiteVerification.Name)
		setIfPresent(r, "google_site_verification_content", &p.Seo.GoogleSiteVerification.Content)
		setIfPresent(r, "google_tag_manager_header", &p.GoogleTagManager.Header)
		setIfPresent(r, "google_tag_manager_body", &p.GoogleTagManager.Body)
		setIfPresent(r, "sitemap_loc", &p.Sitemap.Loc)
		setIfPresent(r, "sitemap_changefreq", &p.Sitemap.Changefreq)
		if v := r.FormValue("sitemap_priority"); v != "" {
			p.Sitemap.Priority = atofDefault(v, p.Sitemap.Priority)
		}
		if hasFormValue(r, "meta_property_og") {
			p.Seo.MetaPropertyOg = patch.Seo.MetaPropertyOg
		}
		if hasFormValue(r, "meta_name_twitter") {
			p.Seo.MetaNameTwitter = patch.Seo.MetaNameTwitter
		}
	}, icon)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, updated)
}

// Delete godoc
//
//	@Summary		Delete an SEO page and its icon
//	@Tags			seo
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/seo/delete/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "SEO page deleted successfully"})
}

// RemoveIcon godoc
//
//	@Summary		Remove the icon from an SEO page
//	@Tags			seo
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	response.Envelope{data=Page}
//	@Failure		404	{object}	response.Envelope
//	@Router			/seo/remove-icon/{id}/icon [delete]
func (h *Handler) RemoveIcon(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.RemoveIcon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

// parseMetaTags decodes the JSON-encoded meta tag form fields into page.
// On malformed JSON it rolls back the uploaded icon, writes a 400, and
// returns false.
func (h *Handler) parseMetaTags(w http.ResponseWriter, r *http.Request, page *Page, icon *media.StoredObject) bool {
	if v := r.FormValue("meta_property_og"); v != "" {
		if err := json.Unmarshal([]byte(v), &page.Seo.MetaPropertyOg); err != nil {
			h.svc.RollbackUpload(r.Context(), icon)
			response.BadRequest(w, "Invalid JSON format for meta tags")
			return false
		}
	}
	if v := r.FormValue("meta_name_twitter"); v != "" {
		if err := json.Unmarshal([]byte(v), &page.Seo.MetaNameTwitter); err != nil {
			h.svc.RollbackUpload(r.Context(), icon)
			response.BadRequest(w, "Invalid JSON format for meta tags")
			return false
		}
	}
	return true
}

func setIfPresent(r *http.Request, field string, dst *string) {
	if hasFormValue(r, field) {
		*dst = r.FormValue(field)
	}
}

func hasFormValue(r *http.Request, field string) bool {
	if r.MultipartForm != nil {
		_, ok := r.MultipartForm.Value[field]
		return ok
	}
	_, ok := r.Form[field]
	return ok
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func atofDefault(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case media.IsValidation(err):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, ErrNotFound.Error())
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(w, ErrSlugTaken.Error())
	default:
		response.InternalError(w)
	}
}
