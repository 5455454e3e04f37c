package media

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rittz/backend/internal/response"
)

// uploadFields mirrors the multipart fields accepted by the generic asset
// upload endpoint. Catalog and content editors use different field names for
// the same pipeline.
var uploadFields = []FieldSpec{
	{Name: "images1"},
	{Name: "images2"},
	{Name: "images3"},
	{Name: "images"},
	{Name: "image", MaxCount: 1},
	{Name: "nav_image", MaxCount: 1},
}

// Handler holds HTTP handlers for direct media operations.
type Handler struct {
	uploader *Uploader
	pipeline *TranscodePipeline
	fetcher  *Fetcher
	deleter  *Deleter
	log      *slog.Logger
}

// NewHandler creates a new media Handler.
func NewHandler(uploader *Uploader, pipeline *TranscodePipeline, fetcher *Fetcher, deleter *Deleter, log *slog.Logger) *Handler {
	return &Handler{uploader: uploader, pipeline: pipeline, fetcher: fetcher, deleter: deleter, log: log}
}

// Upload godoc
//
//	@Summary		Upload media assets
//	@Description	Uploads one or more files across the named multipart fields and returns their stored locations.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=map[string][]StoredObject}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/media/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	results, err := h.uploader.HandleRequest(r, uploadFields)
	if err != nil {
		// Nothing downstream references these objects, so a mid-batch
		// failure means every stored object from this call is an orphan.
		for _, objs := range results {
			for _, obj := range objs {
				h.deleter.DeleteByKey(r.Context(), obj.Key)
			}
		}
		writeError(w, err)
		return
	}
	response.OK(w, results)
}

// ConvertVideo godoc
//
//	@Summary		Normalize and publish a video
//	@Description	Transcodes the uploaded video to H.264/mp4 with faststart and publishes it.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/media/videos/convert [post]
func (h *Handler) ConvertVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxParseMemory); err != nil {
		response.BadRequest(w, "invalid multipart body")
		return
	}
	headers := r.MultipartForm.File["video"]
	if len(headers) == 0 {
		response.BadRequest(w, "video file is required")
		return
	}
	fh := headers[0]

	inputPath, err := h.pipeline.SaveTemp(fh)
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.pipeline.Run(r.Context(), inputPath, fh.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"url": url})
}

// FetchVideo godoc
//
//	@Summary		Republish a remote video
//	@Description	Downloads a video by URL and republishes it into object storage.
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/media/videos/fetch [post]
func (h *Handler) FetchVideo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	url, err := h.fetcher.FetchAndStore(r.Context(), body.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"url": url})
}

// DeleteAsset godoc
//
//	@Summary		Delete a stored asset by its public URL
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Router			/media/assets [delete]
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	deleted := h.deleter.DeleteByURL(r.Context(), body.URL)
	response.OK(w, map[string]bool{"deleted": deleted})
}

// writeError maps the media failure taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	var te *TranscodeError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Reason)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &te) && te.Stage == StageValidate:
		response.BadRequest(w, te.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
