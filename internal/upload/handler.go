package upload

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/circleband/backend/internal/response"
)

// Handler holds HTTP handlers for the image upload endpoints.
type Handler struct {
	gw            *Gateway
	defaultFolder string
}

// NewHandler creates an upload Handler.
func NewHandler(gw *Gateway, defaultFolder string) *Handler {
	return &Handler{gw: gw, defaultFolder: defaultFolder}
}

type binaryUploadRequest struct {
	ImageData string `json:"image_data"`
	Filename  string `json:"filename"`
	Folder    string `json:"folder"`
	// ContentType is accepted for client compatibility but ignored; the stored
	// content type is derived from the filename extension.
	ContentType string `json:"content_type"`
}

type deleteImageRequest struct {
	ObjectKey string `json:"object_key"`
}

// UploadImage godoc
//
//	@Summary		Upload an image file
//	@Description	Accepts a multipart form with an "image" file field and an optional "folder" field.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			image	formData	file	true	"Image file"
//	@Param			folder	formData	string	false	"Target folder"
//	@Success		200		{object}	response.Envelope{data=Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload-image [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxImageBytes + 1); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	_, fh, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "missing image file field")
		return
	}

	data, err := ReadFilePart(fh)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	folder := h.folderOr(r.FormValue("folder"))
	res := h.gw.Upload(r.Context(), data, fh.Filename, folder)
	h.respond(w, res, "upload successful")
}

// UploadImages godoc
//
//	@Summary		Upload multiple image files
//	@Description	Accepts a multipart form with one or more "images" file fields. Returns a per-file result list.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			images	formData	file	true	"Image files"
//	@Param			folder	formData	string	false	"Target folder"
//	@Success		200		{object}	response.Envelope{data=[]Result}
//	@Failure		400		{object}	response.Envelope
//	@Router			/upload-images [post]
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxImageBytes + 1); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	fhs := r.MultipartForm.File["images"]
	if len(fhs) == 0 {
		response.BadRequest(w, "missing images file fields")
		return
	}

	folder := h.folderOr(r.FormValue("folder"))
	results := make([]*Result, 0, len(fhs))
	succeeded := 0
	for _, fh := range fhs {
		data, err := ReadFilePart(fh)
		if err != nil {
			results = append(results, failure(err))
			continue
		}
		res := h.gw.Upload(r.Context(), data, fh.Filename, folder)
		if res.Success {
			succeeded++
		}
		results = append(results, res)
	}

	if succeeded == 0 {
		response.JSON(w, http.StatusBadRequest, response.Envelope{
			Message: "all uploads failed",
			Data:    results,
		})
		return
	}
	response.OK(w, "uploads processed", results)
}

// UploadBinaryImage godoc
//
//	@Summary		Upload a base64-encoded image
//	@Description	Accepts JSON with image_data as a plain base64 string or a data URI.
//	@Tags			upload
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		binaryUploadRequest	true	"Base64 payload"
//	@Success		200		{object}	response.Envelope{data=Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload-binary-image [post]
func (h *Handler) UploadBinaryImage(w http.ResponseWriter, r *http.Request) {
	var req binaryUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.ImageData == "" {
		response.BadRequest(w, "image_data is required")
		return
	}
	if req.Filename == "" {
		response.BadRequest(w, "filename is required")
		return
	}

	folder := h.folderOr(req.Folder)
	res := h.gw.UploadBase64(r.Context(), req.ImageData, req.Filename, folder)
	h.respond(w, res, "upload successful")
}

// UploadRawBinaryImage godoc
//
//	@Summary		Upload raw image bytes
//	@Description	Accepts either a multipart form with a "file" field, or the image bytes as the raw request body with filename/folder taken from query parameters or the X-Filename header.
//	@Tags			upload
//	@Accept			octet-stream
//	@Produce		json
//	@Security		BearerAuth
//	@Param			filename	query		string	false	"Original filename (raw body mode)"
//	@Param			folder		query		string	false	"Target folder (raw body mode)"
//	@Success		200			{object}	response.Envelope{data=Result}
//	@Failure		400			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/upload-raw-binary-image [post]
func (h *Handler) UploadRawBinaryImage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.uploadMultipartFile(w, r)
		return
	}

	// Raw body mode: metadata comes from query params or a header, never the body.
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = r.Header.Get("X-Filename")
	}
	if filename == "" {
		response.BadRequest(w, "filename query parameter or X-Filename header is required")
		return
	}
	folder := h.folderOr(r.URL.Query().Get("folder"))

	data, err := ReadRawBody(r.Body)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	res := h.gw.Upload(r.Context(), data, filename, folder)
	h.respond(w, res, "upload successful")
}

func (h *Handler) uploadMultipartFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxImageBytes + 1); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	_, fh, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file field")
		return
	}

	data, err := ReadFilePart(fh)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	filename := r.FormValue("filename")
	if filename == "" {
		filename = fh.Filename
	}
	folder := h.folderOr(r.FormValue("folder"))

	res := h.gw.Upload(r.Context(), data, filename, folder)
	h.respond(w, res, "upload successful")
}

// DeleteImage godoc
//
//	@Summary		Delete an uploaded image
//	@Description	Removes the object identified by object_key (JSON body or query parameter) from storage.
//	@Tags			upload
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			object_key	query		string	false	"Object key"
//	@Success		200			{object}	response.Envelope{data=Result}
//	@Failure		400			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/delete-image [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	objectKey := r.URL.Query().Get("object_key")
	if objectKey == "" {
		var req deleteImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			objectKey = req.ObjectKey
		}
	}
	if objectKey == "" {
		response.BadRequest(w, "object_key is required")
		return
	}

	res := h.gw.Delete(r.Context(), objectKey)
	if !res.Success {
		response.JSON(w, http.StatusInternalServerError, response.Envelope{
			Message: "delete failed",
			Data:    res,
			Error:   res.Error,
		})
		return
	}
	response.OK(w, "delete successful", res)
}

func (h *Handler) folderOr(folder string) string {
	if folder == "" {
		return h.defaultFolder
	}
	return folder
}

func (h *Handler) respond(w http.ResponseWriter, res *Result, okMessage string) {
	if res.Success {
		response.OK(w, okMessage, res)
		return
	}
	if IsClientError(res.Cause()) {
		response.BadRequest(w, res.Error)
		return
	}
	response.Fail(w, http.StatusInternalServerError, "upload failed", res.Error)
}
