package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const multipartMemory = 8 << 20

type FileHandler struct {
	Images         ImageService
	maxRequestSize int64
}

// NewFileHandler caps whole upload requests at maxRequestSize bytes.
func NewFileHandler(images ImageService, maxRequestSize int64) *FileHandler {
	return &FileHandler{Images: images, maxRequestSize: maxRequestSize}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, "upload is too large")
			return
		}
		logger.Warn("HTTP: invalid multipart form",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			logger.Error("HTTP: failed to open upload", err, zap.String("file", header.Filename))
			responseWithError(w, http.StatusInternalServerError, "failed to read upload")
			return
		}
		defer closeUpload(f)

		uploads = append(uploads, service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     f,
		})
	}

	urls, err := h.Images.Save(r.Context(), uploads)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: failed to store files", err)
		responseWithError(w, http.StatusInternalServerError, "failed to store files")
		return
	}

	logger.Info("HTTP_OUT: files uploaded",
		zap.Int("count", len(urls)),
		zap.Duration("ms", time.Since(start)))

	responseWithPayload(w, http.StatusOK, toPayload("files", urls))
}

func (h *FileHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	img, err := h.Images.Open(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: failed to open image", err)
		responseWithError(w, http.StatusInternalServerError, "failed to read image")
		return
	}
	defer img.Content.Close()

	http.ServeContent(w, r, img.Name, img.ModTime, img.Content)
}

func (h *FileHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := h.Images.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: failed to delete image", err)
		responseWithError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	responseWithPayload(w, http.StatusOK, toPayload("message", "file deleted"))
}

func closeUpload(f multipart.File) {
	_ = f.Close()
}
