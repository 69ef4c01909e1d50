package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	name        string
	contentType string
	body        string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		header.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newFileHandler() *handlers.FileHandler {
	images := service.NewImageService(afero.NewMemMapFs(), config.UploadConfig{
		Dir:          "uploads/images",
		MaxFileSize:  1024,
		AllowedTypes: []string{"image/png", "image/gif"},
	})
	return handlers.NewFileHandler(images, 1<<20)
}

func TestFileHandler_UploadServeDelete(t *testing.T) {
	handler := newFileHandler()

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, part{name: "pixel.png", contentType: "image/png", body: "\x89PNG fake"}))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	name := strings.TrimPrefix(body.Files[0], service.ImageURLPrefix)

	w = httptest.NewRecorder()
	handler.GetImage(w, withURLParams(httptest.NewRequest(http.MethodGet, body.Files[0], nil), map[string]string{"filename": name}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", w.Body.String())

	w = httptest.NewRecorder()
	handler.DeleteImage(w, withURLParams(httptest.NewRequest(http.MethodDelete, body.Files[0], nil), map[string]string{"filename": name}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.GetImage(w, withURLParams(httptest.NewRequest(http.MethodGet, body.Files[0], nil), map[string]string{"filename": name}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFileHandler_UploadRejects(t *testing.T) {
	tests := []struct {
		name           string
		part           part
		expectedStatus int
	}{
		{name: "type", part: part{name: "a.txt", contentType: "text/plain", body: "hi"}, expectedStatus: http.StatusUnsupportedMediaType},
		{name: "size", part: part{name: "a.gif", contentType: "image/gif", body: strings.Repeat("x", 2048)}, expectedStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newFileHandler().Upload(w, multipartRequest(t, tt.part))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestFileHandler_UploadNotMultipart(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	newFileHandler().Upload(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
