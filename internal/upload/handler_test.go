package upload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/circleband/backend/internal/response"
)

var errForTest = errors.New("storage offline")

func newTestHandler(store *fakeStorage) *Handler {
	return NewHandler(NewGateway(store, false), "images")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func resultData(t *testing.T, env response.Envelope) map[string]interface{} {
	t.Helper()
	m, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", env.Data)
	}
	return m
}

func TestUploadBinaryImageEndpoint(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)
	data := redJPEG(t)

	body, _ := json.Marshal(map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(data),
		"filename":   "red.jpg",
		"folder":     "test",
		// The stored content type comes from the extension, not this field.
		"content_type": "application/octet-stream",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload-binary-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.UploadBinaryImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	res := resultData(t, decodeEnvelope(t, rec))
	if res["original_filename"] != "red.jpg" {
		t.Errorf("original_filename = %v", res["original_filename"])
	}
	if !strings.HasPrefix(res["object_key"].(string), "test/") {
		t.Errorf("object_key = %v", res["object_key"])
	}
	if !strings.HasPrefix(res["file_url"].(string), "https://cdn.example.com/test/") {
		t.Errorf("file_url = %v", res["file_url"])
	}
	if store.lastContentType != "image/jpeg" {
		t.Errorf("stored content type %q, want image/jpeg", store.lastContentType)
	}
}

func TestUploadBinaryImageMissingFields(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	tests := []struct {
		name string
		body string
	}{
		{"no image_data", `{"filename":"a.jpg"}`},
		{"no filename", `{"image_data":"aGk="}`},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload-binary-image", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.UploadBinaryImage(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", rec.Code)
			}
		})
	}
}

func TestUploadBinaryImageBadPayloadIs400(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	body, _ := json.Marshal(map[string]string{
		"image_data": "!!! not base64 !!!",
		"filename":   "a.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload-binary-image", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.UploadBinaryImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestUploadBinaryImageStorageFailureIs500(t *testing.T) {
	store := newFakeStorage()
	store.uploadErr = errForTest
	h := newTestHandler(store)

	body, _ := json.Marshal(map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(redJPEG(t)),
		"filename":   "a.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload-binary-image", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.UploadBinaryImage(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d, want 500", rec.Code)
	}
}

func TestUploadImageMultipart(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "pic.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(redJPEG(t)); err != nil {
		t.Fatal(err)
	}
	_ = mw.WriteField("folder", "gallery")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.UploadImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	res := resultData(t, decodeEnvelope(t, rec))
	if !strings.HasPrefix(res["object_key"].(string), "gallery/") {
		t.Errorf("object_key = %v", res["object_key"])
	}
}

func TestUploadImagesMixedResults(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	good, _ := mw.CreateFormFile("images", "good.jpg")
	_, _ = good.Write(redJPEG(t))
	bad, _ := mw.CreateFormFile("images", "bad.jpg")
	_, _ = bad.Write([]byte("not an image"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.UploadImages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	list, ok := env.Data.([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2 results, got %v", env.Data)
	}
	first := list[0].(map[string]interface{})
	second := list[1].(map[string]interface{})
	if first["success"] != true {
		t.Error("first upload should succeed")
	}
	if second["success"] != false {
		t.Error("second upload should fail")
	}
}

func TestUploadImagesAllFailedIs400(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	bad, _ := mw.CreateFormFile("images", "bad.jpg")
	_, _ = bad.Write([]byte("junk"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.UploadImages(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestUploadRawBinaryImageRawBody(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)
	data := redJPEG(t)

	req := httptest.NewRequest(http.MethodPost, "/upload-raw-binary-image?folder=raw", bytes.NewReader(data))
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Filename", "from-header.jpg")
	rec := httptest.NewRecorder()

	h.UploadRawBinaryImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	res := resultData(t, decodeEnvelope(t, rec))
	if res["original_filename"] != "from-header.jpg" {
		t.Errorf("original_filename = %v", res["original_filename"])
	}
	if !strings.HasPrefix(res["object_key"].(string), "raw/") {
		t.Errorf("object_key = %v", res["object_key"])
	}
}

func TestUploadRawBinaryImageQueryFilenameWins(t *testing.T) {
	h := newTestHandler(newFakeStorage())
	data := redJPEG(t)

	req := httptest.NewRequest(http.MethodPost, "/upload-raw-binary-image?filename=from-query.jpg", bytes.NewReader(data))
	req.Header.Set("X-Filename", "from-header.jpg")
	rec := httptest.NewRecorder()

	h.UploadRawBinaryImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	res := resultData(t, decodeEnvelope(t, rec))
	if res["original_filename"] != "from-query.jpg" {
		t.Errorf("original_filename = %v", res["original_filename"])
	}
}

func TestUploadRawBinaryImageMissingFilename(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	req := httptest.NewRequest(http.MethodPost, "/upload-raw-binary-image", bytes.NewReader(redJPEG(t)))
	rec := httptest.NewRecorder()

	h.UploadRawBinaryImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestUploadRawBinaryImageMultipartMode(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "part.jpg")
	_, _ = fw.Write(redJPEG(t))
	_ = mw.WriteField("filename", "named.jpg")
	_ = mw.WriteField("folder", "multi")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-raw-binary-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.UploadRawBinaryImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	res := resultData(t, decodeEnvelope(t, rec))
	if res["original_filename"] != "named.jpg" {
		t.Errorf("original_filename = %v", res["original_filename"])
	}
	if !strings.HasPrefix(res["object_key"].(string), "multi/") {
		t.Errorf("object_key = %v", res["object_key"])
	}
}

func TestDeleteImageEndpoint(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store)
	gw := NewGateway(store, false)

	up := gw.Upload(httptest.NewRequest(http.MethodGet, "/", nil).Context(), redJPEG(t), "a.jpg", "images")
	if !up.Success {
		t.Fatalf("seed upload failed: %s", up.Error)
	}

	req := httptest.NewRequest(http.MethodDelete, "/delete-image?object_key="+up.ObjectKey, nil)
	rec := httptest.NewRecorder()
	h.DeleteImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteImageUnknownKey(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	body := strings.NewReader(`{"object_key":"images/2026/01/01/feedface.jpg"}`)
	req := httptest.NewRequest(http.MethodDelete, "/delete-image", body)
	rec := httptest.NewRecorder()

	h.DeleteImage(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d, want 500", rec.Code)
	}
}

func TestDeleteImageMissingKey(t *testing.T) {
	h := newTestHandler(newFakeStorage())

	req := httptest.NewRequest(http.MethodDelete, "/delete-image", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.DeleteImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}
