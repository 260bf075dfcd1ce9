package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/service"
	"github.com/collegeportal/admission-api/pkg/storage"
)

type stubDrafts struct {
	attached []models.DocumentRef
}

func (s *stubDrafts) AttachDocument(ctx context.Context, userID string, ref models.DocumentRef) (*dto.DraftResponse, error) {
	s.attached = append(s.attached, ref)
	return &dto.DraftResponse{CurrentStep: 4}, nil
}

func (s *stubDrafts) DetachDocument(ctx context.Context, userID string, slot models.DocumentSlot) (*dto.DraftResponse, *models.DocumentRef, error) {
	for i, ref := range s.attached {
		if ref.Slot == slot {
			removed := ref
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			return &dto.DraftResponse{CurrentStep: 4}, &removed, nil
		}
	}
	return nil, nil, errors.New("slot empty")
}

type stubBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (s *stubBlobs) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *stubBlobs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubBlobs) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *stubBlobs) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func documentRouter(t *testing.T) (*gin.Engine, *stubDrafts, *stubBlobs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	drafts := &stubDrafts{}
	blobs := &stubBlobs{blobs: make(map[string][]byte)}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	h := NewDocumentHandler(service.NewDocumentService(drafts, blobs, signer, nil))

	r := gin.New()
	group := r.Group("/admission", asUser("u1"))
	group.POST("/documents/:slot", h.Upload)
	group.DELETE("/documents/:slot", h.Remove)
	return r, drafts, blobs
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestDocumentHandlerUpload(t *testing.T) {
	r, drafts, blobs := documentRouter(t)

	body, contentType := multipartBody(t, "file", "photo.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 2048))
	req := httptest.NewRequest(http.MethodPost, "/admission/documents/photo", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, drafts.attached, 1)
	assert.Equal(t, models.SlotPhoto, drafts.attached[0].Slot)
	assert.Len(t, blobs.blobs, 1)
}

func TestDocumentHandlerUploadMissingFile(t *testing.T) {
	r, _, _ := documentRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admission/documents/photo", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerUploadBadSlot(t *testing.T) {
	r, _, blobs := documentRouter(t)

	body, contentType := multipartBody(t, "file", "p.jpg", "image/jpeg", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/admission/documents/passport", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, blobs.blobs)
}

func TestDocumentHandlerRemove(t *testing.T) {
	r, drafts, blobs := documentRouter(t)
	blobs.blobs = map[string][]byte{"documents/u1/photo/abc.jpg": []byte("data")}
	drafts.attached = []models.DocumentRef{{Slot: models.SlotPhoto, StorageKey: "documents/u1/photo/abc.jpg"}}

	req := httptest.NewRequest(http.MethodDelete, "/admission/documents/photo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, drafts.attached)
	assert.Empty(t, blobs.blobs)
}
