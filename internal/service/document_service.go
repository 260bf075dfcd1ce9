package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/validation"
	"github.com/collegeportal/admission-api/internal/wizard"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/storage"
)

type documentDraftService interface {
	AttachDocument(ctx context.Context, userID string, ref models.DocumentRef) (*dto.DraftResponse, error)
	DetachDocument(ctx context.Context, userID string, slot models.DocumentSlot) (*dto.DraftResponse, *models.DocumentRef, error)
}

// DocumentService stores wizard uploads in the blob store and keeps the
// draft's document slice in sync.
type DocumentService struct {
	drafts documentDraftService
	blobs  storage.BlobStore
	signer *storage.SignedURLSigner
	logger *zap.Logger
	now    func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(drafts documentDraftService, blobs storage.BlobStore, signer *storage.SignedURLSigner, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		drafts: drafts,
		blobs:  blobs,
		signer: signer,
		logger: logger,
		now:    time.Now,
	}
}

// Upload validates a file against its slot's rule, writes it to the blob
// store and attaches the reference to the caller's draft. The blob is removed
// again when the draft update fails, so storage never holds orphans from a
// rejected attach.
func (s *DocumentService) Upload(ctx context.Context, userID string, slot models.DocumentSlot, fileName string, size int64, contentType string, r io.Reader) (*dto.DocumentUploadResponse, error) {
	if !validSlot(slot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document slot")
	}
	if res := validation.File(size, contentType, wizard.SlotRule(slot)); !res.Valid {
		return nil, appErrors.Clone(appErrors.ErrValidation, res.Message)
	}

	key := s.blobKey(userID, slot, fileName)
	if err := s.blobs.Put(ctx, key, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	ref := models.DocumentRef{
		Slot:        slot,
		FileName:    fileName,
		Size:        size,
		ContentType: contentType,
		StorageKey:  key,
		UploadedAt:  s.now().UTC(),
	}
	if _, err := s.drafts.AttachDocument(ctx, userID, ref); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	resp := &dto.DocumentUploadResponse{Document: ref}
	if s.signer != nil {
		if token, _, err := s.signer.Generate(userID, key); err == nil {
			resp.URL = downloadPath(token)
		} else {
			s.logger.Warn("failed to sign document url", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

// Remove detaches a slot from the draft and deletes the stored blob.
func (s *DocumentService) Remove(ctx context.Context, userID string, slot models.DocumentSlot) (*dto.DraftResponse, error) {
	if !validSlot(slot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document slot")
	}
	draft, removed, err := s.drafts.DetachDocument(ctx, userID, slot)
	if err != nil {
		return nil, err
	}
	if removed != nil && removed.StorageKey != "" {
		if err := s.blobs.Delete(ctx, removed.StorageKey); err != nil {
			s.logger.Warn("failed to delete document blob", zap.String("key", removed.StorageKey), zap.Error(err))
		}
	}
	return draft, nil
}

// Open resolves a signed download token to the stored blob. The refID baked
// into the token must match the requesting user unless the caller is staff.
func (s *DocumentService) Open(ctx context.Context, token, userID string, privileged bool) (io.ReadCloser, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "document downloads are not configured")
	}
	refID, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	if !privileged && refID != userID {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this document")
	}
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "document is no longer available")
	}
	return rc, filepath.Base(key), nil
}

func (s *DocumentService) blobKey(userID string, slot models.DocumentSlot, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("documents/%s/%s/%s%s", userID, slot, uuid.NewString(), ext)
}

func validSlot(slot models.DocumentSlot) bool {
	for _, known := range models.AllDocumentSlots {
		if known == slot {
			return true
		}
	}
	return false
}

func downloadPath(token string) string {
	return "/api/v1/documents/download/" + token
}
