package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type uploadStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type signatureWriteStore interface {
	Save(ctx context.Context, sig *models.Signature) error
	ListBySchool(ctx context.Context, schoolCode string) ([]models.Signature, error)
}

// UploadServiceConfig bounds accepted uploads.
type UploadServiceConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	PublicPrefix     string
}

// UploadService stores background, logo and signature images on disk
// and records signature metadata.
type UploadService struct {
	storage    uploadStore
	signatures signatureWriteStore
	logger     *zap.Logger
	config     UploadServiceConfig
}

// NewUploadService constructs the upload service.
func NewUploadService(storage uploadStore, signatures signatureWriteStore, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 << 20
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/png", "image/jpeg", "image/gif"}
	}
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/uploads"
	}
	return &UploadService{storage: storage, signatures: signatures, logger: logger, config: cfg}
}

// SaveImage validates and stores one image, returning its public URL.
// Kind namespaces the file on disk ("backgrounds", "logos").
func (s *UploadService) SaveImage(ctx context.Context, schoolCode, kind, originalName string, size int64, r io.Reader) (string, error) {
	relPath, err := s.store(schoolCode, kind, originalName, size, r)
	if err != nil {
		return "", err
	}
	return s.config.PublicPrefix + "/" + relPath, nil
}

// SaveSignature stores a signature image and upserts its metadata row.
func (s *UploadService) SaveSignature(ctx context.Context, schoolCode string, role models.SignatureRole, label, uploadedBy, originalName string, size int64, r io.Reader) (*models.Signature, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown signature role %q", role))
	}
	relPath, err := s.store(schoolCode, "signatures", originalName, size, r)
	if err != nil {
		return nil, err
	}

	sig := &models.Signature{
		SchoolCode: schoolCode,
		Role:       role,
		Label:      label,
		ImagePath:  relPath,
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.signatures.Save(ctx, sig); err != nil {
		if removeErr := s.storage.Delete(relPath); removeErr != nil {
			s.logger.Warn("failed to remove orphaned signature file", zap.String("path", relPath), zap.Error(removeErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save signature")
	}
	return sig, nil
}

// ListSignatures returns the stored signature rows for a school.
func (s *UploadService) ListSignatures(ctx context.Context, schoolCode string) ([]models.Signature, error) {
	sigs, err := s.signatures.ListBySchool(ctx, schoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list signatures")
	}
	return sigs, nil
}

func (s *UploadService) store(schoolCode, kind, originalName string, size int64, r io.Reader) (string, error) {
	if size > s.config.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxFileSizeBytes))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	contentType := http.DetectContentType(head[:n])
	if !s.mimeAllowed(contentType) {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content type %s is not allowed", contentType))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	relPath := filepath.Join(schoolCode, kind, uuid.NewString()+ext)
	body := io.MultiReader(bytes.NewReader(head[:n]), r)
	if _, err := s.storage.SaveStream(relPath, body); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	return relPath, nil
}

func (s *UploadService) mimeAllowed(contentType string) bool {
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}
