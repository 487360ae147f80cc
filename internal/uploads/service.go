package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/pkg/config"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// Scope names the folder an upload lands in. Scopes are enumerated so a
// request can never choose an arbitrary storage path.
type Scope string

const (
	ScopeProducts Scope = "products"
	ScopeAvatars  Scope = "avatars"
)

var validScopes = []Scope{ScopeProducts, ScopeAvatars}

// allowedImageTypes is what the sniffer must report. The client-declared
// content type is ignored entirely.
var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ObjectStore is the storage surface uploads are written through.
type ObjectStore interface {
	Write(ctx context.Context, objectPath string, data []byte) error
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) (string, error)
}

// UploadInput is one file received from a multipart form.
type UploadInput struct {
	Scope    Scope
	FileName string
	Data     []byte
}

// UploadResult describes a stored file.
type UploadResult struct {
	URL         string `json:"url"`
	ObjectPath  string `json:"object_path"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Service exposes image upload handling.
type Service interface {
	UploadImage(ctx context.Context, input UploadInput) (*UploadResult, error)
	Remove(ctx context.Context, objectPath string) error
}

// ServiceParams wires the upload service dependencies.
type ServiceParams struct {
	Store  ObjectStore
	Config config.UploadsConfig
	Logger *logger.Logger
}

type service struct {
	store    ObjectStore
	maxBytes int64
	logg     *logger.Logger
}

// NewService constructs the upload service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Config.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    params.Store,
		maxBytes: int64(params.Config.MaxUploadMB) * 1024 * 1024,
		logg:     params.Logger,
	}, nil
}

// UploadImage sniffs the payload, rejects anything that is not an image and
// writes it under a fresh random name inside the scope's folder.
func (s *service) UploadImage(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if !lo.Contains(validScopes, input.Scope) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid upload scope %q", input.Scope))
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(input.Data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes/(1024*1024)))
	}

	detected := mimetype.Detect(input.Data)
	if !lo.Contains(allowedImageTypes, detected.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported file type %s, only images are accepted", detected.String()))
	}

	objectPath := fmt.Sprintf("%s/%s%s", input.Scope, uuid.NewString(), detected.Extension())
	if err := s.store.Write(ctx, objectPath, input.Data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing upload")
	}

	url, err := s.store.PublicURL(objectPath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving upload url")
	}

	ctx = s.logg.WithField(ctx, "object_path", objectPath)
	s.logg.Info(ctx, fmt.Sprintf("stored %s upload %q", detected.String(), sanitizeName(input.FileName)))

	return &UploadResult{
		URL:         url,
		ObjectPath:  objectPath,
		ContentType: detected.String(),
		SizeBytes:   int64(len(input.Data)),
	}, nil
}

// Remove deletes a previously stored object.
func (s *service) Remove(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object path is required")
	}
	if err := s.store.Remove(ctx, objectPath); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing upload")
	}
	return nil
}

// sanitizeName keeps the original client filename loggable without letting
// path fragments through.
func sanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return "unnamed"
	}
	return base
}
