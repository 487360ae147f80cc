package uploads

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/boutique2v/commerce-backend/pkg/config"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

type stubObjectStore struct {
	objects map[string][]byte
	removed []string
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: map[string][]byte{}}
}

func (s *stubObjectStore) Write(_ context.Context, objectPath string, data []byte) error {
	s.objects[objectPath] = data
	return nil
}

func (s *stubObjectStore) Remove(_ context.Context, objectPath string) error {
	s.removed = append(s.removed, objectPath)
	delete(s.objects, objectPath)
	return nil
}

func (s *stubObjectStore) PublicURL(objectPath string) (string, error) {
	return "/uploads/" + objectPath, nil
}

func newTestService(t *testing.T, store *stubObjectStore, maxMB int) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "uploads-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Store:  store,
		Config: config.UploadsConfig{MaxUploadMB: maxMB, MaxFiles: 8},
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadImageStoresSniffedPNG(t *testing.T) {
	store := newStubObjectStore()
	svc := newTestService(t, store, 10)

	result, err := svc.UploadImage(context.Background(), UploadInput{
		Scope:    ScopeProducts,
		FileName: "board.png",
		Data:     pngBytes(t),
	})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if result.ContentType != "image/png" {
		t.Fatalf("content type = %q", result.ContentType)
	}
	if !strings.HasPrefix(result.ObjectPath, "products/") || !strings.HasSuffix(result.ObjectPath, ".png") {
		t.Fatalf("object path = %q", result.ObjectPath)
	}
	if result.URL != "/uploads/"+result.ObjectPath {
		t.Fatalf("url = %q", result.URL)
	}
	if _, ok := store.objects[result.ObjectPath]; !ok {
		t.Fatal("object was not written")
	}
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	svc := newTestService(t, newStubObjectStore(), 10)

	// an executable header renamed to .png must still be rejected
	_, err := svc.UploadImage(context.Background(), UploadInput{
		Scope:    ScopeProducts,
		FileName: "innocent.png",
		Data:     []byte("%PDF-1.7 definitely not an image"),
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestUploadImageRejectsOversizedAndEmpty(t *testing.T) {
	svc := newTestService(t, newStubObjectStore(), 1)
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, UploadInput{Scope: ScopeAvatars, Data: nil})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("empty: got %v", err)
	}

	big := make([]byte, 1024*1024+1)
	_, err = svc.UploadImage(ctx, UploadInput{Scope: ScopeAvatars, Data: big})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("oversized: got %v", err)
	}
}

func TestUploadImageRejectsUnknownScope(t *testing.T) {
	svc := newTestService(t, newStubObjectStore(), 10)

	_, err := svc.UploadImage(context.Background(), UploadInput{
		Scope: Scope("../../etc"),
		Data:  pngBytes(t),
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestRemove(t *testing.T) {
	store := newStubObjectStore()
	svc := newTestService(t, store, 10)
	ctx := context.Background()

	result, err := svc.UploadImage(ctx, UploadInput{Scope: ScopeAvatars, Data: pngBytes(t)})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if err := svc.Remove(ctx, result.ObjectPath); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != result.ObjectPath {
		t.Fatalf("removed = %v", store.removed)
	}
}
