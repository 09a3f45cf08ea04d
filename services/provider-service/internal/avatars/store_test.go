package avatars

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client records PutObject/DeleteObject calls.
type mockS3Client struct {
	objects map[string][]byte
	deletes []string
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deletes = append(m.deletes, *input.Key)
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", "https://cdn.example.com", nil)

	url, err := store.Upload(context.Background(), "prov-1", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.example.com/avatars/v1/prov-1.png" {
		t.Fatalf("unexpected url: %s", url)
	}
	if string(mock.objects["avatars/v1/prov-1.png"]) != "png-bytes" {
		t.Fatal("object body not stored")
	}

	// Re-upload replaces under the same key.
	if _, err := store.Upload(context.Background(), "prov-1", "image/png", []byte("v2")); err != nil {
		t.Fatalf("re-upload: %v", err)
	}
	if string(mock.objects["avatars/v1/prov-1.png"]) != "v2" {
		t.Fatal("re-upload did not replace object")
	}
}

func TestUpload_RejectsUnknownType(t *testing.T) {
	store := NewStore(newMockS3(), "test-bucket", "https://cdn.example.com", nil)
	if _, err := store.Upload(context.Background(), "prov-1", "application/pdf", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil, "", "", nil)
	if store.Enabled() {
		t.Fatal("store with no bucket must be disabled")
	}
	url, err := store.Upload(context.Background(), "prov-1", "image/png", []byte("x"))
	if err != nil || url != "" {
		t.Fatalf("disabled store should no-op, got url=%q err=%v", url, err)
	}
}

func TestRemove(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", "https://cdn.example.com", nil)
	if _, err := store.Upload(context.Background(), "prov-1", "image/jpeg", []byte("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := store.Remove(context.Background(), "prov-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(mock.objects) != 0 {
		t.Fatalf("expected no objects left, got %d", len(mock.objects))
	}
}
