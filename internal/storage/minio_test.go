package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/config"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref        string
		wantBucket string
		wantKey    string
		wantOK     bool
	}{
		{"s3://vehicle-images/vehicles/1/a.jpg", "vehicle-images", "vehicles/1/a.jpg", true},
		{"s3://bucket/k", "bucket", "k", true},
		{"https://example.com/a.jpg", "", "", false},
		{"s3://bucket", "", "", false},
		{"s3:///key", "", "", false},
		{"s3://bucket/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, ok := ParseRef(tt.ref)
			if bucket != tt.wantBucket || key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("ParseRef(%q) = %q, %q, %v", tt.ref, bucket, key, ok)
			}
		})
	}
}

func TestFormatRefRoundTrip(t *testing.T) {
	ref := FormatRef("vehicle-images", "vehicles/x/y.png")
	bucket, key, ok := ParseRef(ref)
	if !ok || bucket != "vehicle-images" || key != "vehicles/x/y.png" {
		t.Errorf("round trip of %q = %q, %q, %v", ref, bucket, key, ok)
	}
}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	store, err := NewImageStore(config.S3Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		Bucket:          "vehicle-images",
		Region:          "us-east-1",
		URLExpiry:       time.Hour,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	return store
}

func TestURLPassesThroughExternalRefs(t *testing.T) {
	store := newTestStore(t)
	got, err := store.URL(context.Background(), "https://cdn.example.com/clio.jpg")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if got != "https://cdn.example.com/clio.jpg" {
		t.Errorf("URL = %q", got)
	}
}

func TestURLPresignsLocally(t *testing.T) {
	store := newTestStore(t)
	got, err := store.URL(context.Background(), "s3://vehicle-images/vehicles/1/a.jpg")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:9000/vehicle-images/vehicles/1/a.jpg?") {
		t.Errorf("URL = %q", got)
	}
	if !strings.Contains(got, "X-Amz-Signature=") {
		t.Errorf("URL %q is not signed", got)
	}
}

func TestRemoveIgnoresExternalRefs(t *testing.T) {
	store := newTestStore(t)
	if err := store.Remove(context.Background(), "https://cdn.example.com/clio.jpg"); err != nil {
		t.Errorf("Remove: %v", err)
	}
}

func TestForeignBucketRefsAreRefused(t *testing.T) {
	store := newTestStore(t)
	ref := "s3://backups/db/prod.dump"

	got, err := store.URL(context.Background(), ref)
	if !errors.Is(err, ErrForeignBucket) {
		t.Fatalf("URL err = %v, want ErrForeignBucket", err)
	}
	if got != "" {
		t.Errorf("URL = %q, want empty", got)
	}
	if err := store.Remove(context.Background(), ref); !errors.Is(err, ErrForeignBucket) {
		t.Errorf("Remove err = %v, want ErrForeignBucket", err)
	}
}
