package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glyphforge/sphinx/lib/ledger/ledgertest"
)

// mockS3 is an in-memory mock of the methods we use.
type mockS3 struct {
	data   map[string][]byte
	meta   map[string]map[string]string
	bucket string
	mu     sync.RWMutex
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	if m.meta == nil {
		m.meta = map[string]map[string]string{}
	}
	b, _ := io.ReadAll(in.Body)
	m.data[aws.ToString(in.Key)] = bytes.Clone(b)
	if in.Metadata != nil {
		m.meta[aws.ToString(in.Key)] = map[string]string{}
		for k, v := range in.Metadata {
			m.meta[aws.ToString(in.Key)][k] = v
		}
	}
	m.bucket = aws.ToString(in.Bucket)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	out := &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}
	if md, ok := m.meta[aws.ToString(in.Key)]; ok {
		out.Metadata = md
	}
	return out, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, aws.ToString(in.Key))
	delete(m.meta, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.data[aws.ToString(in.Key)]; !ok {
		return nil, fmt.Errorf("not found")
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestImpl(t *testing.T) {
	mock := &mockS3{}
	f := Factory{Client: mock}

	data, _ := json.Marshal(Config{
		Region:     "us-east-1",
		BucketName: "sphinx-ledger",
	})

	ledgertest.Common(t, f, json.RawMessage(data))
}

func TestKeyNormalization(t *testing.T) {
	mock := &mockS3{}
	f := Factory{Client: mock}

	data, _ := json.Marshal(Config{
		Region:     "us-east-1",
		BucketName: "sphinx-ledger",
	})

	s, err := f.Build(t.Context(), json.RawMessage(data))
	if err != nil {
		t.Fatal(err)
	}

	key := "holding:aabb:0191"
	val := []byte("value")
	if err := s.Set(t.Context(), key, val, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The mock must only ever see slash-separated object keys.
	mock.mu.RLock()
	_, hasRaw := mock.data[key]
	got, hasNorm := mock.data["holding/aabb/0191"]
	mock.mu.RUnlock()
	if hasRaw {
		t.Fatal("mock contains raw key with colon; normalization failed")
	}
	if !hasNorm || !bytes.Equal(got, val) {
		t.Fatalf("normalized key missing or wrong value: got=%q", string(got))
	}

	out, err := s.Get(t.Context(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(out, val) {
		t.Fatalf("round trip changed the value: got=%q", string(out))
	}
}

func TestFactoryValid(t *testing.T) {
	tests := []struct {
		name        string
		jsonData    string
		expectError error
	}{
		{
			name:        "empty config",
			jsonData:    `{}`,
			expectError: ErrNoRegion,
		},
		{
			name:        "missing bucket",
			jsonData:    `{"region": "us-east-1"}`,
			expectError: ErrNoBucketName,
		},
		{
			name:        "complete",
			jsonData:    `{"region": "us-east-1", "bucketName": "sphinx-ledger"}`,
			expectError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Factory{}.Valid(json.RawMessage(tt.jsonData))

			if tt.expectError == nil {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got: %v", tt.expectError, err)
			}
		})
	}
}
