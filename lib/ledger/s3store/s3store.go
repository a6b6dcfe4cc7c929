// Package s3store keeps the ledger in an S3 bucket. S3 has no native TTL,
// so expiring values carry their deadline in object metadata and are
// reaped on read.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glyphforge/sphinx/lib/ledger"
)

const expiryMetaKey = "x-sphinx-expiry-ms"

// S3API is the subset of the AWS S3 client this store uses. It enables
// mocking in tests.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type Store struct {
	s3     S3API
	bucket string
}

var _ ledger.Interface = (*Store)(nil)

// normKey maps ledger keys onto S3 paths so asset and holding records end
// up under separate prefixes.
func normKey(key string) string {
	return strings.ReplaceAll(key, ":", "/")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	objKey := normKey(key)
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &objKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrNotFound, err)
	}
	defer out.Body.Close()

	if msStr, ok := out.Metadata[expiryMetaKey]; ok && msStr != "" {
		if ms, err := strconv.ParseInt(msStr, 10, 64); err == nil {
			if time.Now().UnixMilli() >= ms {
				_, _ = s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &objKey})
				return nil, fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
			}
		}
	}

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read s3 object: %w", err)
	}
	return b, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	objKey := normKey(key)

	var meta map[string]string
	if expiry > 0 {
		meta = map[string]string{
			expiryMetaKey: strconv.FormatInt(time.Now().Add(expiry).UnixMilli(), 10),
		}
	}

	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   &s.bucket,
		Key:      &objKey,
		Body:     bytes.NewReader(value),
		Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("can't put s3 object: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	objKey := normKey(key)

	// Emulate not-found by probing first.
	if _, err := s.s3.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objKey}); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrNotFound, err)
	}
	if _, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &objKey}); err != nil {
		return fmt.Errorf("can't delete from s3: %w", err)
	}
	return nil
}
