package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"wetwatch/internal/types"
)

// S3API abstracts the S3 operations the store uses, for testability.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store retains artifacts in an S3 bucket under a key prefix. It serves
// off-box retention of per-detection copies; the canonical files the
// detector reads stay on the local filesystem.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	logger types.Logger
}

// Compile-time assertion that S3Store implements types.ArtifactStore.
var _ types.ArtifactStore = (*S3Store)(nil)

// NewS3Store creates an S3-backed artifact store.
func NewS3Store(client S3API, bucket, prefix string, logger types.Logger) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3Store) key(name string) string {
	return s.prefix + name
}

// Write uploads the named artifact.
func (s *S3Store) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to upload artifact s3://%s/%s", s.bucket, s.key(name)), err)
	}
	s.logger.Info("artifact uploaded",
		"bucket", s.bucket,
		"key", s.key(name),
		"bytes", len(data),
	)
	return nil
}

// Read downloads the named artifact.
func (s *S3Store) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeArtifactMissing,
			fmt.Sprintf("s3://%s/%s not found", s.bucket, s.key(name)), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeArtifactInvalid,
			fmt.Sprintf("failed to read artifact s3://%s/%s", s.bucket, s.key(name)), err)
	}
	return data, nil
}

// Stat returns the size of the named artifact.
func (s *S3Store) Stat(ctx context.Context, name string) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeArtifactMissing,
			fmt.Sprintf("s3://%s/%s not found", s.bucket, s.key(name)), err)
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

// contentType maps artifact names to MIME types for the object metadata.
func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
