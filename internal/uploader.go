package internal

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authoring "github.com/arabhyaWorks/arunachal-authoring"
)

// S3Uploader stores media files in an S3 bucket and returns a public URL
// per upload. Keys are UUIDv7-prefixed so concurrent uploads of the same
// filename never collide.
type S3Uploader struct {
	uploader      *manager.Uploader
	bucket        string
	keyPrefix     string
	publicBaseURL string
	maxFileBytes  int64
	logger        *zap.SugaredLogger
}

// NewS3Uploader wraps an S3 client with the upload manager.
func NewS3Uploader(client *s3.Client, cfg authoring.UploadConfig, logger *zap.SugaredLogger) *S3Uploader {
	if logger == nil {
		logger = zap.S()
	}
	return &S3Uploader{
		uploader:      manager.NewUploader(client),
		bucket:        cfg.Bucket,
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxFileBytes:  cfg.MaxFileBytes,
		logger:        logger,
	}
}

// Upload streams one file to the bucket and returns the public URL.
func (u *S3Uploader) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	key := u.objectKey(filename)

	if u.maxFileBytes > 0 {
		body = &limitedReader{r: body, remaining: u.maxFileBytes}
	}

	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		u.logger.Errorw("s3 upload failed", "bucket", u.bucket, "key", key, "error", err)
		return "", fmt.Errorf("upload %s to s3: %w", filename, err)
	}

	uri := u.publicBaseURL + "/" + key
	u.logger.Infow("file uploaded to s3", "bucket", u.bucket, "key", key)
	return uri, nil
}

func (u *S3Uploader) objectKey(filename string) string {
	name := sanitizeFilename(filename)
	key := uuid.Must(uuid.NewV7()).String() + "-" + name
	if u.keyPrefix != "" {
		key = u.keyPrefix + "/" + key
	}
	return key
}

func sanitizeFilename(filename string) string {
	name := path.Base(filename)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}

// limitedReader fails the read once the byte limit is exhausted, so an
// oversized stream aborts the upload instead of silently truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, fmt.Errorf("file exceeds maximum upload size")
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("file exceeds maximum upload size")
	}
	return n, err
}
