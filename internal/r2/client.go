package r2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "lecturequiz/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectTooLarge = errors.New("object exceeds upload limit")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Client reads lecture material that was uploaded to a Cloudflare R2 bucket.
type Client struct {
	s3Client   *s3.Client
	bucketName string
}

// NewClient returns (nil, nil) when R2 is not configured, so the object
// source is simply unavailable.
func NewClient(ctx context.Context, cfg appconfig.R2) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	return newClient(ctx, endpoint, cfg, false)
}

func newClient(ctx context.Context, endpoint string, cfg appconfig.R2, pathStyle bool) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 is region-agnostic
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = pathStyle
	})
	return &Client{s3Client: s3Client, bucketName: cfg.Bucket}, nil
}

// Fetch downloads the object at key. It returns the object's base name for
// format sniffing, and fails with ErrObjectTooLarge past maxBytes.
func (c *Client) Fetch(ctx context.Context, key string, maxBytes int64) (string, []byte, error) {
	if err := validateKey(key); err != nil {
		return "", nil, err
	}

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return "", nil, fmt.Errorf("failed to get object from R2 (key: %s): %w", key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > maxBytes {
		return "", nil, fmt.Errorf("%w: %s", ErrObjectTooLarge, key)
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, maxBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read object from R2 (key: %s): %w", key, err)
	}
	if int64(len(data)) > maxBytes {
		return "", nil, fmt.Errorf("%w: %s", ErrObjectTooLarge, key)
	}
	return path.Base(key), data, nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
