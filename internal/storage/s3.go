package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// ErrInvalidObjectURL is returned for anything that is not s3://bucket/key.
var ErrInvalidObjectURL = errors.New("invalid s3 object url")

// ObjectRef identifies one object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ParseObjectURL parses s3://bucket/key. When the bucket is empty (s3:///key)
// defaultBucket is used.
func ParseObjectURL(raw, defaultBucket string) (ObjectRef, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" {
		return ObjectRef{}, ErrInvalidObjectURL
	}
	ref := ObjectRef{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}
	if ref.Bucket == "" {
		ref.Bucket = defaultBucket
	}
	if ref.Bucket == "" || ref.Key == "" {
		return ObjectRef{}, ErrInvalidObjectURL
	}
	return ref, nil
}

// Object is an object body with its stored metadata. Callers must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Client reads objects from S3 or an S3-compatible store.
type Client struct {
	s3Client      *s3.Client
	defaultBucket string
}

// NewClient creates a new S3 storage client. Empty credentials fall back to the default AWS chain.
func NewClient(ctx context.Context, endpoint, region, defaultBucket, accessKey, secretKey string) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	// MinIO / LocalStack
	if endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing and relaxed checksums keep S3-compatible backends working.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("default_bucket", defaultBucket).
		Msg("S3 client initialized")

	return &Client{s3Client: s3Client, defaultBucket: defaultBucket}, nil
}

// DefaultBucket is used for s3:///key URLs.
func (c *Client) DefaultBucket() string { return c.defaultBucket }

// GetObject opens an object for reading.
func (c *Client) GetObject(ctx context.Context, ref ObjectRef) (*Object, error) {
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	log.Debug().
		Str("bucket", ref.Bucket).
		Str("key", ref.Key).
		Msg("Reading object from S3")

	return &Object{
		Body:          result.Body,
		ContentType:   aws.ToString(result.ContentType),
		ContentLength: aws.ToInt64(result.ContentLength),
	}, nil
}
