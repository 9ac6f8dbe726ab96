// Package media downloads images from http(s) URLs or s3:// object URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/storage"
)

// downloadUserAgent is sent on image downloads; some hosts refuse requests without a browser-like agent.
const downloadUserAgent = "Mozilla/5.0"

// MaxImageBytes caps a download. Larger bodies fail with ErrTooLarge.
const MaxImageBytes = 10 << 20

var (
	// ErrNotImage is returned when the downloaded bytes are not a recognised image.
	ErrNotImage = errors.New("invalid image format")
	// ErrTooLarge is returned when the image exceeds MaxImageBytes.
	ErrTooLarge = errors.New("image too large")
	// ErrStorageNotConfigured is returned for s3:// URLs when no storage client is set.
	ErrStorageNotConfigured = errors.New("s3 storage not configured")
)

// Image is a downloaded image with its sniffed MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// ObjectStore opens stored objects. *storage.Client implements it.
type ObjectStore interface {
	GetObject(ctx context.Context, ref storage.ObjectRef) (*storage.Object, error)
	DefaultBucket() string
}

// Fetcher downloads images.
type Fetcher struct {
	httpClient *http.Client
	objects    ObjectStore
}

// NewFetcher creates a Fetcher. objects may be nil, in which case s3:// URLs are rejected.
func NewFetcher(httpClient *http.Client, objects ObjectStore) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{httpClient: httpClient, objects: objects}
}

// Fetch downloads the image at rawURL and checks that its content is an image.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(rawURL, "s3://") {
		data, err = f.fetchObject(ctx, rawURL)
	} else {
		data, err = f.fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return nil, err
	}

	mimeType := sniffImageType(data)
	if mimeType == "" {
		return nil, ErrNotImage
	}
	log.Info().Str("url", rawURL).Str("mime", mimeType).Int("bytes", len(data)).Msg("Image downloaded")
	return &Image{MIMEType: mimeType, Data: data}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download image: request failed with status code %d", resp.StatusCode)
	}
	return readCapped(resp.Body)
}

func (f *Fetcher) fetchObject(ctx context.Context, rawURL string) ([]byte, error) {
	if f.objects == nil {
		return nil, ErrStorageNotConfigured
	}
	ref, err := storage.ParseObjectURL(rawURL, f.objects.DefaultBucket())
	if err != nil {
		return nil, err
	}
	obj, err := f.objects.GetObject(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Body.Close() }()

	if obj.ContentLength > MaxImageBytes {
		return nil, ErrTooLarge
	}
	return readCapped(obj.Body)
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// sniffImageType returns the image MIME type detected from the content, or "" when it is not a raster image.
// The server-declared Content-Type is ignored.
func sniffImageType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mimeType := mimetype.Detect(data).String()
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	// SVG is markup, not pixels; vision models reject it.
	if !strings.HasPrefix(mimeType, "image/") || mimeType == "image/svg+xml" {
		return ""
	}
	return mimeType
}
