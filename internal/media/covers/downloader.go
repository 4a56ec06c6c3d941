// Package covers fetches remote cover images for posts.
// Writers can point at an image URL instead of uploading a file; the
// downloaded bytes go through the same processing as direct uploads.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/media/images"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second
)

// DownloadResult contains the result of a cover download operation.
type DownloadResult struct {
	Success  bool   // Whether the download and storage succeeded
	Width    int    // Stored image width after processing
	Height   int    // Stored image height after processing
	Size     int64  // Stored size in bytes
	BlurHash string // Placeholder hash for clients
	Error    error  // Error if Success is false
}

// Downloader fetches cover images from external URLs.
type Downloader struct {
	httpClient *http.Client
	processor  *images.Processor
	logger     *slog.Logger
}

// NewDownloader creates a new cover downloader.
func NewDownloader(processor *images.Processor, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		processor: processor,
		logger:    logger,
	}
}

// Download fetches a cover from the URL and stores it for the given post ID.
// The image runs through the standard upload pipeline, so it is validated,
// scaled, and re-encoded before landing on disk.
func (d *Downloader) Download(ctx context.Context, postID, url string) *DownloadResult {
	result := &DownloadResult{}

	if url == "" {
		result.Error = errors.New("empty cover URL")
		return result
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		result.Error = fmt.Errorf("unsupported cover URL scheme: %s", url)
		return result
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Errorf("create request: %w", err)
		return result
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("download: %w", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("download failed: status %d", resp.StatusCode)
		return result
	}

	// Read with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		result.Error = fmt.Errorf("read data: %w", err)
		return result
	}

	processed, err := d.processor.Process(images.KindCover, postID, data)
	if err != nil {
		result.Error = fmt.Errorf("process: %w", err)
		return result
	}

	result.Success = true
	result.Width = processed.Width
	result.Height = processed.Height
	result.Size = processed.Size
	result.BlurHash = processed.BlurHash

	d.logger.Info("downloaded cover",
		"post_id", postID,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)

	return result
}
