package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// maxUploadBytes limits the raw upload size before decoding.
	maxUploadBytes = 10 * 1024 * 1024 // 10MB

	// maxSourcePixels rejects decompression bombs before we allocate a
	// scaled copy.
	maxSourcePixels = 40_000_000 // ~40MP

	// jpegQuality is the re-encode quality for processed uploads.
	jpegQuality = 85
)

// Kind selects the processing profile for an upload.
type Kind string

const (
	KindAvatar Kind = "avatar" // Square-ish profile images, capped at 512px
	KindCover  Kind = "cover"  // Wide post headers, capped at 2000px
)

// maxEdge returns the longest allowed edge for the kind.
func (k Kind) maxEdge() int {
	if k == KindAvatar {
		return 512
	}
	return 2000
}

// Result describes a processed and stored upload.
type Result struct {
	ID       string // Storage ID (filename stem)
	Width    int    // Final image width
	Height   int    // Final image height
	Size     int64  // Stored size in bytes
	Hash     string // SHA256 of the stored bytes, for ETags
	BlurHash string // Compact placeholder hash for clients
}

// Processor validates, scales, and stores uploaded images.
// All uploads are re-encoded as JPEG, which also strips metadata.
type Processor struct {
	avatars *Storage
	covers  *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(avatars, covers *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		avatars: avatars,
		covers:  covers,
		logger:  logger,
	}
}

// Process decodes an upload, scales it to the kind's size cap, re-encodes
// it as JPEG, and stores it under the given ID.
func (p *Processor) Process(kind Kind, id string, data []byte) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", maxUploadBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx()*bounds.Dy() > maxSourcePixels {
		return nil, fmt.Errorf("image dimensions %dx%d exceed limit", bounds.Dx(), bounds.Dy())
	}

	scaled := scaleToFit(img, kind.maxEdge())

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	storage := p.storageFor(kind)
	if err := storage.Save(id, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	hash, err := storage.Hash(id)
	if err != nil {
		return nil, fmt.Errorf("hash image: %w", err)
	}

	blur, err := ComputeBlurHash(scaled)
	if err != nil {
		// A missing placeholder is not worth failing the upload.
		p.logger.Warn("failed to compute blurhash", "id", id, "error", err)
		blur = ""
	}

	result := &Result{
		ID:       id,
		Width:    scaled.Bounds().Dx(),
		Height:   scaled.Bounds().Dy(),
		Size:     int64(buf.Len()),
		Hash:     hash,
		BlurHash: blur,
	}

	p.logger.Debug("processed upload",
		"id", id,
		"kind", string(kind),
		"format", format,
		"width", result.Width,
		"height", result.Height,
		"size", result.Size,
	)

	return result, nil
}

// Get retrieves a stored image by kind and ID.
func (p *Processor) Get(kind Kind, id string) ([]byte, error) {
	return p.storageFor(kind).Get(id)
}

// Delete removes a stored image by kind and ID.
func (p *Processor) Delete(kind Kind, id string) error {
	return p.storageFor(kind).Delete(id)
}

func (p *Processor) storageFor(kind Kind) *Storage {
	if kind == KindAvatar {
		return p.avatars
	}
	return p.covers
}

// scaleToFit downsizes an image so its longest edge is at most maxEdge,
// preserving aspect ratio. Images already within bounds are returned as-is.
func scaleToFit(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxEdge && srcHeight <= maxEdge {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxEdge
		dstHeight = (srcHeight * maxEdge) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = maxEdge
		dstWidth = (srcWidth * maxEdge) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
