package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestProcessor(t *testing.T) *Processor {
	t.Helper()
	tmpDir := t.TempDir()

	avatars, err := NewAvatarStorage(tmpDir)
	require.NoError(t, err)
	covers, err := NewCoverStorage(tmpDir)
	require.NoError(t, err)

	return NewProcessor(avatars, covers, slog.New(slog.DiscardHandler))
}

// makeTestPNG encodes a solid-color PNG of the given dimensions.
func makeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 80, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessor_Process(t *testing.T) {
	t.Run("stores a small image unscaled", func(t *testing.T) {
		p := setupTestProcessor(t)
		data := makeTestPNG(t, 400, 300)

		result, err := p.Process(KindCover, "post-123", data)
		require.NoError(t, err)

		assert.Equal(t, "post-123", result.ID)
		assert.Equal(t, 400, result.Width)
		assert.Equal(t, 300, result.Height)
		assert.NotZero(t, result.Size)
		assert.Len(t, result.Hash, 64)
		assert.NotEmpty(t, result.BlurHash)

		// Stored bytes decode as JPEG regardless of upload format.
		stored, err := p.Get(KindCover, "post-123")
		require.NoError(t, err)
		img, err := jpeg.Decode(bytes.NewReader(stored))
		require.NoError(t, err)
		assert.Equal(t, 400, img.Bounds().Dx())
	})

	t.Run("scales avatars down to 512px", func(t *testing.T) {
		p := setupTestProcessor(t)
		data := makeTestPNG(t, 1024, 768)

		result, err := p.Process(KindAvatar, "user-1", data)
		require.NoError(t, err)

		assert.Equal(t, 512, result.Width)
		assert.Equal(t, 384, result.Height)
	})

	t.Run("preserves aspect ratio for portrait images", func(t *testing.T) {
		p := setupTestProcessor(t)
		data := makeTestPNG(t, 600, 1200)

		result, err := p.Process(KindAvatar, "user-2", data)
		require.NoError(t, err)

		assert.Equal(t, 256, result.Width)
		assert.Equal(t, 512, result.Height)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		p := setupTestProcessor(t)

		_, err := p.Process(KindCover, "post-123", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "image data cannot be empty")
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		p := setupTestProcessor(t)

		_, err := p.Process(KindCover, "", makeTestPNG(t, 10, 10))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ID cannot be empty")
	})

	t.Run("rejects non-image data", func(t *testing.T) {
		p := setupTestProcessor(t)

		_, err := p.Process(KindCover, "post-123", []byte("definitely not an image"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decode image")
	})
}

func TestProcessor_Delete(t *testing.T) {
	p := setupTestProcessor(t)

	_, err := p.Process(KindAvatar, "user-1", makeTestPNG(t, 64, 64))
	require.NoError(t, err)

	require.NoError(t, p.Delete(KindAvatar, "user-1"))

	_, err = p.Get(KindAvatar, "user-1")
	assert.Error(t, err)
}

func TestScaleToFit(t *testing.T) {
	t.Run("returns small images unchanged", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 100, 50))
		scaled := scaleToFit(img, 512)
		assert.Equal(t, img.Bounds(), scaled.Bounds())
	})

	t.Run("caps the longest edge", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4000, 1000))
		scaled := scaleToFit(img, 2000)
		assert.Equal(t, 2000, scaled.Bounds().Dx())
		assert.Equal(t, 500, scaled.Bounds().Dy())
	})
}

func TestComputeBlurHash(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	hash, err := ComputeBlurHash(img)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Same image always produces the same hash.
	hash2, err := ComputeBlurHash(img)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}
