package api

// API limits and constants.
const (
	// MaxUploadSize is the maximum allowed size for image uploads (10 MB).
	MaxUploadSize = 10 << 20
)

// CacheOneDay is the Cache-Control value for served media. Stored images
// change rarely and re-uploads overwrite in place.
const CacheOneDay = "public, max-age=86400"
