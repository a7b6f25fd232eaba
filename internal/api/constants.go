package api

// apiVersion is the published OpenAPI document version.
const apiVersion = "1.0.0"

// API limits and constants.
const (
	// MaxAvatarUploadSize is the maximum allowed avatar upload (5 MB).
	MaxAvatarUploadSize = 5 << 20

	// MaxAttachmentUploadSize is the maximum allowed dream image upload (10 MB).
	MaxAttachmentUploadSize = 10 << 20
)

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-cache"
)
