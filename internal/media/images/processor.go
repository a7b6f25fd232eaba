package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// maxAvatarDimension bounds the stored avatar size. Clients render
	// avatars small; anything larger just wastes disk and bandwidth.
	maxAvatarDimension = 512

	// jpegQuality for re-encoded avatars.
	jpegQuality = 85
)

// Processor normalizes uploaded avatar images and stores them.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Storage returns the backing image storage.
func (p *Processor) Storage() *Storage {
	return p.storage
}

// Process decodes an uploaded image, downscales it if needed, re-encodes
// it as JPEG and saves it under the given ID. Accepts JPEG, PNG, GIF and
// WebP input. Returns the SHA256 hash of the stored image.
func (p *Processor) Process(id string, imageData []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	scaled := downscale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	if err := p.storage.Save(id, buf.Bytes()); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	hash, err := p.storage.Hash(id)
	if err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}

	p.logger.Debug("processed avatar",
		"id", id,
		"format", format,
		"input_bytes", len(imageData),
		"stored_bytes", buf.Len(),
	)

	return hash, nil
}

// downscale resizes an image so neither dimension exceeds
// maxAvatarDimension, preserving aspect ratio. Box sampling is plenty
// for avatar thumbnails.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxAvatarDimension && srcHeight <= maxAvatarDimension {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxAvatarDimension
		dstHeight = max((srcHeight*maxAvatarDimension)/srcWidth, 1)
	} else {
		dstHeight = maxAvatarDimension
		dstWidth = max((srcWidth*maxAvatarDimension)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
