package service

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"shelftalk/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	ThumbnailMaxSize = 256
	WebPQuality      = 70
)

// ImageService validates inline message image payloads and produces webp
// preview thumbnails for the conversation summary pipeline.
type ImageService struct{}

// NewImageService returns a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ValidatePayload checks a base64-encoded inline image: size cap, MIME
// sniff, and an actual decode. Returns the decoded image on success.
func (s *ImageService) ValidatePayload(payload string) (image.Image, error) {
	if payload == "" {
		return nil, models.NewValidationError("No image payload provided")
	}
	if len(payload) > models.MaxImagePayloadBytes {
		return nil, models.NewPayloadTooLargeError("Image payload exceeds the 1 MiB limit")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, models.NewValidationError("Image payload is not valid base64")
	}

	detectedType := http.DetectContentType(raw)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	return decoded, nil
}

// BuildPreviewThumbnail scales the image down to the thumbnail bound and
// returns it as a base64-encoded webp.
func (s *ImageService) BuildPreviewThumbnail(decoded image.Image) (string, error) {
	resized := resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
