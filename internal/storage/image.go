package storage

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize: предел декодированного изображения (10MB).
const MaxImageSize = 10 << 20

var (
	ErrInvalidImage     = errors.New("image must be a base64 data URI")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image is too large")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Image: декодированное изображение. Тип определяется по содержимому,
// а не по заголовку data URI.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURI разбирает строку вида "data:image/png;base64,<payload>".
func DecodeDataURI(raw string) (*Image, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrInvalidImage
	}
	header, payload, ok := strings.Cut(raw, ";base64,")
	if !ok || header == "data:" || payload == "" {
		return nil, ErrInvalidImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	ct := strings.SplitN(mt.String(), ";", 2)[0]
	if !allowedImageTypes[ct] {
		return nil, ErrUnsupportedImage
	}

	return &Image{Data: data, ContentType: ct, Ext: mt.Extension()}, nil
}
