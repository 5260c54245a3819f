package app

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Photo is an uploaded applicant picture.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether there is nothing to store.
func (p *Photo) Empty() bool {
	return p == nil || len(p.Data) == 0
}

// Extension returns the lower-cased file extension, "jpg" when there is none.
func (p *Photo) Extension() string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p.Filename), "."))
	if ext == "" {
		return "jpg"
	}
	return ext
}

// MimeType returns the declared content type or one derived from the extension.
func (p *Photo) MimeType() string {
	if p.ContentType != "" {
		return p.ContentType
	}
	ext := p.Extension()
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}

// PhotoPath builds the object key {prefix}/{card_no}-{unix_millis}.{ext}.
func PhotoPath(prefix, cardNo, ext string, at time.Time) string {
	return fmt.Sprintf("%s/%s-%d.%s", prefix, cardNo, at.UnixMilli(), ext)
}

// downscalePhoto shrinks p so neither side exceeds maxDim, keeping its format.
// Photos that cannot be decoded, or already fit, are returned untouched.
func downscalePhoto(p *Photo, maxDim int) *Photo {
	if p.Empty() || maxDim <= 0 {
		return p
	}
	format, err := imaging.FormatFromFilename(p.Filename)
	if err != nil {
		return p
	}
	img, err := imaging.Decode(bytes.NewReader(p.Data), imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("photo %q not decodable, storing as is: %v", p.Filename, err)
		return p
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return p
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		log.Printf("photo %q re-encode failed, storing as is: %v", p.Filename, err)
		return p
	}
	return &Photo{
		Filename:    p.Filename,
		ContentType: p.ContentType,
		Data:        buf.Bytes(),
	}
}
