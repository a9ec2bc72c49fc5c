package image

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

type processor struct {
	maxBytes int64
	maxWidth int
	formats  map[string]struct{}
}

type prepared struct {
	data        []byte
	ext         string
	contentType string
}

func newProcessor(opts Options) processor {
	p := processor{maxBytes: opts.MaxBytes, maxWidth: opts.MaxWidth, formats: map[string]struct{}{}}
	for _, f := range opts.Formats {
		p.formats[normalizeExt(f)] = struct{}{}
	}
	return p
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// prepare validates fh and downsizes raster images wider than maxWidth.
// Animated GIFs and formats imaging cannot encode are stored as sent.
func (p processor) prepare(fh *multipart.FileHeader) (*prepared, error) {
	if p.maxBytes > 0 && fh.Size > p.maxBytes {
		return nil, ErrTooLarge
	}
	ext := normalizeExt(filepath.Ext(fh.Filename))
	if _, ok := p.formats[ext]; !ok || ext == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	limit := p.maxBytes
	if limit <= 0 {
		limit = 64 << 20
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotImage
	}

	format, ferr := imaging.FormatFromExtension(ext)
	if ferr != nil || format == imaging.GIF {
		return &prepared{data: data, ext: ext, contentType: contentType}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if p.maxWidth <= 0 || img.Bounds().Dx() <= p.maxWidth {
		return &prepared{data: data, ext: ext, contentType: contentType}, nil
	}

	resized := imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	return &prepared{data: buf.Bytes(), ext: ext, contentType: contentType}, nil
}
