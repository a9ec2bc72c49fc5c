package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ImageField is the multipart field an entity image arrives in.
const ImageField = "image"

// Bind fills dto from a JSON body or a multipart/urlencoded form and returns
// the uploaded image, if any. In the form case the values of jsonFields
// (field name → pointer to the destination) hold JSON-encoded lists and
// objects and are decoded strictly; absent fields are left untouched.
func Bind(c *gin.Context, dto any, jsonFields map[string]any) (*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		if err := c.ShouldBindJSON(dto); err != nil {
			return nil, Invalid("%v", err)
		}
		return nil, nil
	}

	if err := c.ShouldBind(dto); err != nil {
		return nil, Invalid("%v", err)
	}
	for name, dst := range jsonFields {
		raw, ok := c.GetPostForm(name)
		if !ok {
			continue
		}
		if err := DecodeJSONField(raw, dst); err != nil {
			return nil, Invalid("%s: %v", name, err)
		}
	}

	fh, err := c.FormFile(ImageField)
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, Invalid("image: %v", err)
	}
}

// DecodeJSONField decodes exactly one JSON value into dst, rejecting
// unknown object keys. Blank input leaves dst untouched.
func DecodeJSONField(raw string, dst any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
