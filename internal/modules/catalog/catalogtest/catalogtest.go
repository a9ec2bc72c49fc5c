// Package catalogtest provides HTTP and storage doubles for catalog tests.
package catalogtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	Placeholder = "/uploads/placeholder.jpg"
	AdminID     = "admin-1"
)

// Admin is an authenticated actor for direct service calls.
var Admin = authz.Actor{UserID: AdminID, SessionID: "s-1"}

// FakeAuth admits any request carrying an Authorization header.
func FakeAuth(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.ContextKeyUserID, AdminID)
	c.Set(middleware.ContextKeySID, "s-1")
	c.Next()
}

// Images records calls and hands out /uploads/<filename> URLs.
type Images struct {
	mu      sync.Mutex
	Fail    bool
	Deleted []string
}

func (f *Images) Upload(_ context.Context, fh *multipart.FileHeader) (string, error) {
	if f.Fail {
		return Placeholder, errors.New("storage down")
	}
	return "/uploads/" + fh.Filename, nil
}

func (f *Images) Delete(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, url)
	return true, nil
}

// Result mirrors the admin mutation contract.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do serves req and decodes the body as a Result.
func Do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, Result) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out Result
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// Multipart builds an authenticated multipart request. A non-empty
// fileName attaches a small PNG under the "image" field.
func Multipart(t *testing.T, method, target string, fields map[string]string, fileName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test")
	return req
}

// JSON builds an authenticated JSON request.
func JSON(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test")
	return req
}

// FileHeader returns a parsed upload named name carrying a small PNG.
func FileHeader(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	req := Multipart(t, http.MethodPost, "/", nil, name)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	files := req.MultipartForm.File["image"]
	require.Len(t, files, 1)
	return files[0]
}
