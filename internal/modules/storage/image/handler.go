package image

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes ad-hoc uploads for gallery images and markdown bodies.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/images", authMW)
	g.POST("", h.upload)
	g.DELETE("", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fh, err = c.FormFile("image")
	}
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "file is required")
		return
	}

	url, err := h.svc.Upload(c.Request.Context(), fh)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrNotImage):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("upload image", zap.Error(err))
			response.Fail(c, http.StatusInternalServerError, "upload failed")
		}
		return
	}
	response.Done(c, http.StatusCreated, "uploaded", gin.H{"url": url})
}

func (h *Handler) delete(c *gin.Context) {
	var body struct {
		URL string `json:"url" form:"url"`
	}
	if err := c.ShouldBind(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		response.Fail(c, http.StatusBadRequest, "url is required")
		return
	}
	removed, err := h.svc.Delete(c.Request.Context(), body.URL)
	if err != nil {
		h.logger.Error("delete image", zap.String("url", body.URL), zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	response.Done(c, http.StatusOK, "deleted", gin.H{"removed": removed})
}
