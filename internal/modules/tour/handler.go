package tour

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/pkg/markdown"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

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
	g := rg.Group("/tours")
	g.GET("", h.list)
	g.GET("/:query", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:query", h.update)
	a.PATCH("/:query", h.update)
	a.DELETE("/:query", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	rows, pag, err := h.svc.List(c.Request.Context(), catalog.ListQueryFromContext(c), c.Query("category"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pag)
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.Detail(c.Request.Context(), c.Param("query"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c)
		return
	}
	d.DescriptionHTML = markdown.Render(d.Description)
	response.OK(c, d)
}

// formDays reads the JSON-encoded days field of a form submission. The
// second result is false when the field was not sent.
func formDays(c *gin.Context) (json.RawMessage, bool) {
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		return nil, false
	}
	raw, ok := c.GetPostForm("days")
	return json.RawMessage(raw), ok
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	fh, err := catalog.Bind(c, &dto, dto.jsonFields())
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	if raw, ok := formDays(c); ok {
		dto.Days = raw
	}
	t, err := h.svc.Create(c.Request.Context(), middleware.CurrentActor(c), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusCreated, "Tour created", t)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	fh, err := catalog.Bind(c, &dto, dto.jsonFields())
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	if raw, ok := formDays(c); ok {
		dto.Days = raw
	}
	t, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("query"), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusOK, "Tour updated", t)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("query"))
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	if !ok {
		response.Fail(c, http.StatusNotFound, "Not found")
		return
	}
	response.Done(c, http.StatusOK, "Tour deleted", nil)
}
