package experiencetype

import (
	"net/http"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
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
	g := rg.Group("/experience-types")
	g.GET("", h.list)
	g.GET("/:query", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:query", h.update)
	a.PATCH("/:query", h.update)
	a.DELETE("/:query", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	types, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, types)
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.GetByQuery(c.Request.Context(), c.Param("query"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if t == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, t)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	fh, err := catalog.Bind(c, &dto, nil)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), middleware.CurrentActor(c), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusCreated, "Experience type created", t)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	fh, err := catalog.Bind(c, &dto, nil)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("query"), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusOK, "Experience type updated", t)
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
	response.Done(c, http.StatusOK, "Experience type deleted", nil)
}
