package hotel

import (
	"net/http"
	"strings"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/pkg/markdown"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
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
	g := rg.Group("/hotels")
	g.GET("", h.list)
	g.GET("/:query", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:query", h.update)
	a.PATCH("/:query", h.update)
	a.DELETE("/:query", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{DestinationID: strings.TrimSpace(c.Query("destination"))}
	if raw := c.Query("price_tier"); raw != "" {
		tier, err := ParsePriceTier(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		f.PriceTier = tier
	}
	rows, pag, err := h.svc.List(c.Request.Context(), catalog.ListQueryFromContext(c), f, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pag)
}

func (h *Handler) get(c *gin.Context) {
	hotel, err := h.svc.GetByQuery(c.Request.Context(), c.Param("query"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if hotel == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{
		"id":               hotel.ID,
		"slug":             hotel.Slug,
		"title":            hotel.Title,
		"description":      hotel.Description,
		"description_html": markdown.Render(hotel.Description),
		"image":            hotel.Image,
		"priority":         hotel.Priority,
		"destination_id":   hotel.DestinationID,
		"rating":           hotel.Rating,
		"price_tier":       hotel.PriceTier,
		"created":          hotel.CreatedAt,
		"modified":         hotel.UpdatedAt,
	})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	fh, err := catalog.Bind(c, &dto, nil)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	hotel, err := h.svc.Create(c.Request.Context(), middleware.CurrentActor(c), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusCreated, "Hotel created", hotel)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	fh, err := catalog.Bind(c, &dto, nil)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	hotel, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("query"), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusOK, "Hotel updated", hotel)
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
	response.Done(c, http.StatusOK, "Hotel deleted", nil)
}
