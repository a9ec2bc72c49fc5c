package experience

import (
	"net/http"
	"strings"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/models"
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
	g := rg.Group("/experiences")
	g.GET("", h.list)
	g.GET("/:query", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:query", h.update)
	a.PATCH("/:query", h.update)
	a.DELETE("/:query", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Category:      strings.TrimSpace(c.Query("category")),
		DestinationID: strings.TrimSpace(c.Query("destination")),
	}
	if raw := c.Query("difficulty"); raw != "" {
		d, err := parseDifficulty(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		f.Difficulty = d
	}
	rows, pag, err := h.svc.List(c.Request.Context(), catalog.ListQueryFromContext(c), f, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if rows == nil {
		rows = []models.ExperienceModel{}
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

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	fh, err := catalog.Bind(c, &dto, dto.jsonFields())
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	e, err := h.svc.Create(c.Request.Context(), middleware.CurrentActor(c), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusCreated, "Experience created", e)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	fh, err := catalog.Bind(c, &dto, dto.jsonFields())
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	e, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("query"), &dto, fh)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusOK, "Experience updated", e)
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
	response.Done(c, http.StatusOK, "Experience deleted", nil)
}
