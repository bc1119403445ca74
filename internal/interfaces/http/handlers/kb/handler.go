// Package kb serves the knowledge base: public browsing and voting, plus
// staff management of categories and items.
package kb

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/kb/dto"
	domainkb "github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

type Browser interface {
	ListCategories(ctx context.Context, actor access.Actor) ([]*dto.CategoryDTO, error)
	GetCategory(ctx context.Context, actor access.Actor, slug string) (*dto.CategoryDTO, error)
	GetItem(ctx context.Context, actor access.Actor, itemID uint) (*dto.ItemDTO, error)
	Vote(ctx context.Context, actor access.Actor, itemID uint, direction string) (*dto.ItemDTO, error)
}

type Manager interface {
	CreateCategory(ctx context.Context, actor access.Actor, s domainkb.CategorySettings) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, actor access.Actor, id uint, s domainkb.CategorySettings) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, actor access.Actor, id uint) error
	CreateItem(ctx context.Context, actor access.Actor, c domainkb.ItemContent) (*dto.ItemDTO, error)
	UpdateItem(ctx context.Context, actor access.Actor, id uint, c domainkb.ItemContent) (*dto.ItemDTO, error)
	DeleteItem(ctx context.Context, actor access.Actor, id uint) error
}

type Handler struct {
	browse Browser
	manage Manager
	logger logger.Interface
}

func NewHandler(browse Browser, manage Manager, log logger.Interface) *Handler {
	return &Handler{browse: browse, manage: manage, logger: log}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Title       string `json:"title" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=50"`
	Description string `json:"description"`
	QueueID     *uint  `json:"queue"`
	Public      bool   `json:"public"`
}

func (r *CategoryRequest) settings() domainkb.CategorySettings {
	return domainkb.CategorySettings{
		Name:        r.Name,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		QueueID:     r.QueueID,
		Public:      r.Public,
	}
}

type ItemRequest struct {
	CategoryID          uint   `json:"category" binding:"required"`
	Title               string `json:"title" binding:"required,max=100"`
	Question            string `json:"question" binding:"required"`
	Answer              string `json:"answer" binding:"required"`
	Order               int    `json:"order"`
	Enabled             *bool  `json:"enabled"`
	Team                string `json:"team"`
	AllowTicketCreation bool   `json:"allow_ticket_creation"`
}

func (r *ItemRequest) content() domainkb.ItemContent {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return domainkb.ItemContent{
		CategoryID:          r.CategoryID,
		Title:               r.Title,
		Question:            r.Question,
		Answer:              r.Answer,
		Order:               r.Order,
		Enabled:             enabled,
		Team:                r.Team,
		AllowTicketCreation: r.AllowTicketCreation,
	}
}

// ListCategories handles GET /kb
// @Summary List knowledge base categories
// @Tags kb
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /kb [get]
func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.browse.ListCategories(c.Request.Context(), common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", cats)
}

// RefParam is the single wildcard under /kb: a category slug on reads and
// an item id on votes.
const RefParam = "ref"

// GetCategory handles GET /kb/:ref
func (h *Handler) GetCategory(c *gin.Context) {
	cat, err := h.browse.GetCategory(c.Request.Context(), common.Actor(c), c.Param(RefParam))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", cat)
}

// GetItem handles GET /kb/item/:id
func (h *Handler) GetItem(c *gin.Context) {
	itemID, err := utils.ParseIDParam(c, "id", "item")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	item, err := h.browse.GetItem(c.Request.Context(), common.Actor(c), itemID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", item)
}

// Vote handles POST /kb/:ref/vote/:direction
// @Summary Vote on a knowledge base item
// @Description direction is up or down. Voting again the same way is a no-op.
// @Tags kb
// @Produce json
// @Param id path int true "Item ID"
// @Param direction path string true "up or down"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /kb/{id}/vote/{direction} [post]
func (h *Handler) Vote(c *gin.Context) {
	itemID, err := utils.ParseIDParam(c, RefParam, "item")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	item, err := h.browse.Vote(c.Request.Context(), common.Actor(c), itemID, c.Param("direction"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", item)
}

// CreateCategory handles POST /admin/kb/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	cat, err := h.manage.CreateCategory(c.Request.Context(), common.Actor(c), req.settings())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, cat, "Category created")
}

// UpdateCategory handles PUT /admin/kb/categories/:id
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "category")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	cat, err := h.manage.UpdateCategory(c.Request.Context(), common.Actor(c), id, req.settings())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Category updated", cat)
}

// DeleteCategory handles DELETE /admin/kb/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "category")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.manage.DeleteCategory(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// CreateItem handles POST /admin/kb/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	item, err := h.manage.CreateItem(c.Request.Context(), common.Actor(c), req.content())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, item, "Item created")
}

// UpdateItem handles PUT /admin/kb/items/:id
func (h *Handler) UpdateItem(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "item")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	item, err := h.manage.UpdateItem(c.Request.Context(), common.Actor(c), id, req.content())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Item updated", item)
}

// DeleteItem handles DELETE /admin/kb/items/:id
func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "item")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.manage.DeleteItem(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
