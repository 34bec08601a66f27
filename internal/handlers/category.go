package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/category"
	"github.com/ifixzone/shop/internal/models"
	"github.com/ifixzone/shop/internal/util"
)

type CategoryHandler struct {
	DB *gorm.DB
}

// forest loads the current category snapshot. The resolver itself is pure;
// callers get a fresh snapshot per request.
func (h *CategoryHandler) forest(c echo.Context) (*category.Forest, error) {
	var categories []models.Category
	if err := h.DB.WithContext(c.Request().Context()).Find(&categories).Error; err != nil {
		return nil, err
	}
	return category.NewForest(categories), nil
}

func (h *CategoryHandler) Menu(c echo.Context) error {
	f, err := h.forest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, f.Tree())
}

func (h *CategoryHandler) Breadcrumb(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	f, err := h.forest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	path := f.BreadcrumbPath(uint(id))
	if path == nil {
		path = []models.Category{}
	}
	return c.JSON(http.StatusOK, path)
}

// Products lists active products in the category and all of its
// descendants.
func (h *CategoryHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	f, err := h.forest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	scope := f.ScopedIDs(uint(id))

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(ctx).Model(&models.Product{}).
		Where("category_id IN ? AND active = ?", scope, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}
