package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agoodis/product-management-system/internal/apierror"
	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/repository"
	"github.com/agoodis/product-management-system/internal/service"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid pagination parameters"))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("barcode"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to load product"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Patch(c *gin.Context) {
	var req dto.PatchProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Patch(c.Request.Context(), c.Param("barcode"), req)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to update product"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Brands(c *gin.Context) {
	brands, err := h.svc.Brands(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list brands"))
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *ProductsHandler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list categories"))
		return
	}
	c.JSON(http.StatusOK, categories)
}
