package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agoodis/product-management-system/internal/apierror"
	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/feed"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/service"
)

type ImportsHandler struct{ svc service.ImportService }

func NewImportsHandler(svc service.ImportService) *ImportsHandler {
	return &ImportsHandler{svc: svc}
}

// Run accepts a multipart file upload and executes the import synchronously:
// POST /v1/imports/:source. The response is the finalized ImportLog; an
// unreadable file still produces (and returns) a failed log entry.
func (h *ImportsHandler) Run(c *gin.Context) {
	src, ok := model.ParseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New("unknown import source"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing file upload"))
		return
	}

	open := func() (feed.Feed, error) {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, &feed.UnreadableError{Reason: "opening upload", Err: err}
		}
		return openUpload(fileHeader, f)
	}

	run, fatal := h.svc.Run(c.Request.Context(), src, fileHeader.Filename, open)
	if run == nil {
		c.Error(fatal)
		c.JSON(http.StatusInternalServerError, apierror.New("import failed to start"))
		return
	}
	if fatal != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": fatal.Error(),
			"log":    dto.NewImportLogResponse(run),
		})
		return
	}
	c.JSON(http.StatusOK, dto.NewImportLogResponse(run))
}

func openUpload(fh *multipart.FileHeader, f multipart.File) (feed.Feed, error) {
	fd, err := feed.Open(fh.Filename, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return fd, nil
}

// Logs serves the import history, newest first: GET /v1/imports/logs?limit=50.
func (h *ImportsHandler) Logs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, apierror.New("limit must be between 1 and 500"))
		return
	}
	logs, err := h.svc.Logs(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list import logs"))
		return
	}
	c.JSON(http.StatusOK, logs)
}
