package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	response "os_service_api/internal/adapter/http/dto/response"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"
	"os_service_api/pkg"

	"github.com/gin-gonic/gin"
)

var errMissingFile = pkg.NewDomainErrorSimple("FILE_REQUIRED", "File is required", http.StatusBadRequest)

// AttachmentHandler handles before/after photo uploads and downloads.

type AttachmentHandler struct {
	usecase usecase.IAttachmentUseCase
}

func NewAttachmentHandler(uc usecase.IAttachmentUseCase) *AttachmentHandler {
	return &AttachmentHandler{usecase: uc}
}

// UploadBeforePhoto stores a "before" photo for the order in the path.
func (h *AttachmentHandler) UploadBeforePhoto(c *gin.Context) {
	h.upload(c, entities.AttachmentTypeBefore)
}

// UploadAfterPhoto stores an "after" photo for the order in the path.
func (h *AttachmentHandler) UploadAfterPhoto(c *gin.Context) {
	h.upload(c, entities.AttachmentTypeAfter)
}

func (h *AttachmentHandler) upload(c *gin.Context, attachmentType entities.AttachmentType) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Size == 0 {
		c.JSON(errMissingFile.HTTPStatus, errMissingFile.ToHTTPError())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		appErr := mapAttachmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	defer file.Close()

	attachment, err := h.usecase.Upload(c.Request.Context(), usecase.UploadAttachmentInput{
		ServiceOrderID: c.Param("id"),
		Type:           attachmentType,
		FileName:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		SizeBytes:      fileHeader.Size,
		Data:           file,
	})
	if err != nil {
		appErr := mapAttachmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.UploadedAttachmentResponse{AttachmentID: attachment.ID})
}

// ListAttachments returns an order's attachments, oldest upload first.
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	attachments, err := h.usecase.ListByServiceOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapAttachmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromAttachments(attachments))
}

// DownloadAttachment streams the stored file bytes.
func (h *AttachmentHandler) DownloadAttachment(c *gin.Context) {
	attachment, file, err := h.usecase.GetForDownload(c.Request.Context(), c.Param("attachmentId"))
	if err != nil {
		appErr := mapAttachmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Header("Content-Type", attachment.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		// headers are already out; record the broken stream for the logger
		_ = c.Error(fmt.Errorf("stream attachment %s: %w", attachment.ID, err))
	}
}

func mapAttachmentError(err error) *pkg.AppError {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		return pkg.NewDomainErrorSimple("VALIDATION_ERROR", ve.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidServiceOrderID), errors.Is(err, usecase.ErrInvalidAttachmentID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrServiceOrderNotFound):
		return pkg.NewDomainErrorSimple("SERVICE_ORDER_NOT_FOUND", "Service order not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrAttachmentNotFound):
		return pkg.NewDomainErrorSimple("ATTACHMENT_NOT_FOUND", "Attachment not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrUnsupportedAttachmentType):
		return pkg.NewDomainErrorSimple("UNSUPPORTED_FILE_TYPE", "Only JPEG and PNG images are allowed", http.StatusBadRequest)
	case errors.Is(err, entities.ErrInvalidAttachmentSize):
		return pkg.NewDomainErrorSimple("INVALID_FILE_SIZE", "File must be between 1 byte and 5MB", http.StatusBadRequest)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
