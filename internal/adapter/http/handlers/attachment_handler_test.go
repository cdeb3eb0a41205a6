package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"os_service_api/internal/adapter/http/handlers/mocks"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

type brokenReadCloser struct{}

func (brokenReadCloser) Read([]byte) (int, error) { return 0, errors.New("read failed") }
func (brokenReadCloser) Close() error             { return nil }

func multipartFile(t *testing.T, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAttachmentHandler_Upload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing file part", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.POST("/v1/service-orders/:id/attachments/before", h.UploadBeforePhoto)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/v1/service-orders/so-1/attachments/before", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.POST("/v1/service-orders/:id/attachments/before", h.UploadBeforePhoto)

		uc.EXPECT().Upload(gomock.Any(), gomock.Any()).
			Return(entities.Attachment{}, entities.ErrUnsupportedAttachmentType)

		body, contentType := multipartFile(t, "photo.gif", "image/gif", "gif bytes")
		req := httptest.NewRequest(http.MethodPost, "/v1/service-orders/so-1/attachments/before", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if resp["code"] != "UNSUPPORTED_FILE_TYPE" {
			t.Fatalf("expected UNSUPPORTED_FILE_TYPE, got %v", resp["code"])
		}
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.POST("/v1/service-orders/:id/attachments/after", h.UploadAfterPhoto)

		uc.EXPECT().Upload(gomock.Any(), gomock.Any()).
			Return(entities.Attachment{}, usecase.ErrServiceOrderNotFound)

		body, contentType := multipartFile(t, "photo.jpg", "image/jpeg", "jpeg bytes")
		req := httptest.NewRequest(http.MethodPost, "/v1/service-orders/missing/attachments/after", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success carries the form file metadata", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.POST("/v1/service-orders/:id/attachments/before", h.UploadBeforePhoto)

		uc.EXPECT().
			Upload(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, input usecase.UploadAttachmentInput) (entities.Attachment, error) {
				if input.ServiceOrderID != "so-1" {
					t.Fatalf("expected so-1, got %q", input.ServiceOrderID)
				}
				if input.Type != entities.AttachmentTypeBefore {
					t.Fatalf("expected before, got %q", input.Type)
				}
				if input.FileName != "photo.jpg" || input.ContentType != "image/jpeg" {
					t.Fatalf("unexpected metadata: %+v", input)
				}
				data, err := io.ReadAll(input.Data)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(data) != "jpeg bytes" {
					t.Fatalf("unexpected bytes %q", data)
				}
				return entities.Attachment{ID: "att-1"}, nil
			})

		body, contentType := multipartFile(t, "photo.jpg", "image/jpeg", "jpeg bytes")
		req := httptest.NewRequest(http.MethodPost, "/v1/service-orders/so-1/attachments/before", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if resp["attachment_id"] != "att-1" {
			t.Fatalf("expected att-1, got %v", resp["attachment_id"])
		}
	})
}

func TestAttachmentHandler_ListAttachments(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIAttachmentUseCase(ctrl)
	h := NewAttachmentHandler(uc)

	r := gin.New()
	r.GET("/v1/service-orders/:id/attachments", h.ListAttachments)

	uc.EXPECT().ListByServiceOrder(gomock.Any(), "so-1").Return([]entities.Attachment{
		{
			ID:             "att-1",
			ServiceOrderID: "so-1",
			Type:           entities.AttachmentTypeBefore,
			FileName:       "engine_before.jpg",
			ContentType:    "image/jpeg",
			SizeBytes:      2048,
			UploadedAt:     time.Now().UTC(),
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/service-orders/so-1/attachments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body) != 1 || body[0]["id"] != "att-1" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body[0]["type"] != "before" {
		t.Fatalf("expected type before, got %v", body[0]["type"])
	}
}

func TestAttachmentHandler_DownloadAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.GET("/v1/service-orders/attachments/:attachmentId/download", h.DownloadAttachment)

		uc.EXPECT().GetForDownload(gomock.Any(), "missing").
			Return(entities.Attachment{}, nil, usecase.ErrAttachmentNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/service-orders/attachments/missing/download", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("broken stream is recorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		var streamErrs []error
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Next()
			for _, e := range c.Errors {
				streamErrs = append(streamErrs, e.Err)
			}
		})
		r.GET("/v1/service-orders/attachments/:attachmentId/download", h.DownloadAttachment)

		uc.EXPECT().GetForDownload(gomock.Any(), "att-1").
			Return(entities.Attachment{ID: "att-1", FileName: "f.jpg", ContentType: "image/jpeg"}, brokenReadCloser{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/service-orders/attachments/att-1/download", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if len(streamErrs) != 1 {
			t.Fatalf("expected one recorded error, got %v", streamErrs)
		}
		if !strings.Contains(streamErrs[0].Error(), "att-1") {
			t.Fatalf("error must name the attachment, got %v", streamErrs[0])
		}
	})

	t.Run("streams file with headers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIAttachmentUseCase(ctrl)
		h := NewAttachmentHandler(uc)

		r := gin.New()
		r.GET("/v1/service-orders/attachments/:attachmentId/download", h.DownloadAttachment)

		attachment := entities.Attachment{
			ID:          "att-1",
			FileName:    "engine_before.jpg",
			ContentType: "image/jpeg",
		}
		uc.EXPECT().GetForDownload(gomock.Any(), "att-1").
			Return(attachment, io.NopCloser(strings.NewReader("jpeg bytes")), nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/service-orders/attachments/att-1/download", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
			t.Fatalf("expected image/jpeg, got %q", got)
		}
		if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="engine_before.jpg"` {
			t.Fatalf("unexpected disposition %q", got)
		}
		if w.Body.String() != "jpeg bytes" {
			t.Fatalf("unexpected body %q", w.Body.String())
		}
	})
}
