package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"os_service_api/internal/domain/entities"
	mock_interfaces "os_service_api/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func validUpload() UploadAttachmentInput {
	return UploadAttachmentInput{
		ServiceOrderID: "so-1",
		Type:           entities.AttachmentTypeBefore,
		FileName:       "engine_before.jpg",
		ContentType:    "image/jpeg",
		SizeBytes:      2048,
		Data:           strings.NewReader("jpeg bytes"),
	}
}

func TestAttachmentUseCase_Upload(t *testing.T) {
	t.Run("empty service order id", func(t *testing.T) {
		uc := NewAttachmentUseCase(nil, nil, nil, zap.NewNop())
		input := validUpload()
		input.ServiceOrderID = " "
		_, err := uc.Upload(context.Background(), input)
		if !errors.Is(err, ErrInvalidServiceOrderID) {
			t.Fatalf("expected ErrInvalidServiceOrderID, got %v", err)
		}
	})

	t.Run("order not found before any write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(entities.ServiceOrder{}, nil)

		_, err := uc.Upload(context.Background(), validUpload())
		if !errors.Is(err, ErrServiceOrderNotFound) {
			t.Fatalf("expected ErrServiceOrderNotFound, got %v", err)
		}
	})

	t.Run("policy rejection before any write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(reconstituteOrder("so-1", entities.ServiceOrderStatusOpen, nil), nil)

		input := validUpload()
		input.ContentType = "image/gif"
		input.FileName = "engine.gif"
		_, err := uc.Upload(context.Background(), input)
		if !errors.Is(err, entities.ErrUnsupportedAttachmentType) {
			t.Fatalf("expected ErrUnsupportedAttachmentType, got %v", err)
		}
	})

	t.Run("oversized file rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(reconstituteOrder("so-1", entities.ServiceOrderStatusOpen, nil), nil)

		input := validUpload()
		input.SizeBytes = entities.MaxAttachmentSizeBytes + 1
		_, err := uc.Upload(context.Background(), input)
		if !errors.Is(err, entities.ErrInvalidAttachmentSize) {
			t.Fatalf("expected ErrInvalidAttachmentSize, got %v", err)
		}
	})

	t.Run("storage failure records nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(reconstituteOrder("so-1", entities.ServiceOrderStatusOpen, nil), nil)
		storage.EXPECT().WriteExclusive(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := uc.Upload(context.Background(), validUpload())
		if err == nil || err.Error() != "disk full" {
			t.Fatalf("expected storage error, got %v", err)
		}
	})

	t.Run("record failure removes written file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(reconstituteOrder("so-1", entities.ServiceOrderStatusOpen, nil), nil)

		var writtenPath string
		storage.EXPECT().
			WriteExclusive(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, path string, _ io.Reader) error {
				writtenPath = path
				return nil
			})
		attachments.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("dynamo down"))
		storage.EXPECT().
			Remove(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, path string) error {
				if path != writtenPath {
					t.Fatalf("removed %q, wrote %q", path, writtenPath)
				}
				return nil
			})

		_, err := uc.Upload(context.Background(), validUpload())
		if err == nil || err.Error() != "dynamo down" {
			t.Fatalf("expected repository error, got %v", err)
		}
	})

	t.Run("successful upload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		orders := mock_interfaces.NewMockIServiceOrderRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, orders, storage, zap.NewNop())

		orders.EXPECT().GetByID(gomock.Any(), "so-1").Return(reconstituteOrder("so-1", entities.ServiceOrderStatusOpen, nil), nil)
		storage.EXPECT().WriteExclusive(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		var inserted entities.Attachment
		attachments.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a entities.Attachment) error {
				inserted = a
				return nil
			})

		input := validUpload()
		input.FileName = "engine/before.jpg"
		got, err := uc.Upload(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID == "" {
			t.Fatalf("expected generated id")
		}
		if got.FileName != "engine_before.jpg" {
			t.Fatalf("expected sanitized file name, got %q", got.FileName)
		}
		if !strings.HasPrefix(got.StoragePath, "so-1_") || !strings.HasSuffix(got.StoragePath, ".jpg") {
			t.Fatalf("unexpected storage path %q", got.StoragePath)
		}
		if inserted.ID != got.ID {
			t.Fatalf("inserted record does not match returned attachment")
		}
	})
}

func TestAttachmentUseCase_ListByServiceOrder(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		uc := NewAttachmentUseCase(nil, nil, nil, zap.NewNop())
		_, err := uc.ListByServiceOrder(context.Background(), " ")
		if !errors.Is(err, ErrInvalidServiceOrderID) {
			t.Fatalf("expected ErrInvalidServiceOrderID, got %v", err)
		}
	})

	t.Run("passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		uc := NewAttachmentUseCase(attachments, nil, nil, zap.NewNop())

		want := []entities.Attachment{{ID: "att-1", ServiceOrderID: "so-1", UploadedAt: time.Now().UTC()}}
		attachments.EXPECT().ListByServiceOrderID(gomock.Any(), "so-1").Return(want, nil)

		got, err := uc.ListByServiceOrder(context.Background(), "so-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "att-1" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})
}

func TestAttachmentUseCase_GetForDownload(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		uc := NewAttachmentUseCase(nil, nil, nil, zap.NewNop())
		_, _, err := uc.GetForDownload(context.Background(), "")
		if !errors.Is(err, ErrInvalidAttachmentID) {
			t.Fatalf("expected ErrInvalidAttachmentID, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		uc := NewAttachmentUseCase(attachments, nil, nil, zap.NewNop())

		attachments.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Attachment{}, nil)

		_, _, err := uc.GetForDownload(context.Background(), "missing")
		if !errors.Is(err, ErrAttachmentNotFound) {
			t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
		}
	})

	t.Run("opens stored file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		attachments := mock_interfaces.NewMockIAttachmentRepository(ctrl)
		storage := mock_interfaces.NewMockIFileStorage(ctrl)
		uc := NewAttachmentUseCase(attachments, nil, storage, zap.NewNop())

		record := entities.Attachment{ID: "att-1", StoragePath: "so-1_att-1.jpg"}
		attachments.EXPECT().GetByID(gomock.Any(), "att-1").Return(record, nil)
		storage.EXPECT().Open(gomock.Any(), "so-1_att-1.jpg").Return(io.NopCloser(strings.NewReader("jpeg bytes")), nil)

		got, reader, err := uc.GetForDownload(context.Background(), "att-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer reader.Close()
		if got.ID != "att-1" {
			t.Fatalf("expected att-1, got %q", got.ID)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "jpeg bytes" {
			t.Fatalf("unexpected bytes %q", data)
		}
	})
}
