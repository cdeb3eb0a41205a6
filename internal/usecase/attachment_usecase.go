package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrInvalidAttachmentID = errors.New("invalid attachment id")
)

// UploadAttachmentInput carries everything needed to accept one file.
type UploadAttachmentInput struct {
	ServiceOrderID string
	Type           entities.AttachmentType
	FileName       string
	ContentType    string
	SizeBytes      int64
	Data           io.Reader
}

// IAttachmentUseCase exposes attachment operations.
type IAttachmentUseCase interface {
	Upload(ctx context.Context, input UploadAttachmentInput) (entities.Attachment, error)
	ListByServiceOrder(ctx context.Context, serviceOrderID string) ([]entities.Attachment, error)
	GetForDownload(ctx context.Context, attachmentID string) (entities.Attachment, io.ReadCloser, error)
}

type AttachmentUseCase struct {
	attachments interfaces.IAttachmentRepository
	orders      interfaces.IServiceOrderRepository
	storage     interfaces.IFileStorage
	logger      *zap.Logger
}

var _ IAttachmentUseCase = (*AttachmentUseCase)(nil)

func NewAttachmentUseCase(
	attachments interfaces.IAttachmentRepository,
	orders interfaces.IServiceOrderRepository,
	storage interfaces.IFileStorage,
	logger *zap.Logger,
) *AttachmentUseCase {
	return &AttachmentUseCase{attachments: attachments, orders: orders, storage: storage, logger: logger}
}

// Upload validates the file against the attachment policy, writes the bytes
// under an exclusive path and only then records the attachment. A failed
// byte write persists nothing; a failed record write removes the bytes.
func (u *AttachmentUseCase) Upload(ctx context.Context, input UploadAttachmentInput) (entities.Attachment, error) {
	orderID := strings.TrimSpace(input.ServiceOrderID)
	if orderID == "" {
		return entities.Attachment{}, ErrInvalidServiceOrderID
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return entities.Attachment{}, err
	}
	if order.ID == "" {
		return entities.Attachment{}, ErrServiceOrderNotFound
	}

	if err := entities.ValidateAttachmentPolicy(input.ContentType, input.FileName, input.SizeBytes); err != nil {
		return entities.Attachment{}, err
	}

	attachmentID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(input.FileName))
	storagePath := fmt.Sprintf("%s_%s%s", order.ID, attachmentID, ext)

	if err := u.storage.WriteExclusive(ctx, storagePath, input.Data); err != nil {
		return entities.Attachment{}, err
	}

	attachment := entities.Attachment{
		ID:             attachmentID,
		ServiceOrderID: order.ID,
		Type:           input.Type,
		FileName:       entities.SanitizeFileName(input.FileName),
		ContentType:    input.ContentType,
		SizeBytes:      input.SizeBytes,
		StoragePath:    storagePath,
		UploadedAt:     time.Now().UTC(),
	}

	if err := u.attachments.Insert(ctx, attachment); err != nil {
		if rmErr := u.storage.Remove(ctx, storagePath); rmErr != nil {
			u.logger.Warn("failed to remove orphaned attachment file",
				zap.String("storage_path", storagePath),
				zap.Error(rmErr),
			)
		}
		return entities.Attachment{}, err
	}

	u.logger.Info("attachment uploaded",
		zap.String("attachment_id", attachmentID),
		zap.String("service_order_id", order.ID),
		zap.String("type", string(input.Type)),
	)
	return attachment, nil
}

func (u *AttachmentUseCase) ListByServiceOrder(ctx context.Context, serviceOrderID string) ([]entities.Attachment, error) {
	serviceOrderID = strings.TrimSpace(serviceOrderID)
	if serviceOrderID == "" {
		return nil, ErrInvalidServiceOrderID
	}
	return u.attachments.ListByServiceOrderID(ctx, serviceOrderID)
}

// GetForDownload resolves an attachment record and opens its stored bytes.
// The caller owns closing the reader.
func (u *AttachmentUseCase) GetForDownload(ctx context.Context, attachmentID string) (entities.Attachment, io.ReadCloser, error) {
	attachmentID = strings.TrimSpace(attachmentID)
	if attachmentID == "" {
		return entities.Attachment{}, nil, ErrInvalidAttachmentID
	}

	attachment, err := u.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return entities.Attachment{}, nil, err
	}
	if attachment.ID == "" {
		return entities.Attachment{}, nil, ErrAttachmentNotFound
	}

	file, err := u.storage.Open(ctx, attachment.StoragePath)
	if err != nil {
		return entities.Attachment{}, nil, err
	}
	return attachment, file, nil
}
