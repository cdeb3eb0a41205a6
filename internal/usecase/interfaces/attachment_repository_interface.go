package interfaces

import (
	"context"

	"os_service_api/internal/domain/entities"
)

// IAttachmentRepository abstracts DynamoDB persistence for Attachment.
//
// ListByServiceOrderID orders by upload time ascending. GetByID returns the
// zero value when the attachment does not exist.
type IAttachmentRepository interface {
	Insert(ctx context.Context, a entities.Attachment) error
	ListByServiceOrderID(ctx context.Context, serviceOrderID string) ([]entities.Attachment, error)
	GetByID(ctx context.Context, id string) (entities.Attachment, error)
}
