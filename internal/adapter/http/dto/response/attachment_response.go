package response

import (
	"time"

	"os_service_api/internal/domain/entities"
)

type AttachmentResponse struct {
	ID             string    `json:"id"`
	ServiceOrderID string    `json:"service_order_id"`
	Type           string    `json:"type"`
	FileName       string    `json:"file_name"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

func FromAttachment(a entities.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:             a.ID,
		ServiceOrderID: a.ServiceOrderID,
		Type:           string(a.Type),
		FileName:       a.FileName,
		ContentType:    a.ContentType,
		SizeBytes:      a.SizeBytes,
		UploadedAt:     a.UploadedAt,
	}
}

func FromAttachments(attachments []entities.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, FromAttachment(a))
	}
	return out
}

// UploadedAttachmentResponse is the upload reply.
type UploadedAttachmentResponse struct {
	AttachmentID string `json:"attachment_id"`
}
