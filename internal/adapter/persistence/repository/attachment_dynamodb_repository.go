package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultAttachmentsTableName  = "attachments"
	attachmentsServiceOrderIndex = "service_order_id-index"
)

// Stored integer codes for AttachmentType: 0=before, 1=after. Unknown codes
// fail closed on read.
var (
	attachmentTypeToCode = map[entities.AttachmentType]int{
		entities.AttachmentTypeBefore: 0,
		entities.AttachmentTypeAfter:  1,
	}
	attachmentTypeFromCode = map[int]entities.AttachmentType{
		0: entities.AttachmentTypeBefore,
		1: entities.AttachmentTypeAfter,
	}
)

func encodeAttachmentType(t entities.AttachmentType) (int, error) {
	code, ok := attachmentTypeToCode[t]
	if !ok {
		return 0, fmt.Errorf("unmapped attachment type %q", t)
	}
	return code, nil
}

func decodeAttachmentType(code int) (entities.AttachmentType, error) {
	t, ok := attachmentTypeFromCode[code]
	if !ok {
		return "", fmt.Errorf("unrecognized attachment type code %d", code)
	}
	return t, nil
}

type attachmentItem struct {
	ID             string `dynamodbav:"id"`
	ServiceOrderID string `dynamodbav:"service_order_id"`
	Type           int    `dynamodbav:"type"`
	FileName       string `dynamodbav:"file_name"`
	ContentType    string `dynamodbav:"content_type"`
	SizeBytes      int64  `dynamodbav:"size_bytes"`
	StoragePath    string `dynamodbav:"storage_path"`
	UploadedAt     string `dynamodbav:"uploaded_at"`
}

// AttachmentDynamoRepository persists Attachment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: service_order_id-index (PK: service_order_id)

type AttachmentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IAttachmentRepository = (*AttachmentDynamoRepository)(nil)

func NewAttachmentDynamoRepository(ddb *dynamodb.Client) *AttachmentDynamoRepository {
	return &AttachmentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ATTACHMENTS_TABLE", defaultAttachmentsTableName),
	}
}

func (r *AttachmentDynamoRepository) Insert(ctx context.Context, a entities.Attachment) error {
	it, err := toAttachmentItem(a)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	return err
}

func (r *AttachmentDynamoRepository) ListByServiceOrderID(ctx context.Context, serviceOrderID string) ([]entities.Attachment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(attachmentsServiceOrderIndex),
		KeyConditionExpression: aws.String("service_order_id = :soid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":soid": &types.AttributeValueMemberS{Value: serviceOrderID},
		},
	})
	if err != nil {
		return nil, err
	}

	attachments := make([]entities.Attachment, 0, len(out.Items))
	for _, raw := range out.Items {
		var it attachmentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		a, err := fromAttachmentItem(it)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}

	// oldest upload first
	sort.Slice(attachments, func(i, j int) bool {
		return attachments[i].UploadedAt.Before(attachments[j].UploadedAt)
	})
	return attachments, nil
}

func (r *AttachmentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Attachment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Attachment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Attachment{}, nil
	}

	var it attachmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Attachment{}, err
	}
	return fromAttachmentItem(it)
}

func toAttachmentItem(a entities.Attachment) (attachmentItem, error) {
	code, err := encodeAttachmentType(a.Type)
	if err != nil {
		return attachmentItem{}, err
	}
	return attachmentItem{
		ID:             a.ID,
		ServiceOrderID: a.ServiceOrderID,
		Type:           code,
		FileName:       a.FileName,
		ContentType:    a.ContentType,
		SizeBytes:      a.SizeBytes,
		StoragePath:    a.StoragePath,
		UploadedAt:     timeToString(a.UploadedAt),
	}, nil
}

func fromAttachmentItem(it attachmentItem) (entities.Attachment, error) {
	t, err := decodeAttachmentType(it.Type)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("attachment %s: %w", it.ID, err)
	}

	uploadedAt, err := time.Parse(time.RFC3339Nano, it.UploadedAt)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("attachment %s: bad uploaded_at %q: %w", it.ID, it.UploadedAt, err)
	}

	return entities.Attachment{
		ID:             it.ID,
		ServiceOrderID: it.ServiceOrderID,
		Type:           t,
		FileName:       it.FileName,
		ContentType:    it.ContentType,
		SizeBytes:      it.SizeBytes,
		StoragePath:    it.StoragePath,
		UploadedAt:     uploadedAt,
	}, nil
}
