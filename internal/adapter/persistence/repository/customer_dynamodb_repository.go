package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultCustomersTableName       = "customers"
	defaultCustomerUniquesTableName = "customer_uniques"

	uniqueDocumentPrefix = "document#"
	uniquePhonePrefix    = "phone#"
)

type customerItem struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	Phone     string `dynamodbav:"phone,omitempty"`
	Email     string `dynamodbav:"email,omitempty"`
	Document  string `dynamodbav:"document,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
}

// claim item reserving a unique field value for one customer
type customerUniqueItem struct {
	Key        string `dynamodbav:"key"`
	CustomerID string `dynamodbav:"customer_id"`
}

// CustomerDynamoRepository persists Customer entities in DynamoDB.
//
// Table requirements:
//   - customers: PK id (string)
//   - customer_uniques: PK key (string), holding "document#<v>" and
//     "phone#<v>" claims
//
// Insert writes the customer and its claims in one transaction, each guarded
// by attribute_not_exists. Two racing inserts with the same document or
// phone therefore cannot both succeed, independent of the usecase pre-check.

type CustomerDynamoRepository struct {
	ddb          *dynamodb.Client
	tableName    string
	uniquesTable string
}

var _ interfaces.ICustomerRepository = (*CustomerDynamoRepository)(nil)

func NewCustomerDynamoRepository(ddb *dynamodb.Client) *CustomerDynamoRepository {
	return &CustomerDynamoRepository{
		ddb:          ddb,
		tableName:    getenvDefault("CUSTOMERS_TABLE", defaultCustomersTableName),
		uniquesTable: getenvDefault("CUSTOMER_UNIQUES_TABLE", defaultCustomerUniquesTableName),
	}
}

func (r *CustomerDynamoRepository) Insert(ctx context.Context, c entities.Customer) error {
	av, err := attributevalue.MarshalMap(toCustomerItem(c))
	if err != nil {
		return err
	}

	writes := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     av,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			},
		},
	}

	if c.Document != nil {
		put, err := r.uniqueClaim(uniqueDocumentPrefix+*c.Document, c.ID)
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: put})
	}
	if c.Phone != nil {
		put, err := r.uniqueClaim(uniquePhonePrefix+*c.Phone, c.ID)
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: put})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		return r.translateInsertConflict(err, c)
	}
	return nil
}

func (r *CustomerDynamoRepository) uniqueClaim(key, customerID string) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(customerUniqueItem{Key: key, CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	return &types.Put{
		TableName:                aws.String(r.uniquesTable),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#key)"),
		ExpressionAttributeNames: map[string]string{"#key": "key"},
	}, nil
}

// translateInsertConflict maps a cancelled uniqueness transaction back to the
// duplicate errors the usecase pre-check would have produced. Cancellation
// reasons are positional: index 0 is the customer put, then document, then
// phone claims in the order they were added.
func (r *CustomerDynamoRepository) translateInsertConflict(err error, c entities.Customer) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return err
	}

	idx := 1
	if c.Document != nil {
		if reasonConditionFailed(canceled, idx) {
			return entities.ErrDuplicateDocument
		}
		idx++
	}
	if c.Phone != nil {
		if reasonConditionFailed(canceled, idx) {
			return entities.ErrDuplicatePhone
		}
	}
	return err
}

func reasonConditionFailed(canceled *types.TransactionCanceledException, idx int) bool {
	if idx >= len(canceled.CancellationReasons) {
		return false
	}
	code := canceled.CancellationReasons[idx].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

func (r *CustomerDynamoRepository) GetByID(ctx context.Context, id string) (entities.Customer, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Customer{}, err
	}
	if len(out.Item) == 0 {
		return entities.Customer{}, nil
	}

	var it customerItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Customer{}, err
	}
	return fromCustomerItem(it)
}

func (r *CustomerDynamoRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	return len(out.Item) > 0, nil
}

func (r *CustomerDynamoRepository) GetByPhone(ctx context.Context, phone string) (entities.Customer, error) {
	return r.getByUniqueKey(ctx, uniquePhonePrefix+phone)
}

func (r *CustomerDynamoRepository) GetByDocument(ctx context.Context, document string) (entities.Customer, error) {
	return r.getByUniqueKey(ctx, uniqueDocumentPrefix+document)
}

// getByUniqueKey resolves a claim to its owning customer. Exact match only.
func (r *CustomerDynamoRepository) getByUniqueKey(ctx context.Context, key string) (entities.Customer, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.uniquesTable),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Customer{}, err
	}
	if len(out.Item) == 0 {
		return entities.Customer{}, nil
	}

	var claim customerUniqueItem
	if err := attributevalue.UnmarshalMap(out.Item, &claim); err != nil {
		return entities.Customer{}, err
	}
	return r.GetByID(ctx, claim.CustomerID)
}

func toCustomerItem(c entities.Customer) customerItem {
	return customerItem{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     optionalString(c.Phone),
		Email:     optionalString(c.Email),
		Document:  optionalString(c.Document),
		CreatedAt: timeToString(c.CreatedAt),
	}
}

func fromCustomerItem(it customerItem) (entities.Customer, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return entities.Customer{}, fmt.Errorf("customer %s: bad created_at %q: %w", it.ID, it.CreatedAt, err)
	}
	return entities.ReconstituteCustomer(
		it.ID,
		it.Name,
		stringToOptional(it.Phone),
		stringToOptional(it.Email),
		stringToOptional(it.Document),
		createdAt,
	), nil
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stringToOptional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
