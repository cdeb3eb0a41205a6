package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultServiceOrdersTableName = "service_orders"
	defaultCountersTableName      = "counters"

	serviceOrderNumberCounter = "service_order_number"

	// first assigned number is numberSeed+1
	numberSeed = 999
)

// Stored integer codes for ServiceOrderStatus: 0=open, 1=in_progress,
// 2=finished (the schema the system has always persisted). Unknown codes
// fail closed on read.
var (
	statusToCode = map[entities.ServiceOrderStatus]int{
		entities.ServiceOrderStatusOpen:       0,
		entities.ServiceOrderStatusInProgress: 1,
		entities.ServiceOrderStatusFinished:   2,
	}
	statusFromCode = map[int]entities.ServiceOrderStatus{
		0: entities.ServiceOrderStatusOpen,
		1: entities.ServiceOrderStatusInProgress,
		2: entities.ServiceOrderStatusFinished,
	}
)

func encodeStatus(s entities.ServiceOrderStatus) (int, error) {
	code, ok := statusToCode[s]
	if !ok {
		return 0, fmt.Errorf("unmapped service order status %q", s)
	}
	return code, nil
}

func decodeStatus(code int) (entities.ServiceOrderStatus, error) {
	s, ok := statusFromCode[code]
	if !ok {
		return "", fmt.Errorf("unrecognized service order status code %d", code)
	}
	return s, nil
}

type serviceOrderItem struct {
	ID             string `dynamodbav:"id"`
	Number         int    `dynamodbav:"number"`
	CustomerID     string `dynamodbav:"customer_id"`
	Description    string `dynamodbav:"description"`
	Status         int    `dynamodbav:"status"`
	OpenedAt       string `dynamodbav:"opened_at"`
	StartedAt      string `dynamodbav:"started_at,omitempty"`
	FinishedAt     string `dynamodbav:"finished_at,omitempty"`
	Price          string `dynamodbav:"price,omitempty"`
	Currency       string `dynamodbav:"currency"`
	UpdatedPriceAt string `dynamodbav:"updated_price_at,omitempty"`
}

// ServiceOrderDynamoRepository persists ServiceOrder entities in DynamoDB.
//
// Table requirements:
//   - service_orders: PK id (string)
//   - counters: PK id (string), holding the order-number sequence
//
// The sequential number comes from an atomic counter update seeded at 999,
// so the first order gets 1000 and numbers only move up.

type ServiceOrderDynamoRepository struct {
	ddb           *dynamodb.Client
	tableName     string
	countersTable string
}

var _ interfaces.IServiceOrderRepository = (*ServiceOrderDynamoRepository)(nil)

func NewServiceOrderDynamoRepository(ddb *dynamodb.Client) *ServiceOrderDynamoRepository {
	return &ServiceOrderDynamoRepository{
		ddb:           ddb,
		tableName:     getenvDefault("SERVICE_ORDERS_TABLE", defaultServiceOrdersTableName),
		countersTable: getenvDefault("COUNTERS_TABLE", defaultCountersTableName),
	}
}

func (r *ServiceOrderDynamoRepository) InsertReturningNumber(ctx context.Context, so entities.ServiceOrder) (int, error) {
	number, err := r.nextNumber(ctx)
	if err != nil {
		return 0, err
	}

	it, err := toServiceOrderItem(so)
	if err != nil {
		return 0, err
	}
	it.Number = number

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return 0, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return 0, err
	}
	return number, nil
}

// nextNumber bumps the sequence counter atomically and returns the new
// value. if_not_exists seeds the counter on first use.
func (r *ServiceOrderDynamoRepository) nextNumber(ctx context.Context) (int, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.countersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: serviceOrderNumberCounter},
		},
		UpdateExpression: aws.String("SET #v = if_not_exists(#v, :seed) + :incr"),
		ExpressionAttributeNames: map[string]string{
			"#v": "value",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seed": &types.AttributeValueMemberN{Value: strconv.Itoa(numberSeed)},
			":incr": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}

	raw, ok := out.Attributes["value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter %s: unexpected attribute shape", serviceOrderNumberCounter)
	}
	return strconv.Atoi(raw.Value)
}

func (r *ServiceOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.ServiceOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ServiceOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.ServiceOrder{}, nil
	}

	var it serviceOrderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.ServiceOrder{}, err
	}
	return fromServiceOrderItem(it)
}

func (r *ServiceOrderDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.ServiceOrderStatus, startedAt, finishedAt *time.Time) error {
	code, err := encodeStatus(status)
	if err != nil {
		return err
	}

	expr := "SET #status = :status"
	vals := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberN{Value: strconv.Itoa(code)},
	}
	names := map[string]string{
		"#status": "status",
	}
	if startedAt != nil {
		expr += ", #started_at = :started_at"
		vals[":started_at"] = &types.AttributeValueMemberS{Value: timeToString(*startedAt)}
		names["#started_at"] = "started_at"
	}
	if finishedAt != nil {
		expr += ", #finished_at = :finished_at"
		vals[":finished_at"] = &types.AttributeValueMemberS{Value: timeToString(*finishedAt)}
		names["#finished_at"] = "finished_at"
	}

	return r.update(ctx, id, expr, vals, names)
}

func (r *ServiceOrderDynamoRepository) UpdatePrice(ctx context.Context, id string, price float64, currency string, updatedPriceAt time.Time) error {
	expr := "SET #price = :price, #currency = :currency, #updated_price_at = :updated_price_at"
	vals := map[string]types.AttributeValue{
		":price":            &types.AttributeValueMemberN{Value: floatToString(price)},
		":currency":         &types.AttributeValueMemberS{Value: currency},
		":updated_price_at": &types.AttributeValueMemberS{Value: timeToString(updatedPriceAt)},
	}
	names := map[string]string{
		"#price":            "price",
		"#currency":         "currency",
		"#updated_price_at": "updated_price_at",
	}
	return r.update(ctx, id, expr, vals, names)
}

func (r *ServiceOrderDynamoRepository) update(
	ctx context.Context,
	id string,
	updateExpr string,
	values map[string]types.AttributeValue,
	names map[string]string,
) error {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
	})
	return err
}

func (r *ServiceOrderDynamoRepository) List(ctx context.Context, filter interfaces.ServiceOrderFilter) ([]entities.ServiceOrder, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}

	var conds []string
	vals := map[string]types.AttributeValue{}
	names := map[string]string{}

	if filter.CustomerID != nil {
		conds = append(conds, "#customer_id = :customer_id")
		vals[":customer_id"] = &types.AttributeValueMemberS{Value: *filter.CustomerID}
		names["#customer_id"] = "customer_id"
	}
	if filter.Status != nil {
		code, err := encodeStatus(*filter.Status)
		if err != nil {
			return nil, err
		}
		conds = append(conds, "#status = :status")
		vals[":status"] = &types.AttributeValueMemberN{Value: strconv.Itoa(code)}
		names["#status"] = "status"
	}
	if filter.FromDate != nil {
		conds = append(conds, "#opened_at >= :from_date")
		vals[":from_date"] = &types.AttributeValueMemberS{Value: timeToString(*filter.FromDate)}
		names["#opened_at"] = "opened_at"
	}
	if filter.ToDate != nil {
		conds = append(conds, "#opened_at <= :to_date")
		vals[":to_date"] = &types.AttributeValueMemberS{Value: timeToString(*filter.ToDate)}
		names["#opened_at"] = "opened_at"
	}

	if len(conds) > 0 {
		input.FilterExpression = aws.String(strings.Join(conds, " AND "))
		input.ExpressionAttributeValues = vals
		input.ExpressionAttributeNames = names
	}

	orders := make([]entities.ServiceOrder, 0)
	paginator := dynamodb.NewScanPaginator(r.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it serviceOrderItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			order, err := fromServiceOrderItem(it)
			if err != nil {
				return nil, err
			}
			orders = append(orders, order)
		}
	}

	// most recent first
	sort.Slice(orders, func(i, j int) bool { return orders[i].Number > orders[j].Number })
	return orders, nil
}

func toServiceOrderItem(so entities.ServiceOrder) (serviceOrderItem, error) {
	code, err := encodeStatus(so.Status)
	if err != nil {
		return serviceOrderItem{}, err
	}

	price := ""
	if so.Price != nil {
		price = floatToString(*so.Price)
	}

	return serviceOrderItem{
		ID:             so.ID,
		Number:         so.Number,
		CustomerID:     so.CustomerID,
		Description:    so.Description,
		Status:         code,
		OpenedAt:       timeToString(so.OpenedAt),
		StartedAt:      optionalTimeToString(so.StartedAt),
		FinishedAt:     optionalTimeToString(so.FinishedAt),
		Price:          price,
		Currency:       so.Currency,
		UpdatedPriceAt: optionalTimeToString(so.UpdatedPriceAt),
	}, nil
}

func fromServiceOrderItem(it serviceOrderItem) (entities.ServiceOrder, error) {
	status, err := decodeStatus(it.Status)
	if err != nil {
		return entities.ServiceOrder{}, fmt.Errorf("service order %s: %w", it.ID, err)
	}

	openedAt, err := time.Parse(time.RFC3339Nano, it.OpenedAt)
	if err != nil {
		return entities.ServiceOrder{}, fmt.Errorf("service order %s: bad opened_at %q: %w", it.ID, it.OpenedAt, err)
	}

	startedAt, err := parseOptionalTime(it.StartedAt)
	if err != nil {
		return entities.ServiceOrder{}, fmt.Errorf("service order %s: bad started_at %q: %w", it.ID, it.StartedAt, err)
	}
	finishedAt, err := parseOptionalTime(it.FinishedAt)
	if err != nil {
		return entities.ServiceOrder{}, fmt.Errorf("service order %s: bad finished_at %q: %w", it.ID, it.FinishedAt, err)
	}
	updatedPriceAt, err := parseOptionalTime(it.UpdatedPriceAt)
	if err != nil {
		return entities.ServiceOrder{}, fmt.Errorf("service order %s: bad updated_price_at %q: %w", it.ID, it.UpdatedPriceAt, err)
	}

	var price *float64
	if it.Price != "" {
		v, err := strconv.ParseFloat(it.Price, 64)
		if err != nil {
			return entities.ServiceOrder{}, fmt.Errorf("service order %s: bad price %q: %w", it.ID, it.Price, err)
		}
		price = &v
	}

	return entities.ReconstituteServiceOrder(
		it.ID,
		it.Number,
		it.CustomerID,
		it.Description,
		status,
		openedAt,
		startedAt,
		finishedAt,
		price,
		it.Currency,
		updatedPriceAt,
	), nil
}
