package repository

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
)

type payableItem struct {
	ID         string `dynamodbav:"id"`
	Kind       string `dynamodbav:"kind"`
	AmountDue  int64  `dynamodbav:"amount_due"`
	AmountPaid int64  `dynamodbav:"amount_paid"`
	Status     string `dynamodbav:"status"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

// PayableDynamoRepository persists Payable entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// The visit or booking id is the PK, which guarantees one payable per
// domain object.

type PayableDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.IPayableRepository = (*PayableDynamoRepository)(nil)

func NewPayableDynamoRepository(ddb dynamoAPI, tableName string) *PayableDynamoRepository {
	return &PayableDynamoRepository{ddb: ddb, tableName: tableName}
}

// Create returns an empty entity when a payable with the same id exists.
func (r *PayableDynamoRepository) Create(ctx context.Context, p entities.Payable) (entities.Payable, error) {
	av, err := attributevalue.MarshalMap(toPayableItem(p))
	if err != nil {
		return entities.Payable{}, err
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
		if isConditionalCheckFailed(err) {
			return entities.Payable{}, nil
		}
		return entities.Payable{}, err
	}
	return p, nil
}

func (r *PayableDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payable, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payable{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payable{}, nil
	}

	var it payableItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payable{}, err
	}
	return fromPayableItem(it), nil
}

func (r *PayableDynamoRepository) RecordPayment(ctx context.Context, p entities.Payable, amount int64) (entities.Payable, error) {
	paid := p.AmountPaid + amount
	return r.update(ctx, p.ID, "#amount_paid = :previous AND #status <> :cancelled", func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #amount_paid = :paid, #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":previous":   &types.AttributeValueMemberN{Value: intToString(p.AmountPaid)},
			":paid":       &types.AttributeValueMemberN{Value: intToString(paid)},
			":status":     &types.AttributeValueMemberS{Value: string(p.StatusAfter(paid))},
			":cancelled":  &types.AttributeValueMemberS{Value: string(entities.PayableStatusCancelled)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#amount_paid": "amount_paid",
			"#status":      "status",
			"#updated_at":  "updated_at",
		}
		return expr, vals, names
	})
}

func (r *PayableDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PayableStatus) (entities.Payable, error) {
	return r.update(ctx, id, "", func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *PayableDynamoRepository) update(
	ctx context.Context,
	id string,
	extraCondition string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.Payable, error) {
	now := formatTime(time.Now())
	updateExpr, values, names := build(now)

	condition := "attribute_exists(#id)"
	if extraCondition != "" {
		condition += " AND " + extraCondition
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String(condition),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.Payable{}, nil
		}
		return entities.Payable{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Payable{}, nil
	}
	var it payableItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Payable{}, err
	}
	return fromPayableItem(it), nil
}

func toPayableItem(p entities.Payable) payableItem {
	return payableItem{
		ID:         p.ID,
		Kind:       string(p.Kind),
		AmountDue:  p.AmountDue,
		AmountPaid: p.AmountPaid,
		Status:     string(p.Status),
		CreatedAt:  formatTime(p.CreatedAt),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
}

func fromPayableItem(it payableItem) entities.Payable {
	return entities.Payable{
		ID:         it.ID,
		Kind:       entities.PayableKind(it.Kind),
		AmountDue:  it.AmountDue,
		AmountPaid: it.AmountPaid,
		Status:     entities.PayableStatus(it.Status),
		CreatedAt:  parseTime(it.CreatedAt),
		UpdatedAt:  parseTime(it.UpdatedAt),
	}
}
