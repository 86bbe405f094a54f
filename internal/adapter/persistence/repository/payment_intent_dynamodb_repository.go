package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
)

type paymentIntentItem struct {
	ID                string `dynamodbav:"id"`
	PayerID           string `dynamodbav:"payer_id"`
	Purpose           string `dynamodbav:"purpose"`
	RelatedID         string `dynamodbav:"related_id"`
	Amount            int64  `dynamodbav:"amount"`
	Currency          string `dynamodbav:"currency"`
	Channel           string `dynamodbav:"channel"`
	CustomerPhone     string `dynamodbav:"customer_phone,omitempty"`
	Status            string `dynamodbav:"status"`
	AuthorizationURL  string `dynamodbav:"authorization_url,omitempty"`
	ConfirmMessage    string `dynamodbav:"confirm_message,omitempty"`
	Action            string `dynamodbav:"action,omitempty"`
	FailureReason     string `dynamodbav:"failure_reason,omitempty"`
	ProviderReference string `dynamodbav:"provider_reference,omitempty"`
	ProviderPayload   string `dynamodbav:"provider_payload,omitempty"`
	IdempotencyKey    string `dynamodbav:"idempotency_key,omitempty"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

// PaymentIntentDynamoRepository persists PaymentIntent entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Outcomes are written with a status condition so a terminal intent is never
// overwritten, whichever poller gets there first.

type PaymentIntentDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.IPaymentIntentRepository = (*PaymentIntentDynamoRepository)(nil)

func NewPaymentIntentDynamoRepository(ddb dynamoAPI, tableName string) *PaymentIntentDynamoRepository {
	return &PaymentIntentDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *PaymentIntentDynamoRepository) Create(ctx context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error) {
	av, err := attributevalue.MarshalMap(toPaymentIntentItem(p))
	if err != nil {
		return entities.PaymentIntent{}, err
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
		return entities.PaymentIntent{}, err
	}
	return p, nil
}

func (r *PaymentIntentDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentIntent, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentIntent{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentIntent{}, nil
	}

	var it paymentIntentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PaymentIntent{}, err
	}
	return fromPaymentIntentItem(it), nil
}

func (r *PaymentIntentDynamoRepository) UpdateOutcome(ctx context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error) {
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 idKey(p.ID),
		ConditionExpression: aws.String("attribute_exists(#id) AND #status = :pending"),
		UpdateExpression:    aws.String("SET #status = :status, #failure_reason = :failure_reason, #provider_payload = :provider_payload, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":               "id",
			"#status":           "status",
			"#failure_reason":   "failure_reason",
			"#provider_payload": "provider_payload",
			"#updated_at":       "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending":          &types.AttributeValueMemberS{Value: string(entities.IntentStatusPending)},
			":status":           &types.AttributeValueMemberS{Value: string(p.Status)},
			":failure_reason":   &types.AttributeValueMemberS{Value: p.FailureReason},
			":provider_payload": &types.AttributeValueMemberS{Value: string(p.ProviderPayload)},
			":updated_at":       &types.AttributeValueMemberS{Value: formatTime(updatedAt)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.PaymentIntent{}, nil
		}
		return entities.PaymentIntent{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.PaymentIntent{}, nil
	}
	var it paymentIntentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.PaymentIntent{}, err
	}
	return fromPaymentIntentItem(it), nil
}

func toPaymentIntentItem(p entities.PaymentIntent) paymentIntentItem {
	return paymentIntentItem{
		ID:                p.ID,
		PayerID:           p.PayerID,
		Purpose:           string(p.Purpose),
		RelatedID:         p.RelatedID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Channel:           string(p.Channel),
		CustomerPhone:     p.CustomerPhone,
		Status:            string(p.Status),
		AuthorizationURL:  p.AuthorizationURL,
		ConfirmMessage:    p.ConfirmMessage,
		Action:            string(p.Action),
		FailureReason:     p.FailureReason,
		ProviderReference: p.ProviderReference,
		ProviderPayload:   string(p.ProviderPayload),
		IdempotencyKey:    p.IdempotencyKey,
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

func fromPaymentIntentItem(it paymentIntentItem) entities.PaymentIntent {
	var payload json.RawMessage
	if it.ProviderPayload != "" && json.Valid([]byte(it.ProviderPayload)) {
		payload = json.RawMessage(it.ProviderPayload)
	}
	return entities.PaymentIntent{
		ID:                it.ID,
		PayerID:           it.PayerID,
		Purpose:           entities.Purpose(it.Purpose),
		RelatedID:         it.RelatedID,
		Amount:            it.Amount,
		Currency:          it.Currency,
		Channel:           entities.Channel(it.Channel),
		CustomerPhone:     it.CustomerPhone,
		Status:            entities.IntentStatus(it.Status),
		AuthorizationURL:  it.AuthorizationURL,
		ConfirmMessage:    it.ConfirmMessage,
		Action:            entities.IntentAction(it.Action),
		FailureReason:     it.FailureReason,
		ProviderReference: it.ProviderReference,
		ProviderPayload:   payload,
		IdempotencyKey:    it.IdempotencyKey,
		CreatedAt:         parseTime(it.CreatedAt),
		UpdatedAt:         parseTime(it.UpdatedAt),
	}
}
