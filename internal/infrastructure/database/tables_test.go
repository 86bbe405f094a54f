package database

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeTables struct {
	existing    map[string]bool
	describeErr error
	created     []string
}

func (f *fakeTables) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if f.existing[aws.ToString(in.TableName)] {
		return &dynamodb.DescribeTableOutput{}, nil
	}
	return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
}

func (f *fakeTables) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if len(in.KeySchema) != 1 || aws.ToString(in.KeySchema[0].AttributeName) != "id" {
		return nil, errors.New("unexpected key schema")
	}
	f.created = append(f.created, aws.ToString(in.TableName))
	return &dynamodb.CreateTableOutput{}, nil
}

func TestEnsureTablesCreatesMissing(t *testing.T) {
	ddb := &fakeTables{existing: map[string]bool{"payables": true}}

	created, err := EnsureTables(context.Background(), ddb, "payment_intents", "payables")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 || created[0] != "payment_intents" {
		t.Fatalf("expected only payment_intents to be created, got %v", created)
	}
}

func TestEnsureTablesDescribeError(t *testing.T) {
	ddb := &fakeTables{describeErr: errors.New("access denied")}

	if _, err := EnsureTables(context.Background(), ddb, "payables"); err == nil {
		t.Fatalf("expected error")
	}
	if len(ddb.created) != 0 {
		t.Fatalf("expected no table creation, got %v", ddb.created)
	}
}
