package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoRepository stores share records in a table keyed by shareToken. The
// expiresAt attribute is epoch seconds so the table's TTL can reap old links.
type DynamoRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoRepository builds a repository over the given table.
func NewDynamoRepository(client DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

// Put inserts a new share record, refusing to overwrite an existing token.
func (r *DynamoRepository) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal share link: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(shareToken)"),
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return ErrTokenCollision
		}
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

// Get fetches a share record by token.
func (r *DynamoRepository) Get(ctx context.Context, token string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"shareToken": &types.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		return Record{}, fmt.Errorf("get share link: %w", err)
	}
	if len(out.Item) == 0 {
		return Record{}, ErrLinkNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal share link: %w", err)
	}
	return rec, nil
}
