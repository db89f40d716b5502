package file

import (
	"context"
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
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoRepository stores file records in a DynamoDB table with partition key
// userId and sort key fileId.
type DynamoRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoRepository builds a repository over the given table.
func NewDynamoRepository(client DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

func recordKey(ownerID, fileID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: ownerID},
		"fileId": &types.AttributeValueMemberS{Value: fileID},
	}
}

// Put inserts a new record, refusing to overwrite an existing file id.
func (r *DynamoRepository) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal file metadata: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(fileId)"),
	})
	if err != nil {
		return fmt.Errorf("create file metadata: %w", err)
	}
	return nil
}

// Get fetches one record by composite key.
func (r *DynamoRepository) Get(ctx context.Context, ownerID, fileID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            recordKey(ownerID, fileID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Record{}, fmt.Errorf("get file metadata: %w", err)
	}
	if len(out.Item) == 0 {
		return Record{}, ErrFileNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal file metadata: %w", err)
	}
	return rec, nil
}

// Delete removes a record and returns its previous value.
func (r *DynamoRepository) Delete(ctx context.Context, ownerID, fileID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          recordKey(ownerID, fileID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return Record{}, fmt.Errorf("delete file metadata: %w", err)
	}
	if len(out.Attributes) == 0 {
		return Record{}, ErrFileNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal file metadata: %w", err)
	}
	return rec, nil
}

// ListByOwner queries the owner's partition, following pagination.
func (r *DynamoRepository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	var files []Record
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		var batch []Record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal file metadata: %w", err)
		}
		files = append(files, batch...)
	}
	return files, nil
}

// Ping checks that the table is reachable.
func (r *DynamoRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}
