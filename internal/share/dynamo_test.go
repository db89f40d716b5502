package share

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/file"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamoRepositoryStoresLinks(t *testing.T) {
	client := newFakeLinkTable()
	repo := NewDynamoRepository(client, "SharedLinksTable-dev")
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{
		Token:      "tok-1",
		FileID:     "f1",
		OwnerID:    "user-u",
		StorageKey: "user-u/f1/report.pdf",
		FileName:   "report.pdf",
		CreatedAt:  created,
		ExpiresAt:  created.Add(24 * time.Hour).Unix(),
	}
	require.NoError(t, repo.Put(ctx, rec))
	assert.Equal(t, "SharedLinksTable-dev", client.lastTable)
	assert.Equal(t, "attribute_not_exists(shareToken)", client.lastCondition)

	stored := client.items["tok-1"]
	expires, ok := stored["expiresAt"].(*types.AttributeValueMemberN)
	require.True(t, ok, "expiresAt must be a Number for table TTL, got %T", stored["expiresAt"])
	assert.Equal(t, strconv.FormatInt(rec.ExpiresAt, 10), expires.Value)
	assert.Equal(t, "user-u/f1/report.pdf", stored["s3Key"].(*types.AttributeValueMemberS).Value)

	got, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, rec.StorageKey, got.StorageKey)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestDynamoRepositoryFailures(t *testing.T) {
	client := newFakeLinkTable()
	repo := NewDynamoRepository(client, "links")
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrLinkNotFound))

	require.NoError(t, repo.Put(ctx, Record{Token: "dup", StorageKey: "k", ExpiresAt: 1}))
	err = repo.Put(ctx, Record{Token: "dup", StorageKey: "other", ExpiresAt: 2})
	assert.True(t, errors.Is(err, ErrTokenCollision))
	status, body := apperr.Render(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to create share link", body.Error)
	assert.Empty(t, body.Message)
	assert.Equal(t, "k", client.items["dup"]["s3Key"].(*types.AttributeValueMemberS).Value)

	client.putErr = errors.New("throttled")
	err = repo.Put(ctx, Record{Token: "t2"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTokenCollision))

	client.getErr = errors.New("throttled")
	_, err = repo.Get(ctx, "dup")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLinkNotFound))
}

func TestResolveOverDynamoRespectsExpiry(t *testing.T) {
	files := &fakeFiles{records: map[string]file.Record{
		"user-u|f1": {OwnerID: "user-u", FileID: "f1", FileName: "report.pdf", StorageKey: "user-u/f1/report.pdf"},
	}}
	repo := NewDynamoRepository(newFakeLinkTable(), "links")
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	issuer := NewIssuer(files, repo, testShareConfig)
	issuer.nowFunc = func() time.Time { return now }
	resolver := NewResolver(repo, &fakeSigner{}, testShareConfig.DownloadURLTTL)

	link, err := issuer.Issue(ctx, "user-u", "f1", 1)
	require.NoError(t, err)

	resolver.nowFunc = func() time.Time { return now.Add(59 * time.Minute) }
	res, err := resolver.Resolve(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", res.FileName)

	resolver.nowFunc = func() time.Time { return now.Add(time.Hour) }
	_, err = resolver.Resolve(ctx, link.Token)
	assert.True(t, errors.Is(err, ErrLinkExpired))
}

type fakeLinkTable struct {
	items         map[string]map[string]types.AttributeValue
	lastTable     string
	lastCondition string
	putErr        error
	getErr        error
}

func newFakeLinkTable() *fakeLinkTable {
	return &fakeLinkTable{items: make(map[string]map[string]types.AttributeValue)}
}

func tokenOf(item map[string]types.AttributeValue) string {
	if v, ok := item["shareToken"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeLinkTable) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[tokenOf(params.Key)]}, nil
}

func (f *fakeLinkTable) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	if params.TableName != nil {
		f.lastTable = *params.TableName
	}
	if params.ConditionExpression != nil {
		f.lastCondition = *params.ConditionExpression
	}
	token := tokenOf(params.Item)
	if _, exists := f.items[token]; exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	f.items[token] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}
