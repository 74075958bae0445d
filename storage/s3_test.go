package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects   []types.Object
	put       map[string][]byte
	deleted   []string
	failOnKey string
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.put == nil {
		f.put = map[string][]byte{}
	}
	f.put[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{Contents: f.objects, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOnKey {
		return nil, errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func object(key string, age time.Duration) types.Object {
	return types.Object{Key: aws.String(key), LastModified: aws.Time(time.Now().Add(-age))}
}

func TestUploadFile(t *testing.T) {
	fake := &fakeObjects{}

	link, err := UploadFile(context.Background(), fake, "https://s3.example.com", "backups", "catalog-1.jsonl.gz", []byte("data"))
	require.NoError(t, err)

	assert.Equal(t, "https://s3.example.com/backups/catalog-1.jsonl.gz", link)
	assert.Equal(t, []byte("data"), fake.put["catalog-1.jsonl.gz"])
}

func TestRotateObjectsKeepsNewest(t *testing.T) {
	fake := &fakeObjects{objects: []types.Object{
		object("catalog-old.jsonl.gz", 72*time.Hour),
		object("catalog-new.jsonl.gz", time.Hour),
		object("catalog-mid.jsonl.gz", 24*time.Hour),
		object("catalog-oldest.jsonl.gz", 96*time.Hour),
	}}

	deleted, failed, err := RotateObjects(context.Background(), fake, "backups", "catalog-", 2)
	require.NoError(t, err)

	assert.Empty(t, failed)
	assert.Equal(t, []string{"catalog-old.jsonl.gz", "catalog-oldest.jsonl.gz"}, deleted)
}

func TestRotateObjectsNothingToDo(t *testing.T) {
	fake := &fakeObjects{objects: []types.Object{object("catalog-a.jsonl.gz", time.Hour)}}

	deleted, failed, err := RotateObjects(context.Background(), fake, "backups", "catalog-", 4)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Empty(t, failed)
	assert.Empty(t, fake.deleted)
}

func TestRotateObjectsContinuesAfterDeleteFailure(t *testing.T) {
	fake := &fakeObjects{
		objects: []types.Object{
			object("catalog-1", time.Hour),
			object("catalog-2", 2*time.Hour),
			object("catalog-3", 3*time.Hour),
		},
		failOnKey: "catalog-2",
	}

	deleted, failed, err := RotateObjects(context.Background(), fake, "backups", "catalog-", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog-3"}, deleted)
	assert.Len(t, failed, 1)
}
