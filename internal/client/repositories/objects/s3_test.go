package objects

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket is an in-memory objectAPI.
type fakeBucket struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	delErr  error

	lastBucket string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastBucket = aws.ToString(in.Bucket)
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastBucket = aws.ToString(in.Bucket)
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Repository_SetThenGet(t *testing.T) {
	b := newFakeBucket()
	r := newS3Repository(b, "drinks", "easydrink")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "favorites:u1", []byte(`[]`)))

	assert.Contains(t, b.objects, "easydrink/favorites:u1")
	assert.Equal(t, "drinks", b.lastBucket)

	v, err := r.Get(ctx, "favorites:u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}

func TestS3Repository_GetMissingReturnsNilNil(t *testing.T) {
	r := newS3Repository(newFakeBucket(), "drinks", "")

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestS3Repository_GenericNotFoundAPIError(t *testing.T) {
	b := newFakeBucket()
	b.getErr = &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	r := newS3Repository(b, "drinks", "")

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestS3Repository_ErrorsAreWrapped(t *testing.T) {
	b := newFakeBucket()
	b.getErr = errors.New("access denied")
	b.putErr = errors.New("slow down")
	b.delErr = errors.New("gone fishing")
	r := newS3Repository(b, "drinks", "")
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get object[k]")

	err = r.Set(ctx, "k", []byte("v"))
	assert.ErrorContains(t, err, "failed to put object[k]")

	err = r.Delete(ctx, "k")
	assert.ErrorContains(t, err, "failed to delete object[k]")
}

func TestS3Repository_DeleteMissingIsNoop(t *testing.T) {
	b := newFakeBucket()
	b.delErr = &types.NoSuchKey{}
	r := newS3Repository(b, "drinks", "")

	assert.NoError(t, r.Delete(context.Background(), "absent"))
}

func TestNewS3Repository_UsesStaticCredentials(t *testing.T) {
	r, err := NewS3Repository(context.Background(), Settings{
		AccessKey:    "admin",
		SecretKey:    "secret",
		Bucket:       "drinks",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		Prefix:       "easydrink/",
	})
	require.NoError(t, err)
	assert.Equal(t, "easydrink/", r.prefix)
	assert.Equal(t, "drinks", r.bucket)
}
