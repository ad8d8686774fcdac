package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeList struct {
	pages     []*s3.ListObjectsV2Output
	err       error
	calls     int
	gotPrefix string
}

func (f *fakeList) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotPrefix = aws.ToString(params.Prefix)
	out := f.pages[f.calls]
	f.calls++
	return out, nil
}

type fakePresign struct {
	err error
}

func (f *fakePresign) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(params.Key)}, nil
}

func newTestClient(list listAPI, presign presignAPI) *Client {
	return &Client{
		list:    list,
		presign: presign,
		bucket:  "content",
		linkTTL: time.Hour,
	}
}

func TestListFilesPresignsEachObject(t *testing.T) {
	list := &fakeList{pages: []*s3.ListObjectsV2Output{{
		Contents: []types.Object{
			{Key: aws.String("quizzes/physics/")}, // folder marker
			{Key: aws.String("quizzes/physics/mechanics.pdf")},
			{Key: aws.String("quizzes/physics/optics.pdf")},
		},
		IsTruncated: aws.Bool(false),
	}}}
	c := newTestClient(list, &fakePresign{})

	files, err := c.ListFiles(context.Background(), "quizzes/physics")
	require.NoError(t, err)

	assert.Equal(t, "quizzes/physics/", list.gotPrefix)
	require.Len(t, files, 2)
	assert.Equal(t, "mechanics.pdf", files[0].Name)
	assert.Equal(t, "https://signed.example/quizzes/physics/mechanics.pdf", files[0].ViewLink)
	assert.Equal(t, "optics.pdf", files[1].Name)
}

func TestListFilesFollowsPagination(t *testing.T) {
	list := &fakeList{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("notes/math/algebra.pdf")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("page-2"),
		},
		{
			Contents:    []types.Object{{Key: aws.String("notes/math/geometry.pdf")}},
			IsTruncated: aws.Bool(false),
		},
	}}
	c := newTestClient(list, &fakePresign{})

	files, err := c.ListFiles(context.Background(), "notes/math/")
	require.NoError(t, err)

	assert.Equal(t, 2, list.calls)
	require.Len(t, files, 2)
	assert.Equal(t, "algebra.pdf", files[0].Name)
	assert.Equal(t, "geometry.pdf", files[1].Name)
}

func TestListFilesEmptyFolder(t *testing.T) {
	list := &fakeList{pages: []*s3.ListObjectsV2Output{{IsTruncated: aws.Bool(false)}}}
	c := newTestClient(list, &fakePresign{})

	files, err := c.ListFiles(context.Background(), "unknown-folder")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListFilesPropagatesErrors(t *testing.T) {
	c := newTestClient(&fakeList{err: errors.New("access denied")}, &fakePresign{})
	_, err := c.ListFiles(context.Background(), "quizzes/physics")
	assert.ErrorContains(t, err, "access denied")

	list := &fakeList{pages: []*s3.ListObjectsV2Output{{
		Contents:    []types.Object{{Key: aws.String("quizzes/physics/mechanics.pdf")}},
		IsTruncated: aws.Bool(false),
	}}}
	c = newTestClient(list, &fakePresign{err: errors.New("signing failed")})
	_, err = c.ListFiles(context.Background(), "quizzes/physics")
	assert.ErrorContains(t, err, "signing failed")
}
