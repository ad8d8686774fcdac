// internal/storage/s3.go
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"acebot/config"
	"acebot/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type listAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client lists content folders in an S3-compatible object store. A catalog
// folder id is an object key prefix inside the configured bucket; view
// links are presigned GET URLs.
type Client struct {
	list    listAPI
	presign presignAPI
	bucket  string
	linkTTL time.Duration
}

func NewClient(cfg config.Storage) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		list:    client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		linkTTL: cfg.LinkTTL,
	}, nil
}

// ListFiles returns every file under the folder prefix, each with a
// presigned view link. An unknown folder simply yields an empty result.
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]models.File, error) {
	prefix := strings.TrimSuffix(folderID, "/") + "/"

	var files []models.File
	var token *string
	for {
		out, err := c.list.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue // folder marker
			}

			req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
			}, s3.WithPresignExpires(c.linkTTL))
			if err != nil {
				return nil, fmt.Errorf("failed to presign %s: %w", key, err)
			}

			files = append(files, models.File{
				Name:     path.Base(key),
				ViewLink: req.URL,
			})
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return files, nil
}
