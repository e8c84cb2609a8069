package document

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Client is the subset of the s3 api S3Source needs
type S3Client interface {
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads every supported object under a bucket prefix
type S3Source struct {
	client S3Client
	bucket string
	prefix string
}

type S3Option func(*S3Source)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3Source) {
		s.bucket = bucket
	}
}

func WithS3Prefix(prefix string) S3Option {
	return func(s *S3Source) {
		s.prefix = prefix
	}
}

func WithS3Client(clt S3Client) S3Option {
	return func(s *S3Source) {
		s.client = clt
	}
}

func NewS3Source(opts ...S3Option) *S3Source {
	ret := new(S3Source)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// NewS3Client builds a client with static credentials, endpoint may point at any s3 compatible store
func NewS3Client(region, endpoint, accessKey, secretKey string) *s3.Client {
	opts := s3.Options{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				Source:          "omniquery",
			}, nil
		}),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// Keys lists object keys under the prefix which have a supported extension
func (s *S3Source) Keys(ctx context.Context) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range out.Contents {
			if key := aws.ToString(obj.Key); Supported(key) {
				keys = append(keys, key)
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

// LoadObject fetches and parses a single object
func (s *S3Source) LoadObject(ctx context.Context, key string) (*Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()
	doc, err := Load(ctx, key, out.Body)
	if err != nil {
		return nil, err
	}
	doc.Meta["bucket"] = s.bucket
	doc.Meta["key"] = key
	return doc, nil
}

// Load fetches every supported object, objects failing to parse are logged and skipped
func (s *S3Source) Load(ctx context.Context) ([]Document, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		doc, err := s.LoadObject(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("skip s3 object")
			continue
		}
		if doc.Content == "" {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
