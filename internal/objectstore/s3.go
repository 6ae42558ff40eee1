package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"logsearch-backend/config"
	"logsearch-backend/internal/model"
)

// S3Store talks to S3 or any S3-compatible server such as MinIO.
type S3Store struct {
	client *s3.Client
}

func NewS3Store(cfg config.ObjectStoreConfig) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("object store endpoint is not configured")
	}
	httpClient := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		tr.MaxIdleConnsPerHost = 10
		tr.ResponseHeaderTimeout = 10 * time.Second
		tr.DialContext = (&net.Dialer{Timeout: 5 * time.Second}).DialContext
		tr.TLSHandshakeTimeout = 5 * time.Second
	})

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL)),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		HTTPClient:   httpClient,
	})
	store := &S3Store{client: client}

	if cfg.Bucket != "" && cfg.ConnectTimeout > 0 {
		store.waitForBucket(cfg.Bucket, cfg.ConnectTimeout)
	}
	return store, nil
}

// waitForBucket retries HeadBucket until the store answers. A store that is still down is not
// fatal: searches report it as unavailable until it comes up.
func (s *S3Store) waitForBucket(bucket string, maxWait time.Duration) {
	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		if err != nil {
			log.Warn().Err(err).Str("bucket", bucket).Msg("Attempt failed: object store bucket check")
			return err
		}
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 1 * time.Second
	connectBackoff.MaxInterval = 10 * time.Second
	connectBackoff.MaxElapsedTime = maxWait

	log.Info().Str("bucket", bucket).Msg("Checking object store bucket with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Str("bucket", bucket).Msg("Object store bucket not reachable, continuing")
		return
	}
	log.Info().Str("bucket", bucket).Msg("Object store connection verified")
}

func (s *S3Store) List(ctx context.Context, bucket string) ([]model.LogObject, error) {
	var objects []model.LogObject
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateS3Error(err, bucket, "")
		}
		for _, obj := range page.Contents {
			objects = append(objects, model.LogObject{
				Name:         aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

func (s *S3Store) Get(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, translateS3Error(err, bucket, name)
	}
	return out.Body, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return translateS3Error(err, bucket, name)
	}
	return nil
}

func translateS3Error(err error, bucket, name string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %s: %v", ErrBucketNotFound, bucket, err)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s/%s: %v", ErrObjectNotFound, bucket, name, err)
		}
	}
	return err
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
