package cloudwriter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Writer accumulates the object in memory and performs a single PutObject
// on Close. History exports are small, at most a few megabytes, so buffering
// the whole object is fine.
type S3Writer struct {
	client     *s3.Client
	bucket     string
	objectPath string
	buffer     bytes.Buffer
}

type S3WriterFactory struct {
	client *s3.Client
}

func NewS3WriterFactory(region string) (*S3WriterFactory, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3WriterFactory{client: s3.NewFromConfig(cfg)}, nil
}

func (f *S3WriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	return &S3Writer{
		client:     f.client,
		bucket:     bucket,
		objectPath: objectPath,
	}, nil
}

func (w *S3Writer) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *S3Writer) Close() error {
	_, err := w.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.objectPath),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("unable to upload %s to S3: %w", w.objectPath, err)
	}
	return nil
}
