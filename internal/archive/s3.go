package archive

import (
	"bytes"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// s3Backend uploads each archive as an object keyed by name. It only
// ever writes: archives are never read back by this process.
type s3Backend struct {
	bucket string
	region string
	client *s3.S3
}

func newS3Backend(cfg Config) *s3Backend {
	return &s3Backend{bucket: cfg.S3Bucket, region: cfg.S3Region}
}

func (b *s3Backend) Put(name string, data []byte) error {
	if err := b.ensureClient(); err != nil {
		return err
	}
	_, err := b.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name + ".tar.gz"),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return errors.Wrapf(err, "github.com/nicolagi/dfs/internal/archive.s3Backend.Put: %q", name)
	}
	return nil
}

func (b *s3Backend) ensureClient() error {
	if b.client != nil {
		return nil
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(b.region)})
	if err != nil {
		return errors.Wrap(err, "github.com/nicolagi/dfs/internal/archive.s3Backend.ensureClient")
	}
	b.client = s3.New(sess)
	return nil
}
