package artifact

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploader is the subset of the S3 API used by the publisher.
type uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Compile-time check that the real SDK client satisfies uploader.
var _ uploader = (*s3.Client)(nil)

// Location references a published artifact.
type Location struct {
	Bucket string
	Key    string
}

// String renders the location as an s3:// URL.
func (l Location) String() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// PublishError reports that the artifact could not be packaged or uploaded.
// It occurs before any stack mutation is attempted, so the remote stack is
// left untouched.
type PublishError struct {
	Location Location
	Cause    error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	return fmt.Sprintf("publish artifact to %s: %v", e.Location, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PublishError) Unwrap() error { return e.Cause }

// Publisher packages the inference code directory and uploads it to the
// fixed, content-addressed-by-convention location.
type Publisher struct {
	s3  uploader
	loc Location
}

// NewPublisher builds a Publisher targeting the fixed bucket and key.
func NewPublisher(client uploader, bucket, key string) *Publisher {
	return &Publisher{s3: client, loc: Location{Bucket: bucket, Key: key}}
}

// Publish builds the model archive from codeDir and uploads it, overwriting
// whatever was previously published at the fixed key.
func (p *Publisher) Publish(ctx context.Context, codeDir string) (Location, error) {
	data, err := buildModelArchive(codeDir)
	if err != nil {
		return p.loc, &PublishError{Location: p.loc, Cause: err}
	}

	_, err = p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.loc.Bucket),
		Key:    aws.String(p.loc.Key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return p.loc, &PublishError{Location: p.loc, Cause: err}
	}

	log.Printf("quarry-deploy: published model package to %s (%d bytes)", p.loc, len(data))
	return p.loc, nil
}
