// Package storage uploads files to S3-compatible object storage using
// the temporary credentials issued by the Siray gateway.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Files above the threshold are uploaded in chunkSize multipart chunks.
// Both are fixed at 8 MiB by the storage backend, not configurable.
const (
	multipartThreshold = 8 * 1024 * 1024
	chunkSize          = 8 * 1024 * 1024
)

// Uploader uploads one local file and returns its public URL.
type Uploader interface {
	UploadFile(ctx context.Context, path, objectKey, contentType string) (string, error)
}

// api is the slice of the S3 client the uploader needs; *s3.Client
// satisfies it.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Options carry the session credentials and addressing for one upload.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Bucket          string
	Endpoint        string
	AccessEndpoint  string
}

// S3Uploader implements Uploader against S3-compatible storage. It holds
// credentials for a single upload session and is not reused across
// sessions.
type S3Uploader struct {
	client         api
	bucket         string
	region         string
	endpoint       string
	accessEndpoint string
}

// New builds an uploader from session credentials. The storage backend
// (UCloud US3) requires path-style addressing and SigV4.
func New(ctx context.Context, opts Options) (*S3Uploader, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("storage: missing access credentials")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(ensureScheme(opts.Endpoint))
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:         client,
		bucket:         opts.Bucket,
		region:         opts.Region,
		endpoint:       opts.Endpoint,
		accessEndpoint: opts.AccessEndpoint,
	}, nil
}

// UploadFile uploads the file at path to objectKey, switching to
// multipart above 8 MiB. Either a resolvable URL is returned or an error,
// with no partial object left behind.
func (u *S3Uploader) UploadFile(ctx context.Context, path, objectKey, contentType string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer f.Close()

	if info.Size() > multipartThreshold {
		err = u.multipartUpload(ctx, f, objectKey, contentType)
	} else {
		err = u.simpleUpload(ctx, f, objectKey, contentType)
	}
	if err != nil {
		return "", err
	}

	return u.ObjectURL(objectKey), nil
}

func (u *S3Uploader) simpleUpload(ctx context.Context, body io.Reader, objectKey, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: put object: %w", err)
	}
	return nil
}

func (u *S3Uploader) multipartUpload(ctx context.Context, f io.Reader, objectKey, contentType string) error {
	createInput := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(objectKey),
	}
	if contentType != "" {
		createInput.ContentType = aws.String(contentType)
	}

	created, err := u.client.CreateMultipartUpload(ctx, createInput)
	if err != nil {
		return fmt.Errorf("storage: create multipart upload: %w", err)
	}
	uploadID := aws.ToString(created.UploadId)

	parts, err := u.uploadParts(ctx, f, objectKey, uploadID)
	if err == nil {
		err = u.complete(ctx, objectKey, uploadID, parts)
	}
	if err != nil {
		// Abort so no incomplete upload is left accumulating server-side.
		u.abort(ctx, objectKey, uploadID)
		return err
	}

	return nil
}

func (u *S3Uploader) uploadParts(ctx context.Context, f io.Reader, objectKey, uploadID string) ([]s3Types.CompletedPart, error) {
	var parts []s3Types.CompletedPart
	buf := make([]byte, chunkSize)

	for partNumber := int32(1); ; partNumber++ {
		n, readErr := io.ReadFull(f, buf)
		if readErr == io.EOF {
			break
		}
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("storage: read part %d: %w", partNumber, readErr)
		}

		out, err := u.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(u.bucket),
			Key:        aws.String(objectKey),
			UploadId:   aws.String(uploadID),
			PartNumber: aws.Int32(partNumber),
			Body:       bytes.NewReader(buf[:n]),
		})
		if err != nil {
			return nil, fmt.Errorf("storage: upload part %d: %w", partNumber, err)
		}

		parts = append(parts, s3Types.CompletedPart{
			ETag:       out.ETag,
			PartNumber: aws.Int32(partNumber),
		})

		if readErr == io.ErrUnexpectedEOF {
			break
		}
	}

	if len(parts) == 0 {
		return nil, errors.New("storage: no parts read for multipart upload")
	}
	return parts, nil
}

func (u *S3Uploader) complete(ctx context.Context, objectKey, uploadID string, parts []s3Types.CompletedPart) error {
	// The completion manifest must list parts in ascending part-number
	// order regardless of the order uploads finished in.
	sort.Slice(parts, func(i, j int) bool {
		return aws.ToInt32(parts[i].PartNumber) < aws.ToInt32(parts[j].PartNumber)
	})

	_, err := u.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(u.bucket),
		Key:             aws.String(objectKey),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &s3Types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return fmt.Errorf("storage: complete multipart upload: %w", err)
	}
	return nil
}

func (u *S3Uploader) abort(ctx context.Context, objectKey, uploadID string) {
	// Best effort; the original upload error is what the caller sees.
	_, _ = u.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(u.bucket),
		Key:      aws.String(objectKey),
		UploadId: aws.String(uploadID),
	})
}

// ObjectURL resolves the public URL for an uploaded object: the access
// endpoint when the gateway provided one, the upload endpoint otherwise,
// with a bucket/region URL as the last resort.
func (u *S3Uploader) ObjectURL(objectKey string) string {
	if u.accessEndpoint != "" {
		return ensureScheme(u.accessEndpoint) + "/" + objectKey
	}
	if u.endpoint != "" {
		return ensureScheme(u.endpoint) + "/" + objectKey
	}
	return fmt.Sprintf("https://%s.%s.ufileos.com/%s", u.bucket, u.region, objectKey)
}

func ensureScheme(endpoint string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}
