package siray

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/siray-ai/siray-go/internal/storage"
)

const stsTokenPath = "/api/model-verse/sts-token"

// UploadCredentials are the short-lived storage credentials issued for one
// upload session. They are never cached or logged; each upload fetches a
// fresh set.
type UploadCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Bucket          string
	UploadPath      string
	UploadEndpoint  string
	AccessEndpoint  string
	ExpiredTime     int64
}

// FilesService uploads local files to Siray storage. Files larger than
// 8 MiB are uploaded in 8 MiB multipart chunks; smaller files with a
// single PUT.
type FilesService struct {
	client *Client

	// newUploader is swapped out in tests.
	newUploader func(ctx context.Context, creds *UploadCredentials) (storage.Uploader, error)
}

// Upload uploads the file at path and returns its public URL. The upload
// is all-or-nothing: on any failure the error is returned and no partial
// object is left resolvable.
func (s *FilesService) Upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", &ValidationError{Message: "file not found: " + path}
	}

	creds, err := s.stsToken(ctx)
	if err != nil {
		return "", err
	}

	objectKey := filepath.ToSlash(filepath.Join(strings.TrimPrefix(creds.UploadPath, "/"), filepath.Base(path)))
	contentType := mime.TypeByExtension(filepath.Ext(path))

	build := s.newUploader
	if build == nil {
		build = defaultUploader
	}
	uploader, err := build(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("siray: create storage client: %w", err)
	}

	return uploader.UploadFile(ctx, path, objectKey, contentType)
}

// stsToken exchanges the API key for temporary storage credentials via
// the gateway. The credentials are single-use for this upload; expiry is
// enforced server-side so nothing is cached here.
func (s *FilesService) stsToken(ctx context.Context) (*UploadCredentials, error) {
	resp, err := s.client.postGateway(ctx, stsTokenPath, nil)
	if err != nil {
		return nil, err
	}

	data, _ := resp["data"].(map[string]any)
	if len(data) == 0 {
		return nil, &APIError{Message: "invalid STS token response: missing data field"}
	}

	credentials, _ := data["credentials"].(map[string]any)

	creds := &UploadCredentials{
		AccessKeyID:     stringField(credentials, "access_key_id"),
		SecretAccessKey: stringField(credentials, "access_key_secret"),
		SessionToken:    stringField(credentials, "security_token"),
		Region:          stringField(credentials, "region"),
		ExpiredTime:     intField(credentials, "expired_time"),
		Bucket:          stringField(data, "bucket_name"),
		UploadPath:      stringField(data, "upload_path"),
		UploadEndpoint:  stringField(data, "upload_endpoint"),
		AccessEndpoint:  stringField(data, "access_endpoint"),
	}
	if creds.SecretAccessKey == "" {
		creds.SecretAccessKey = stringField(credentials, "secret_access_key")
	}
	if creds.SessionToken == "" {
		creds.SessionToken = stringField(credentials, "session_token")
	}
	if creds.Region == "" {
		creds.Region = "cn-bj"
	}

	if creds.AccessKeyID == "" || creds.Bucket == "" {
		return nil, &APIError{Message: "invalid STS token response: missing credentials or bucket_name"}
	}
	if creds.UploadEndpoint == "" {
		return nil, &APIError{Message: "invalid STS token response: missing upload_endpoint"}
	}

	return creds, nil
}

func defaultUploader(ctx context.Context, creds *UploadCredentials) (storage.Uploader, error) {
	return storage.New(ctx, storage.Options{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Region:          creds.Region,
		Bucket:          creds.Bucket,
		Endpoint:        creds.UploadEndpoint,
		AccessEndpoint:  creds.AccessEndpoint,
	})
}
