package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/model"
	"classroom-recorder/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog"
)

// S3Storage maps the folder chain onto key prefixes. A folder is a zero-byte
// marker object whose key ends in "/"; its id is that key. The root folder id
// is a key prefix such as "recordings".
type S3Storage struct {
	client s3iface.S3API
	bucket string
	log    zerolog.Logger
}

var _ Capability = (*S3Storage)(nil)

func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.Wrap(errors.ErrConfigurationMissing, nil, "s3 bucket or credentials not set")
	}

	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigurationMissing, err, "create aws session")
	}

	return newS3StorageWithClient(s3.New(sess), cfg.Bucket), nil
}

func newS3StorageWithClient(client s3iface.S3API, bucket string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		log:    logger.Component("s3"),
	}
}

func (s *S3Storage) Authenticate(ctx context.Context) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return classifyS3Error(err, "head bucket")
	}
	return nil
}

func (s *S3Storage) ListFolders(ctx context.Context, parentID, title string) ([]model.FolderHandle, error) {
	key := folderKey(parentID, title)

	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, classifyS3Error(err, "head folder marker")
	}

	return []model.FolderHandle{{ID: key, Name: title, ParentID: parentID}}, nil
}

func (s *S3Storage) CreateFolder(ctx context.Context, parentID, title string) (model.FolderHandle, error) {
	key := folderKey(parentID, title)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return model.FolderHandle{}, classifyS3Error(err, "put folder marker")
	}

	s.log.Info().Str("key", key).Msg("S3 folder marker created")
	return model.FolderHandle{ID: key, Name: title, ParentID: parentID}, nil
}

func (s *S3Storage) UploadFile(ctx context.Context, parentID, fileName string, content io.ReadSeeker) error {
	key := strings.TrimSuffix(parentID, "/") + "/" + keySegment(fileName)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(content),
		ContentType: aws.String(audioMimeType),
	})
	if err != nil {
		return classifyS3Error(err, "put recording")
	}
	return nil
}

func folderKey(parentID, title string) string {
	return strings.TrimSuffix(parentID, "/") + "/" + keySegment(title) + "/"
}

var segmentEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// keySegment encodes name as exactly one key segment. Distinct names always
// give distinct segments, and "." or ".." never address another folder.
func keySegment(name string) string {
	if strings.Trim(name, ".") == "" {
		return strings.ReplaceAll(name, ".", "%2E")
	}
	return segmentEscaper.Replace(name)
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey)
}

func classifyS3Error(err error, op string) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "AccessDenied", "Forbidden":
			return errors.Wrap(errors.ErrAuthenticationFailed, err, op)
		}
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && (reqErr.StatusCode() == http.StatusForbidden || reqErr.StatusCode() == http.StatusUnauthorized) {
		return errors.Wrap(errors.ErrAuthenticationFailed, err, op)
	}

	return errors.Wrap(errors.ErrBackend, err, op)
}
