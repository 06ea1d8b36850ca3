package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"classroom-recorder/internal/config"
	"classroom-recorder/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects  map[string][]byte
	headErr  error
	putCalls int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, opts ...request.Option) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.putCalls++
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_FolderChain(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := newS3StorageWithClient(fake, "recordings-bucket")

	require.NoError(t, store.Authenticate(ctx))

	found, err := store.ListFolders(ctx, "recordings", "2026年度")
	require.NoError(t, err)
	require.Empty(t, found)

	period, err := store.CreateFolder(ctx, "recordings", "2026年度")
	require.NoError(t, err)
	require.Equal(t, "recordings/2026年度/", period.ID)

	found, err = store.ListFolders(ctx, "recordings", "2026年度")
	require.NoError(t, err)
	require.Equal(t, []string{period.ID}, []string{found[0].ID})

	section, err := store.CreateFolder(ctx, period.ID, "1年A組")
	require.NoError(t, err)
	require.Equal(t, "recordings/2026年度/1年A組/", section.ID)

	require.NoError(t, store.UploadFile(ctx, section.ID, "3班_佐藤.wav", bytes.NewReader([]byte("RIFF"))))
	require.Equal(t, []byte("RIFF"), fake.objects["recordings/2026年度/1年A組/3班_佐藤.wav"])
}

func createChain(t *testing.T, store *S3Storage, root string, titles ...string) string {
	t.Helper()
	ctx := context.Background()
	parent := root
	for _, title := range titles {
		found, err := store.ListFolders(ctx, parent, title)
		require.NoError(t, err)
		if len(found) > 0 {
			parent = found[0].ID
			continue
		}
		folder, err := store.CreateFolder(ctx, parent, title)
		require.NoError(t, err)
		parent = folder.ID
	}
	return parent
}

func TestS3Storage_SlashInTitleStaysOneSegment(t *testing.T) {
	store := newS3StorageWithClient(newFakeS3(), "recordings-bucket")

	first := createChain(t, store, "recordings", "2025/26", "1年A組", "観察")
	second := createChain(t, store, "recordings", "2025", "26/1年A組", "観察")

	require.Equal(t, "recordings/2025%2F26/1年A組/観察/", first)
	require.Equal(t, "recordings/2025/26%2F1年A組/観察/", second)
	require.NotEqual(t, first, second)
}

func TestS3Storage_DotTitlesDoNotEscapeParent(t *testing.T) {
	fake := newFakeS3()
	store := newS3StorageWithClient(fake, "recordings-bucket")

	section := createChain(t, store, "recordings", "2026年度", "1年A組")

	up := createChain(t, store, section, "..")
	require.Equal(t, "recordings/2026年度/1年A組/%2E%2E/", up)

	here := createChain(t, store, section, ".")
	require.Equal(t, "recordings/2026年度/1年A組/%2E/", here)

	require.NoError(t, store.UploadFile(context.Background(), up, "1班_佐藤.wav", bytes.NewReader([]byte("RIFF"))))
	require.Contains(t, fake.objects, "recordings/2026年度/1年A組/%2E%2E/1班_佐藤.wav")
}

func TestKeySegment(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"観察", "観察"},
		{"a/b", "a%2Fb"},
		{"100%", "100%25"},
		{"%2F", "%252F"},
		{"..", "%2E%2E"},
		{"v1.0", "v1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, keySegment(tt.name))
		})
	}
}

func TestS3Storage_AuthenticationFailure(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = awserr.NewRequestFailure(awserr.New("Forbidden", "Forbidden", nil), http.StatusForbidden, "req")
	store := newS3StorageWithClient(fake, "recordings-bucket")

	err := store.Authenticate(context.Background())
	require.ErrorIs(t, err, errors.ErrAuthenticationFailed)
}

func TestNewS3Storage_ConfigurationMissing(t *testing.T) {
	_, err := NewS3Storage(config.S3Config{Bucket: "recordings-bucket"})
	require.ErrorIs(t, err, errors.ErrConfigurationMissing)
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "memory"}}
	capability, err := New(cfg)
	require.NoError(t, err)
	require.IsType(t, &MemoryStorage{}, capability)

	cfg.Storage.Backend = "drive"
	capability, err = New(cfg)
	require.ErrorIs(t, err, errors.ErrConfigurationMissing)
	require.Nil(t, capability)

	cfg.Storage.Backend = "ftp"
	_, err = New(cfg)
	require.ErrorIs(t, err, errors.ErrConfigurationMissing)
}
