package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/model"
	"classroom-recorder/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	audioMimeType  = "audio/wav"
)

// DriveStorage files recordings into Google Drive.
type DriveStorage struct {
	cfg     config.DriveConfig
	auth    *driveAuth
	opts    []option.ClientOption
	service *drive.Service
	mu      sync.Mutex
	log     zerolog.Logger
}

var _ Capability = (*DriveStorage)(nil)

func NewDriveStorage(cfg config.DriveConfig) (*DriveStorage, error) {
	auth, err := newDriveAuth(cfg)
	if err != nil {
		return nil, err
	}

	return &DriveStorage{
		cfg:  cfg,
		auth: auth,
		log:  logger.Component("drive"),
	}, nil
}

// newDriveStorageWithOptions builds a backend that talks to the API with the
// given client options and no oauth2 grant.
func newDriveStorageWithOptions(cfg config.DriveConfig, opts ...option.ClientOption) *DriveStorage {
	return &DriveStorage{
		cfg:  cfg,
		opts: opts,
		log:  logger.Component("drive"),
	}
}

func (d *DriveStorage) Authenticate(ctx context.Context) error {
	if d.auth != nil {
		if err := d.auth.Verify(); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.service != nil {
		return nil
	}

	opts := d.opts
	if d.auth != nil {
		source, err := d.auth.TokenSource()
		if err != nil {
			return err
		}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(context.Background(), source)))
	}

	service, err := drive.NewService(context.Background(), opts...)
	if err != nil {
		return errors.Wrap(errors.ErrAuthenticationFailed, err, "create drive service")
	}

	d.service = service
	d.log.Info().Str("auth_mode", d.cfg.AuthMode).Msg("Drive session established")
	return nil
}

func (d *DriveStorage) ListFolders(ctx context.Context, parentID, title string) ([]model.FolderHandle, error) {
	service, err := d.session()
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	call := service.Files.List().
		Q(folderQuery(parentID, title)).
		Fields("files(id, name, parents)").
		Context(ctx)
	if d.cfg.SharedDrives {
		call = call.SupportsAllDrives(true).IncludeItemsFromAllDrives(true)
	}

	list, err := call.Do()
	if err != nil {
		return nil, classifyDriveError(err, "list folders")
	}

	handles := make([]model.FolderHandle, 0, len(list.Files))
	for _, f := range list.Files {
		handles = append(handles, model.FolderHandle{ID: f.Id, Name: f.Name, ParentID: parentID})
	}
	return handles, nil
}

func (d *DriveStorage) CreateFolder(ctx context.Context, parentID, title string) (model.FolderHandle, error) {
	service, err := d.session()
	if err != nil {
		return model.FolderHandle{}, err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	call := service.Files.Create(&drive.File{
		Name:     title,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id, name").Context(ctx)
	if d.cfg.SharedDrives {
		call = call.SupportsAllDrives(true)
	}

	folder, err := call.Do()
	if err != nil {
		return model.FolderHandle{}, classifyDriveError(err, "create folder")
	}

	d.log.Info().Str("folder_id", folder.Id).Str("title", title).Str("parent_id", parentID).Msg("Drive folder created")
	return model.FolderHandle{ID: folder.Id, Name: folder.Name, ParentID: parentID}, nil
}

func (d *DriveStorage) UploadFile(ctx context.Context, parentID, fileName string, content io.ReadSeeker) error {
	service, err := d.session()
	if err != nil {
		return err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	call := service.Files.Create(&drive.File{
		Name:    fileName,
		Parents: []string{parentID},
	}).Media(content, googleapi.ContentType(audioMimeType)).Fields("id").Context(ctx)
	if d.cfg.SharedDrives {
		call = call.SupportsAllDrives(true)
	}

	file, err := call.Do()
	if err != nil {
		return classifyDriveError(err, "upload file")
	}

	d.log.Debug().Str("file_id", file.Id).Str("file_name", fileName).Msg("Drive upload finished")
	return nil
}

func (d *DriveStorage) session() (*drive.Service, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.service == nil {
		return nil, errors.Wrap(errors.ErrAuthenticationFailed, nil, "drive session not established")
	}
	return d.service, nil
}

func (d *DriveStorage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, d.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// folderQuery matches non-trashed folders titled exactly title under parentID.
func folderQuery(parentID, title string) string {
	return fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = '%s' and trashed = false",
		escapeQuery(parentID), escapeQuery(title), folderMimeType)
}

func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}

func classifyDriveError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return errors.Wrap(errors.ErrAuthenticationFailed, err, op)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return errors.Wrap(errors.ErrAuthenticationFailed, err, op)
	}

	return errors.Wrap(errors.ErrBackend, err, op)
}
