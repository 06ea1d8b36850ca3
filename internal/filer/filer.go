package filer

import (
	"context"
	"fmt"

	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/model"
	"classroom-recorder/internal/storage"
	"classroom-recorder/pkg/errors"

	"github.com/rs/zerolog"
)

// Filer files one submission into root → period → section → lesson.
//
// The lookup-then-create in ResolveChain is not atomic: two concurrent first
// submissions for a new lesson can each create the folder.
type Filer struct {
	stager *storage.Stager
	naming NamingConvention
	groups []string
	log    zerolog.Logger
}

func New(stager *storage.Stager, naming NamingConvention, groups []string) *Filer {
	return &Filer{
		stager: stager,
		naming: naming,
		groups: groups,
		log:    logger.Component("filer"),
	}
}

// Store runs ResolveChain, stages the audio, uploads it into the lesson folder
// and releases the staging file. It never retries; folders created before a
// failure are left in place and found again on the next attempt.
func (f *Filer) Store(
	ctx context.Context,
	rc model.RecordingContext,
	sub model.Submission,
	rootFolderID string,
	client storage.Capability,
) model.UploadResult {
	log := f.log.With().
		Str("period", rc.Period()).
		Str("section", rc.Section()).
		Str("lesson", rc.Lesson()).
		Str("group", sub.Group).
		Logger()

	if client == nil || rootFolderID == "" {
		log.Error().Bool("has_client", client != nil).Msg("Storage not configured")
		return model.Failed(errors.KindConfigurationMissing, "storage credentials or root folder are not configured")
	}
	if rc.IsZero() {
		return model.FailedFrom(&errors.MissingFieldError{Field: model.FieldPeriod})
	}

	if err := sub.Validate(f.groups); err != nil {
		log.Warn().Err(err).Msg("Submission rejected")
		return model.FailedFrom(err)
	}

	if err := client.Authenticate(ctx); err != nil {
		log.Error().Err(err).Msg("Storage authentication failed")
		return model.Failed(errors.KindAuthenticationFailed, err.Error())
	}

	lessonID, err := f.ResolveChain(ctx, rc, rootFolderID, client)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve folder chain")
		return model.FailedFrom(err)
	}

	fileName := FileName(sub.Group, sub.Members, f.naming)
	if err := f.upload(ctx, lessonID, fileName, sub.Audio, client); err != nil {
		log.Error().Err(err).Str("file_name", fileName).Msg("Upload failed")
		return model.FailedFrom(err)
	}

	log.Info().
		Str("file_name", fileName).
		Str("lesson_folder_id", lessonID).
		Int("audio_bytes", len(sub.Audio)).
		Msg("Recording stored")

	return model.Stored(fileName, lessonID)
}

// ResolveChain finds or creates each level of the chain under rootFolderID and
// returns the lesson folder id.
func (f *Filer) ResolveChain(ctx context.Context, rc model.RecordingContext, rootFolderID string, client storage.Capability) (string, error) {
	parentID := rootFolderID
	for _, title := range rc.Chain() {
		id, err := f.resolveLevel(ctx, parentID, title, client)
		if err != nil {
			return "", err
		}
		parentID = id
	}
	return parentID, nil
}

func (f *Filer) resolveLevel(ctx context.Context, parentID, title string, client storage.Capability) (string, error) {
	found, err := client.ListFolders(ctx, parentID, title)
	if err != nil {
		return "", wrapBackend(err, fmt.Sprintf("search folder %q", title))
	}

	if len(found) > 0 {
		if len(found) > 1 {
			// Backend order decides; not a stable choice.
			f.log.Warn().
				Str("title", title).
				Str("parent_id", parentID).
				Int("matches", len(found)).
				Msg("Duplicate sibling folders, using first match")
		}
		return found[0].ID, nil
	}

	created, err := client.CreateFolder(ctx, parentID, title)
	if err != nil {
		return "", wrapBackend(err, fmt.Sprintf("create folder %q", title))
	}

	f.log.Debug().Str("title", title).Str("folder_id", created.ID).Msg("Folder created")
	return created.ID, nil
}

func (f *Filer) upload(ctx context.Context, folderID, fileName string, audio []byte, client storage.Capability) error {
	staged, err := f.stager.Stage(audio)
	if err != nil {
		return errors.Wrap(errors.ErrBackend, err, "stage recording")
	}
	defer func() {
		if releaseErr := staged.Release(); releaseErr != nil {
			f.log.Warn().Err(releaseErr).Str("path", staged.Path()).Msg("Failed to release staging file")
		}
	}()

	if err := client.UploadFile(ctx, folderID, fileName, staged.Reader()); err != nil {
		return wrapBackend(err, fmt.Sprintf("upload %q", fileName))
	}
	return nil
}

// wrapBackend keeps an existing classification and tags anything else as a
// backend error.
func wrapBackend(err error, message string) error {
	if errors.Is(err, errors.ErrAuthenticationFailed) || errors.Is(err, errors.ErrBackend) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return errors.Wrap(errors.ErrBackend, err, message)
}
