package drive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/udevstartup/sitecms/internal/content"
	"go.uber.org/zap"
)

// FileIDStore remembers the id of the Drive content file between runs.
type FileIDStore interface {
	DriveFileID(ctx context.Context) (string, error)
	SetDriveFileID(ctx context.Context, id string) error
}

// Options configures a Syncer.
type Options struct {
	// FileName is the name of the content file on Drive.
	FileName string
	// OwnerEmail, when set, is required among the owners of product files.
	OwnerEmail string
	// Interactive allows EnsureToken to request consent.
	Interactive bool
	Logger      *zap.Logger
}

// Syncer reads and writes the content document as a single Drive file.
type Syncer struct {
	client *Client
	tokens *TokenHolder
	ids    FileIDStore
	opts   Options
	logger *zap.Logger
}

// NewSyncer creates a Syncer. ids may be nil, in which case file ids are not remembered.
func NewSyncer(client *Client, tokens *TokenHolder, ids FileIDStore, opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FileName == "" {
		opts.FileName = "udev-site-content.json"
	}
	return &Syncer{client: client, tokens: tokens, ids: ids, opts: opts, logger: logger}
}

// Tokens returns the token holder used by the syncer.
func (s *Syncer) Tokens() *TokenHolder {
	return s.tokens
}

// OwnershipCheckEnabled reports whether product files are checked against an owner.
func (s *Syncer) OwnershipCheckEnabled() bool {
	return s.opts.OwnerEmail != ""
}

// SaveContent uploads doc as the content file and returns its id. The target
// is fileID when given, else the remembered id, else the newest file with the
// configured name; a new file is created only when none of those exist.
func (s *Syncer) SaveContent(ctx context.Context, doc *content.Document, fileID string) (string, error) {
	token, err := s.tokens.EnsureToken(ctx, s.opts.Interactive)
	if err != nil {
		return "", err
	}

	id, err := s.resolveFileID(ctx, token, fileID)
	if err != nil {
		return "", err
	}

	data, err := doc.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("encoding content: %w", err)
	}

	f, err := s.client.Upload(ctx, token, id, FileMetadata{Name: s.opts.FileName, MimeType: "application/json"}, "application/json", data)
	if err != nil {
		return "", fmt.Errorf("uploading content: %w", err)
	}

	s.grantPublicRead(ctx, token, f.ID)
	s.remember(ctx, f.ID)

	s.logger.Info("content saved to drive", zap.String("file_id", f.ID), zap.Bool("created", id == ""))
	return f.ID, nil
}

// LoadContent downloads and normalizes the content file, resolving its id
// like SaveContent. It returns ErrNoContentFile when no file exists.
func (s *Syncer) LoadContent(ctx context.Context, fileID string) (*content.Document, string, error) {
	token, err := s.tokens.EnsureToken(ctx, s.opts.Interactive)
	if err != nil {
		return nil, "", err
	}

	id, err := s.resolveFileID(ctx, token, fileID)
	if err != nil {
		return nil, "", err
	}
	if id == "" {
		return nil, "", ErrNoContentFile
	}

	data, err := s.client.Download(ctx, token, id)
	if err != nil {
		return nil, "", fmt.Errorf("downloading content: %w", err)
	}
	doc, err := content.Parse(data)
	if err != nil {
		return nil, "", err
	}

	s.remember(ctx, id)
	return doc, id, nil
}

// UploadImage stores an image as a new public Drive file and returns its
// inline-view URL.
func (s *Syncer) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	token, err := s.tokens.EnsureToken(ctx, s.opts.Interactive)
	if err != nil {
		return "", err
	}

	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = "image" + mt.Extension()
	}

	f, err := s.client.Upload(ctx, token, "", FileMetadata{Name: name, MimeType: mt.String()}, mt.String(), data)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	s.grantPublicRead(ctx, token, f.ID)
	return content.DriveViewURL(f.ID), nil
}

// VerifyOwnership fails with ErrNotOwned unless the configured owner email is
// among the file's owners. Without a configured owner every file passes.
func (s *Syncer) VerifyOwnership(ctx context.Context, fileID string) error {
	if !s.OwnershipCheckEnabled() {
		return nil
	}
	if fileID == "" {
		return fmt.Errorf("%w: empty file id", ErrNotOwned)
	}

	token, err := s.tokens.EnsureToken(ctx, s.opts.Interactive)
	if err != nil {
		return err
	}

	f, err := s.client.Metadata(ctx, token, fileID)
	if err != nil {
		return fmt.Errorf("reading owners of %s: %w", fileID, err)
	}
	for _, o := range f.Owners {
		if strings.EqualFold(strings.TrimSpace(o.EmailAddress), s.opts.OwnerEmail) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotOwned, fileID)
}

func (s *Syncer) resolveFileID(ctx context.Context, token, fileID string) (string, error) {
	if fileID != "" {
		return fileID, nil
	}
	if s.ids != nil {
		remembered, err := s.ids.DriveFileID(ctx)
		if err != nil {
			s.logger.Warn("reading remembered drive file id", zap.Error(err))
		} else if remembered != "" {
			return remembered, nil
		}
	}

	f, err := s.client.FindByName(ctx, token, s.opts.FileName)
	if err != nil {
		return "", fmt.Errorf("searching for %s: %w", s.opts.FileName, err)
	}
	if f == nil {
		return "", nil
	}
	return f.ID, nil
}

func (s *Syncer) grantPublicRead(ctx context.Context, token, fileID string) {
	if err := s.client.GrantPublicRead(ctx, token, fileID); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			s.logger.Warn("granting public read", zap.String("file_id", fileID), zap.Int("status", apiErr.Status))
			return
		}
		s.logger.Warn("granting public read", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (s *Syncer) remember(ctx context.Context, fileID string) {
	if s.ids == nil {
		return
	}
	if err := s.ids.SetDriveFileID(ctx, fileID); err != nil {
		s.logger.Warn("remembering drive file id", zap.String("file_id", fileID), zap.Error(err))
	}
}
