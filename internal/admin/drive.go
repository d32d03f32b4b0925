package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/udevstartup/sitecms/internal/auth"
	"github.com/udevstartup/sitecms/internal/drive"
	"github.com/udevstartup/sitecms/internal/revisions"
	"go.uber.org/zap"
)

// ErrDriveDisabled is returned by Drive actions when no client is configured.
var ErrDriveDisabled = errors.New("google drive is not configured")

// ErrOAuthState is returned when a consent callback does not match the pending request.
var ErrOAuthState = errors.New("oauth state mismatch")

// driveMessage turns a Drive failure into the text shown to the operator.
func driveMessage(err error) string {
	var apiErr *drive.APIError
	switch {
	case errors.Is(err, ErrDriveDisabled), errors.Is(err, auth.ErrNotConfigured):
		return "Google Drive não configurado."
	case errors.Is(err, drive.ErrUnauthenticated):
		return "Conecte sua conta Google primeiro."
	case errors.Is(err, drive.ErrNoContentFile):
		return "Nenhum arquivo de conteúdo encontrado no Drive."
	case errors.Is(err, drive.ErrNotOwned):
		return "Arquivo não pertence à conta configurada."
	case errors.Is(err, drive.ErrNotImage):
		return "Selecione um arquivo de imagem."
	case errors.Is(err, auth.ErrConsentDenied):
		return "Autorização negada."
	case errors.Is(err, auth.ErrConsentTimeout):
		return "Tempo esgotado aguardando autorização."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("%d - %s", apiErr.Status, apiErr.Body)
	}
	return err.Error()
}

func (a *Admin) driveFailed(s *Session, region Region, err error) error {
	a.logger.Warn("drive action failed", zap.String("region", string(region)), zap.Error(err))
	s.setStatus(region, driveMessage(err), true)
	return err
}

// BeginConnect starts the web consent flow and returns the URL to send the
// browser to.
func (a *Admin) BeginConnect(redirectURL string) (string, error) {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive == nil {
		return "", a.driveFailed(s, RegionAuth, ErrDriveDisabled)
	}
	state := uuid.New().String()
	u, err := a.opts.Drive.Tokens().AuthCodeURL(redirectURL, state)
	if err != nil {
		return "", a.driveFailed(s, RegionAuth, err)
	}
	s.oauthState = state
	return u, nil
}

// CompleteConnect finishes the web consent flow started by BeginConnect.
func (a *Admin) CompleteConnect(ctx context.Context, redirectURL, state, code, consentErr string) error {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive == nil {
		return a.driveFailed(s, RegionAuth, ErrDriveDisabled)
	}
	pending := s.oauthState
	s.oauthState = ""
	if consentErr != "" {
		return a.driveFailed(s, RegionAuth, fmt.Errorf("%w: %s", auth.ErrConsentDenied, consentErr))
	}
	if pending == "" || state != pending {
		s.setStatus(RegionAuth, "Falha na autenticação com Google.", true)
		return ErrOAuthState
	}
	if err := a.opts.Drive.Tokens().Exchange(ctx, redirectURL, code); err != nil {
		return a.driveFailed(s, RegionAuth, err)
	}
	s.setStatus(RegionAuth, "Autenticado com Google Drive.", false)
	return nil
}

// Disconnect forgets the Drive token.
func (a *Admin) Disconnect() {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive != nil {
		a.opts.Drive.Tokens().Disconnect()
	}
	s.setStatus(RegionAuth, "Desconectado do Google Drive.", false)
}

// SaveDrive writes the working document to the Drive content file.
func (a *Admin) SaveDrive(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive == nil {
		return a.driveFailed(s, RegionDrive, ErrDriveDisabled)
	}
	doc := a.syncTop(s)
	id, err := a.opts.Drive.SaveContent(ctx, doc, strings.TrimSpace(s.top.Get(DriveFileIDControl)))
	if err != nil {
		return a.driveFailed(s, RegionDrive, err)
	}
	s.setTop(DriveFileIDControl, id)
	a.record(ctx, revisions.SourceDrive, "saved to drive file "+id, doc)
	s.setStatus(RegionDrive, "Conteúdo salvo no Drive. ID: "+id, false)
	return nil
}

// LoadDrive replaces the working document with the Drive content file.
func (a *Admin) LoadDrive(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive == nil {
		return a.driveFailed(s, RegionDrive, ErrDriveDisabled)
	}
	doc, id, err := a.opts.Drive.LoadContent(ctx, strings.TrimSpace(s.top.Get(DriveFileIDControl)))
	if err != nil {
		return a.driveFailed(s, RegionDrive, err)
	}
	s.replace(doc)
	s.setTop(DriveFileIDControl, id)
	a.record(ctx, revisions.SourceDrive, "loaded from drive file "+id, doc)
	s.setStatus(RegionDrive, "Conteúdo carregado do Drive.", false)
	return nil
}

// UploadBannerImage uploads an image and puts its URL in the banner form.
func (a *Admin) UploadBannerImage(ctx context.Context, name string, data []byte) error {
	return a.uploadImage(ctx, name, data, func(s *Session, url string) {
		form := s.banners.Form()
		form[BannerImageURL] = url
		s.banners.SetForm(form)
	}, "Imagem de banner enviada ao Drive.")
}

// UploadProductImage uploads an image and puts its URL in the product form.
func (a *Admin) UploadProductImage(ctx context.Context, name string, data []byte) error {
	return a.uploadImage(ctx, name, data, func(s *Session, url string) {
		form := s.products.Form()
		form[ProductImageURL] = url
		s.products.SetForm(form)
	}, "Imagem de produto enviada ao Drive.")
}

func (a *Admin) uploadImage(ctx context.Context, name string, data []byte, apply func(*Session, string), done string) error {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Drive == nil {
		return a.driveFailed(s, RegionDrive, ErrDriveDisabled)
	}
	url, err := a.opts.Drive.UploadImage(ctx, name, data)
	if err != nil {
		return a.driveFailed(s, RegionDrive, err)
	}
	apply(s, url)
	s.setStatus(RegionDrive, done, false)
	return nil
}
