package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/udevstartup/sitecms/internal/content"
)

// Collection names, as used in admin routes.
const (
	Services = "services"
	Banners  = "banners"
	Products = "products"
)

// ErrUnknownCollection is returned for a collection name other than Services, Banners or Products.
var ErrUnknownCollection = errors.New("unknown collection")

// VerifyError is a failed product ownership check.
type VerifyError struct {
	FileID string
	Err    error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("product file %s not verified on drive: %v", e.FileID, e.Err)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

type messages struct {
	added, updated, removed, editing string
}

var collectionMessages = map[string]messages{
	Services: {"Serviço adicionado.", "Serviço atualizado.", "Serviço removido.", "Editando serviço #"},
	Banners:  {"Banner adicionado.", "Banner atualizado.", "Banner removido.", "Editando banner #"},
	Products: {"Produto adicionado.", "Produto atualizado.", "Produto removido.", "Editando produto #"},
}

// productGuard checks that a product's Drive file belongs to the site account.
func (a *Admin) productGuard(ctx context.Context, p content.Product) error {
	if a.opts.Drive == nil || !a.opts.Drive.OwnershipCheckEnabled() || p.DriveFileID == "" {
		return nil
	}
	if err := a.opts.Drive.VerifyOwnership(ctx, p.DriveFileID); err != nil {
		return &VerifyError{FileID: p.DriveFileID, Err: err}
	}
	return nil
}

// Submit validates the collection's form and adds or updates an item.
func (a *Admin) Submit(ctx context.Context, collection string, values Form) error {
	s := a.lock()
	defer s.mu.Unlock()

	switch collection {
	case Services:
		return submit(ctx, s, s.services, &s.doc.Services, values, collectionMessages[Services])
	case Banners:
		return submit(ctx, s, s.banners, &s.doc.Banners, values, collectionMessages[Banners])
	case Products:
		return submit(ctx, s, s.products, &s.doc.Products, values, collectionMessages[Products])
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}

// Edit loads item i of the collection into its form.
func (a *Admin) Edit(collection string, i int) error {
	s := a.lock()
	defer s.mu.Unlock()

	var err error
	switch collection {
	case Services:
		err = s.services.Edit(s.doc.Services, i)
	case Banners:
		err = s.banners.Edit(s.doc.Banners, i)
	case Products:
		err = s.products.Edit(s.doc.Products, i)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if err != nil {
		s.setStatus(RegionLocal, "Item não encontrado.", true)
		return err
	}
	s.setStatus(RegionLocal, collectionMessages[collection].editing+strconv.Itoa(i+1), false)
	return nil
}

// Remove deletes item i of the collection.
func (a *Admin) Remove(collection string, i int) error {
	s := a.lock()
	defer s.mu.Unlock()

	var err error
	switch collection {
	case Services:
		s.doc.Services, err = s.services.Remove(s.doc.Services, i)
	case Banners:
		s.doc.Banners, err = s.banners.Remove(s.doc.Banners, i)
	case Products:
		s.doc.Products, err = s.products.Remove(s.doc.Products, i)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if err != nil {
		s.setStatus(RegionLocal, "Item não encontrado.", true)
		return err
	}
	s.setStatus(RegionLocal, collectionMessages[collection].removed, false)
	return nil
}

// Clear empties the collection's form and leaves edit mode.
func (a *Admin) Clear(collection string) error {
	s := a.lock()
	defer s.mu.Unlock()

	switch collection {
	case Services:
		s.services.Clear()
	case Banners:
		s.banners.Clear()
	case Products:
		s.products.Clear()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

func submit[T any](ctx context.Context, s *Session, c *Collection[T], items *[]T, values Form, m messages) error {
	out, outcome, err := c.Submit(ctx, *items, values)
	if err != nil {
		var (
			invalid    *ValidationError
			unverified *VerifyError
		)
		switch {
		case errors.As(err, &invalid):
			s.setStatus(RegionLocal, invalid.Message, true)
		case errors.As(err, &unverified):
			s.setStatus(RegionLocal, "Produto não validado no Drive: "+driveMessage(unverified.Err), true)
		case errors.Is(err, ErrIndexOutOfRange):
			s.setStatus(RegionLocal, "Item não encontrado.", true)
		default:
			s.setStatus(RegionLocal, err.Error(), true)
		}
		return err
	}

	*items = out
	if outcome == Updated {
		s.setStatus(RegionLocal, m.updated, false)
	} else {
		s.setStatus(RegionLocal, m.added, false)
	}
	return nil
}
