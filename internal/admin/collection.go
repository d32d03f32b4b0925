package admin

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrIndexOutOfRange is returned for list actions on a missing item.
var ErrIndexOutOfRange = errors.New("item index out of range")

// ValidationError reports missing required fields. The collection is left unchanged.
type ValidationError struct {
	Message string
	Fields  validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind describes one editable collection: how its items map to form controls,
// how they are validated and how their ids are derived.
type Kind[T any] struct {
	Name string
	// Controls lists the form control ids of the item form.
	Controls []string
	// Required is the status message shown when validation fails.
	Required string
	FromForm func(Form) T
	ToForm   func(T) Form
	Validate func(*T) error
	// NewID derives the id of an item appended from the idle state.
	NewID func(T) string
	GetID func(T) string
	SetID func(*T, string)
	// Guard, when set, runs after validation and may veto the submit.
	Guard func(context.Context, T) error
	// Defaults are the values of a cleared form.
	Defaults Form
	// Checkboxes are omitted from submissions when unchecked.
	Checkboxes []string
}

// Outcome tells what a successful Submit did.
type Outcome int

const (
	Added Outcome = iota + 1
	Updated
)

// Collection is the edit state machine of one collection: idle, or editing
// the item at an index. Items live in the document and are passed in and
// returned by each transition.
type Collection[T any] struct {
	kind    *Kind[T]
	editing int
	form    Form
}

// NewCollection returns an idle collection of kind.
func NewCollection[T any](kind *Kind[T]) *Collection[T] {
	return &Collection[T]{kind: kind, editing: -1, form: kind.Defaults.clone()}
}

// Kind returns the collection's kind.
func (c *Collection[T]) Kind() *Kind[T] {
	return c.kind
}

// Editing returns the edited index and true, or -1 and false when idle.
func (c *Collection[T]) Editing() (int, bool) {
	return c.editing, c.editing >= 0
}

// Form returns a copy of the item form values.
func (c *Collection[T]) Form() Form {
	return c.form.clone()
}

// SetForm replaces the item form values with the collection's controls from
// values. It is a no-op when values carry none of them.
func (c *Collection[T]) SetForm(values Form) {
	form := Form{}
	for _, id := range c.kind.Controls {
		if v, ok := values[id]; ok {
			form[id] = v
		}
	}
	if len(form) == 0 {
		return
	}
	for _, id := range c.kind.Checkboxes {
		if _, ok := form[id]; !ok {
			form[id] = ""
		}
	}
	c.form = form
}

// Submit validates the form and either overwrites the edited item or appends
// a new item with a derived id. An edited item keeps its id unless the form
// names one. On success the collection
// returns to idle and the form is cleared.
func (c *Collection[T]) Submit(ctx context.Context, items []T, values Form) ([]T, Outcome, error) {
	c.SetForm(values)
	item := c.kind.FromForm(c.form)

	if err := c.kind.Validate(&item); err != nil {
		var fields validation.Errors
		if !errors.As(err, &fields) {
			return items, 0, err
		}
		return items, 0, &ValidationError{Message: c.kind.Required, Fields: fields}
	}

	if c.kind.Guard != nil {
		if err := c.kind.Guard(ctx, item); err != nil {
			return items, 0, err
		}
	}

	if c.editing >= 0 {
		if c.editing >= len(items) {
			c.Clear()
			return items, 0, fmt.Errorf("%s %d: %w", c.kind.Name, c.editing+1, ErrIndexOutOfRange)
		}
		switch original := c.kind.GetID(items[c.editing]); {
		case c.kind.GetID(item) != "":
		case original != "":
			c.kind.SetID(&item, original)
		default:
			c.kind.SetID(&item, c.kind.NewID(item))
		}
		out := append([]T{}, items...)
		out[c.editing] = item
		c.Clear()
		return out, Updated, nil
	}

	c.kind.SetID(&item, c.kind.NewID(item))
	out := append(append([]T{}, items...), item)
	c.Clear()
	return out, Added, nil
}

// Edit loads item i into the form and enters editing(i).
func (c *Collection[T]) Edit(items []T, i int) error {
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%s %d: %w", c.kind.Name, i+1, ErrIndexOutOfRange)
	}
	c.form = c.kind.ToForm(items[i])
	c.editing = i
	return nil
}

// Remove deletes item i. The edit state is kept; an edited index after i
// shifts down with its item, and removing the edited item returns to idle.
func (c *Collection[T]) Remove(items []T, i int) ([]T, error) {
	if i < 0 || i >= len(items) {
		return items, fmt.Errorf("%s %d: %w", c.kind.Name, i+1, ErrIndexOutOfRange)
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	out = append(out, items[i+1:]...)

	switch {
	case c.editing == i:
		c.Clear()
	case c.editing > i:
		c.editing--
	}
	return out, nil
}

// Clear resets the form to its defaults and returns to idle.
func (c *Collection[T]) Clear() {
	c.form = c.kind.Defaults.clone()
	c.editing = -1
}
