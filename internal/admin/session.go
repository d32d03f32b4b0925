package admin

import (
	"strconv"
	"sync"

	"github.com/udevstartup/sitecms/internal/content"
)

// Region names a status area of the admin page.
type Region string

const (
	RegionLocal Region = "local"
	RegionDrive Region = "drive"
	RegionAuth  Region = "auth"
)

// Status is the last message shown in a region.
type Status struct {
	Message string
	Error   bool
}

// Extra top-level controls that are not document fields.
const (
	APIBaseControl     = "js-api-base-url"
	DriveFileIDControl = "js-drive-file-id"
)

// Session is the admin editing state: the working document, the top form,
// the three collection state machines and the region statuses. All access
// goes through the Admin, which holds mu for the duration of an action.
type Session struct {
	mu sync.Mutex

	doc      *content.Document
	top      Form
	services *Collection[content.Service]
	banners  *Collection[content.Banner]
	products *Collection[content.Product]
	status   map[Region]Status

	// oauthState is the pending web consent state, if any.
	oauthState string
}

// NewSession returns a session editing doc.
func NewSession(doc *content.Document) *Session {
	s := &Session{
		services: NewCollection(ServiceKind()),
		banners:  NewCollection(BannerKind()),
		products: NewCollection(ProductKind()),
		status:   map[Region]Status{},
		top:      Form{},
	}
	s.replace(doc)
	return s
}

// replace swaps the working document, refills the top form from it and
// resets every collection to idle. Non-document controls are kept.
func (s *Session) replace(doc *content.Document) {
	if doc == nil {
		doc = content.Default()
	}
	s.doc = doc
	top := FillForm(doc)
	for _, id := range []string{APIBaseControl, DriveFileIDControl} {
		if v, ok := s.top[id]; ok {
			top[id] = v
		}
	}
	s.top = top
	s.services.Clear()
	s.banners.Clear()
	s.products.Clear()
}

// update stores submitted values as the current form state.
func (s *Session) update(values Form) {
	if values == nil {
		return
	}
	for _, id := range append(topFieldIDs(), APIBaseControl, DriveFileIDControl) {
		if v, ok := values[id]; ok {
			s.top[id] = v
		}
	}
	s.services.SetForm(values)
	s.banners.SetForm(values)
	s.products.SetForm(values)
}

func (s *Session) setStatus(region Region, message string, isError bool) {
	s.status[region] = Status{Message: message, Error: isError}
}

func (s *Session) setTop(id, value string) {
	s.top[id] = value
}

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	Document *content.Document
	Top      Form
	Services CollectionView[content.Service]
	Banners  CollectionView[content.Banner]
	Products CollectionView[content.Product]
	Status   map[Region]Status
}

// CollectionView is the rendering state of one collection.
type CollectionView[T any] struct {
	Items   []T
	Form    Form
	Editing int
}

// IsEditing reports whether an item is being edited.
func (v CollectionView[T]) IsEditing() bool {
	return v.Editing >= 0
}

// SubmitLabel is the label of the collection's submit button.
func (v CollectionView[T]) SubmitLabel() string {
	if v.IsEditing() {
		return "Salvar item #" + strconv.Itoa(v.Editing+1)
	}
	return "Adicionar"
}

func view[T any](c *Collection[T], items []T) CollectionView[T] {
	i, _ := c.Editing()
	return CollectionView[T]{Items: append([]T{}, items...), Form: c.Form(), Editing: i}
}

func (s *Session) snapshot() Snapshot {
	status := make(map[Region]Status, len(s.status))
	for k, v := range s.status {
		status[k] = v
	}
	doc := s.doc.Clone()
	return Snapshot{
		Document: doc,
		Top:      s.top.clone(),
		Services: view(s.services, doc.Services),
		Banners:  view(s.banners, doc.Banners),
		Products: view(s.products, doc.Products),
		Status:   status,
	}
}
