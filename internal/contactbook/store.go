// Package contactbook holds the phonebook state machine: the canonical list of
// contacts, the current filter and the lifecycle status, with persistence and
// user feedback injected as ports.
package contactbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rhystmorgan/phoneterm/internal/models"
)

// Persister loads and saves the whole contact collection.
type Persister interface {
	LoadContacts(ctx context.Context) ([]models.Contact, error)
	SaveContacts(ctx context.Context, contacts []models.Contact) error
}

// Notifier receives user-facing outcome messages. Calls must not block.
type Notifier interface {
	Success(message string)
	Failure(message string)
	Info(message string)
}

// EventKind names a mutation passed to the Recorder.
type EventKind string

const (
	EventAdded          EventKind = "add"
	EventRemoved        EventKind = "remove"
	EventDefaultsLoaded EventKind = "defaults"
)

// Event describes one successful mutation. Loading the defaults produces
// one event per contact.
type Event struct {
	Kind    EventKind
	Contact models.Contact
}

// Recorder is told about every successful mutation.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces uuid.NewString as the source of contact ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithRecorder reports every successful mutation to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Store) {
		s.recorder = recorder
	}
}

// WithLogger sets the store logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// State is a point-in-time copy of the store for rendering.
type State struct {
	Contacts []models.Contact
	Visible  []models.Contact
	Filter   string
	Status   Status
}

// Store is safe for concurrent use. Every operation, including the write to
// the persister, runs under one lock, so operations apply in call order and the
// last write wins.
type Store struct {
	mu       sync.Mutex
	contacts models.ContactList
	filter   string
	status   Status
	// loaded is set once storage has been read, and gates every mutation.
	loaded bool

	persister Persister
	notifier  Notifier
	recorder  Recorder
	newID     func() string
	logger    *zap.Logger
}

// New returns a store in StatusLoading. Call Load before any mutation.
func New(persister Persister, notifier Notifier, opts ...Option) *Store {
	s := &Store{
		contacts:  models.ContactList{},
		status:    StatusLoading,
		persister: persister,
		notifier:  notifier,
		newID:     uuid.NewString,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection. A missing, empty or corrupted payload
// leaves the store empty with the sample contacts on offer. Any other read
// error keeps the store in StatusLoading and mutations are refused, so
// contacts that could not be read are never overwritten.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.persister.LoadContacts(ctx)
	if err != nil {
		s.contacts = models.ContactList{}
		if errors.Is(err, ErrCorrupted) {
			s.logger.Warn("ignoring corrupted contacts", zap.Error(err))
			s.status = StatusEmpty
			s.loaded = true
			return nil
		}
		s.status = StatusLoading
		s.loaded = false
		s.logger.Error("failed to load contacts", zap.Error(err))
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	s.contacts = models.ContactList(contacts).Clone()
	s.status = statusFor(len(s.contacts))
	s.loaded = true
	s.logger.Debug("contacts loaded",
		zap.Int("count", len(s.contacts)),
		zap.Stringer("status", s.status))
	return nil
}

// Reload re-reads storage after it was changed outside this store and reports
// whether the in-memory list was replaced. A corrupted payload keeps the
// current list, or reads as empty when nothing has been loaded yet.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.persister.LoadContacts(ctx)
	if err != nil {
		if errors.Is(err, ErrCorrupted) {
			s.logger.Warn("ignoring corrupted contacts on reload", zap.Error(err))
			if s.loaded {
				return false, nil
			}
			s.contacts = models.ContactList{}
			s.status = StatusEmpty
			s.loaded = true
			return true, nil
		}
		return false, fmt.Errorf("failed to reload contacts: %w", err)
	}

	loaded := models.ContactList(contacts)
	if loaded.Equal(s.contacts) && s.status != StatusLoading {
		return false, nil
	}

	s.contacts = loaded.Clone()
	s.status = statusFor(len(s.contacts))
	s.loaded = true
	if s.status == StatusEmpty {
		s.filter = ""
	}
	s.logger.Info("contacts reloaded from storage", zap.Int("count", len(s.contacts)))
	return true, nil
}

// AddContact appends a contact with a fresh id. The name must be non-blank
// and unique ignoring case. The contact stays in memory when the save fails.
func (s *Store) AddContact(ctx context.Context, name, number string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLoadedLocked(); err != nil {
		return models.Contact{}, err
	}
	if strings.TrimSpace(name) == "" {
		s.notifier.Failure("Name is required")
		return models.Contact{}, ErrNameRequired
	}

	if s.contacts.HasName(name) {
		s.notifier.Failure(fmt.Sprintf("%s is already in contacts.", strings.TrimSpace(name)))
		return models.Contact{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	contact := models.NewContact(s.newID(), name, number)
	s.contacts = s.contacts.Append(contact)
	s.status = StatusReady
	s.notifier.Success(fmt.Sprintf("%s has been added", contact.Name))
	s.record(ctx, Event{Kind: EventAdded, Contact: contact})

	if err := s.persistLocked(ctx); err != nil {
		return contact, err
	}
	return contact, nil
}

// RemoveContact deletes the contact with the given id. An unknown id leaves the
// list unchanged; the list is persisted either way.
func (s *Store) RemoveContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLoadedLocked(); err != nil {
		return err
	}

	remaining, removed, found := s.contacts.Without(id)
	s.contacts = remaining

	if found {
		s.notifier.Success(fmt.Sprintf("%s has been removed", removed.Name))
		s.record(ctx, Event{Kind: EventRemoved, Contact: removed})
	}

	s.status = statusFor(len(s.contacts))
	if s.status == StatusEmpty {
		if found {
			s.notifier.Info("You deleted all contacts")
		}
		s.filter = ""
	}

	return s.persistLocked(ctx)
}

// LoadDefaults replaces the empty phonebook with the built-in sample contacts.
func (s *Store) LoadDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLoadedLocked(); err != nil {
		return err
	}
	if s.status != StatusEmpty {
		return ErrDefaultsUnavailable
	}

	s.contacts = models.DefaultContacts(s.newID)
	s.filter = ""
	s.status = StatusReady
	for _, contact := range s.contacts {
		s.record(ctx, Event{Kind: EventDefaultsLoaded, Contact: contact})
	}

	return s.persistLocked(ctx)
}

// SetFilter sets the case-insensitive substring matched against names.
func (s *Store) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
}

// VisibleContacts returns the contacts matching the filter, in list order.
func (s *Store) VisibleContacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts.Filter(s.filter)
}

// Contacts returns a copy of the full list.
func (s *Store) Contacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts.Clone()
}

// Filter returns the current filter text.
func (s *Store) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Status returns the lifecycle status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the whole state read under one lock.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Contacts: s.contacts.Clone(),
		Visible:  s.contacts.Filter(s.filter),
		Filter:   s.filter,
		Status:   s.status,
	}
}

func (s *Store) checkLoadedLocked() error {
	if s.loaded {
		return nil
	}
	s.notifier.Failure("Contacts could not be loaded")
	return ErrNotLoaded
}

// persistLocked writes the current list. The in-memory state is kept when the
// write fails.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.persister.SaveContacts(ctx, s.contacts.Clone()); err != nil {
		s.logger.Error("failed to save contacts", zap.Error(err), zap.Int("count", len(s.contacts)))
		s.notifier.Failure("Could not save contacts")
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	return nil
}

func (s *Store) record(ctx context.Context, event Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record contact event",
			zap.String("kind", string(event.Kind)),
			zap.String("contact_id", event.Contact.ID),
			zap.Error(err))
	}
}
