package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/models"
)

// ContactsKey is the single key the phonebook lives under.
const ContactsKey = "contacts"

// ContactRepository serialises the contact list as a JSON array of
// {id, name, number} records under ContactsKey.
type ContactRepository struct {
	backend Backend
	sealer  *Sealer
}

// RepositoryOption configures a ContactRepository.
type RepositoryOption func(*ContactRepository)

// WithSealer encrypts the stored array. Plain arrays written before encryption
// was enabled are still readable.
func WithSealer(sealer *Sealer) RepositoryOption {
	return func(r *ContactRepository) {
		r.sealer = sealer
	}
}

func NewContactRepository(backend Backend, opts ...RepositoryOption) *ContactRepository {
	r := &ContactRepository{backend: backend}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadContacts returns an empty list for a missing key. A payload that is not
// a contact array wraps contactbook.ErrCorrupted, and an encrypted one read
// without a sealer returns contactbook.ErrEncrypted.
func (r *ContactRepository) LoadContacts(ctx context.Context) ([]models.Contact, error) {
	data, found, err := r.backend.Get(ctx, ContactsKey)
	if err != nil {
		return nil, err
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return []models.Contact{}, nil
	}

	data = bytes.TrimSpace(data)
	if data[0] == '{' {
		if r.sealer == nil {
			if isSealed(data) {
				return nil, contactbook.ErrEncrypted
			}
		} else {
			data, err = r.sealer.Open(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt contacts: %w", err)
			}
		}
	}

	var contacts []models.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("%w: %v", contactbook.ErrCorrupted, err)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}

func (r *ContactRepository) SaveContacts(ctx context.Context, contacts []models.Contact) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}

	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	if r.sealer != nil {
		data, err = r.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt contacts: %w", err)
		}
	}

	return r.backend.Put(ctx, ContactsKey, data)
}
