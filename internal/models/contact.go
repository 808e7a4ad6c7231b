package models

import (
	"strings"
)

type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// ContactList is an ordered collection of contacts. Methods never modify the
// receiver; they return fresh slices so callers can hand them to the view
// layer without copying.
type ContactList []Contact

// NewContact trims the name and number.
func NewContact(id, name, number string) Contact {
	return Contact{
		ID:     id,
		Name:   strings.TrimSpace(name),
		Number: strings.TrimSpace(number),
	}
}

func (cl ContactList) FindByID(id string) (Contact, bool) {
	for _, contact := range cl {
		if contact.ID == id {
			return contact, true
		}
	}
	return Contact{}, false
}

// HasName reports whether a contact with a case-insensitively equal name exists.
func (cl ContactList) HasName(name string) bool {
	name = strings.TrimSpace(name)
	for _, contact := range cl {
		if strings.EqualFold(contact.Name, name) {
			return true
		}
	}
	return false
}

// Without returns a copy of the list minus the contact with the given id,
// along with the removed contact. The order of the remaining entries is kept.
func (cl ContactList) Without(id string) (ContactList, Contact, bool) {
	var (
		removed Contact
		found   bool
	)

	result := make(ContactList, 0, len(cl))
	for _, contact := range cl {
		if !found && contact.ID == id {
			removed = contact
			found = true
			continue
		}
		result = append(result, contact)
	}

	return result, removed, found
}

func (cl ContactList) Append(contact Contact) ContactList {
	result := make(ContactList, 0, len(cl)+1)
	result = append(result, cl...)
	return append(result, contact)
}

// Filter returns the contacts whose name contains query, ignoring case.
// An empty query returns the whole list.
func (cl ContactList) Filter(query string) ContactList {
	if query == "" {
		return cl.Clone()
	}

	query = strings.ToLower(query)
	filtered := make(ContactList, 0, len(cl))
	for _, contact := range cl {
		if strings.Contains(strings.ToLower(contact.Name), query) {
			filtered = append(filtered, contact)
		}
	}
	return filtered
}

func (cl ContactList) Clone() ContactList {
	if cl == nil {
		return ContactList{}
	}
	result := make(ContactList, len(cl))
	copy(result, cl)
	return result
}

// Equal compares two lists entry by entry, order included.
func (cl ContactList) Equal(other ContactList) bool {
	if len(cl) != len(other) {
		return false
	}
	for i := range cl {
		if cl[i] != other[i] {
			return false
		}
	}
	return true
}

var defaultEntries = []struct {
	name   string
	number string
}{
	{"Rosie Simpson", "459-12-56"},
	{"Rosie Sompson", "145-23-65"},
	{"Hermione Kline", "443-89-12"},
	{"Eden Clements", "645-17-79"},
	{"Annie Copeland", "227-91-26"},
	{"Jack Shepart", "345-53-81"},
}

// DefaultContacts builds the built-in sample phonebook, assigning a fresh id
// to every entry.
func DefaultContacts(newID func() string) ContactList {
	contacts := make(ContactList, 0, len(defaultEntries))
	for _, entry := range defaultEntries {
		contacts = append(contacts, NewContact(newID(), entry.name, entry.number))
	}
	return contacts
}
