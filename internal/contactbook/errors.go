package contactbook

import "errors"

var (
	// ErrDuplicateName is returned by AddContact when a contact with a
	// case-insensitively equal name already exists.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNameRequired is returned by AddContact for a blank name.
	ErrNameRequired = errors.New("name required")

	// ErrDefaultsUnavailable is returned by LoadDefaults unless the store is empty.
	ErrDefaultsUnavailable = errors.New("default contacts are only available for an empty phonebook")

	// ErrCorrupted is wrapped by a Persister when the stored payload cannot be
	// decoded. Load treats it as an empty phonebook.
	ErrCorrupted = errors.New("stored contacts are corrupted")

	// ErrEncrypted is wrapped by a Persister when the stored payload is
	// encrypted and no passphrase was given. Unlike ErrCorrupted it fails Load.
	ErrEncrypted = errors.New("stored contacts are encrypted and no passphrase is set")

	// ErrNotLoaded is returned by the mutating operations until a Load or
	// Reload has read storage successfully.
	ErrNotLoaded = errors.New("contacts have not been loaded")
)
