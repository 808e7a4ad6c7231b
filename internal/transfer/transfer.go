// Package transfer moves contacts in and out of the phonebook as JSON or CSV.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"rhystmorgan/phoneterm/internal/models"
)

// Format is a supported export and import encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatCSV
)

const (
	exportVersion = "1.0"
	maxNameLength = 50
)

var csvHeader = []string{"id", "name", "number"}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat maps a format name to a Format. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("unsupported format %q (must be json or csv)", s)
	}
}

// ErrorSeverity grades an ImportError.
type ErrorSeverity int

const (
	SeverityError ErrorSeverity = iota
	SeverityWarning
)

// ImportError describes a problem with one row of an import file.
type ImportError struct {
	LineNumber int
	Field      string
	Message    string
	Severity   ErrorSeverity
}

func (e ImportError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.LineNumber, e.Field, e.Message)
}

// ImportResult summarises an import. Rows with errors are counted in
// Skipped; warnings do not skip a row.
type ImportResult struct {
	TotalContacts int
	ValidContacts int
	Skipped       int
	Errors        []ImportError
	Warnings      []string
}

// Candidate is a row read from an import file. ID is informational; the store
// assigns a fresh one when the candidate is added.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Number     string `json:"number"`
	LineNumber int    `json:"-"`
}

// Conflict pairs an import candidate with the existing contact of the same name.
type Conflict struct {
	Candidate Candidate
	Existing  models.Contact
}

type exportWrapper struct {
	ExportedAt    time.Time        `json:"exported_at"`
	Version       string           `json:"version"`
	TotalContacts int              `json:"total_contacts"`
	Contacts      []models.Contact `json:"contacts"`
}

// Export writes contacts to w in the given format.
func Export(w io.Writer, contacts []models.Contact, format Format) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, contacts)
	case FormatCSV:
		return exportCSV(w, contacts)
	default:
		return fmt.Errorf("unsupported export format")
	}
}

func exportJSON(w io.Writer, contacts []models.Contact) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportWrapper{
		ExportedAt:    time.Now().UTC(),
		Version:       exportVersion,
		TotalContacts: len(contacts),
		Contacts:      contacts,
	}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, contact := range contacts {
		if err := writer.Write([]string{contact.ID, contact.Name, contact.Number}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// Import reads candidates from r. Rows that fail validation are reported in
// the result and left out of the returned candidates.
func Import(r io.Reader, format Format) (*ImportResult, []Candidate, error) {
	var (
		rows []Candidate
		err  error
	)
	switch format {
	case FormatJSON:
		rows, err = readJSON(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, nil, fmt.Errorf("unsupported import format")
	}
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{
		TotalContacts: len(rows),
		Errors:        []ImportError{},
		Warnings:      []string{},
	}

	valid := make([]Candidate, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.Number = strings.TrimSpace(row.Number)

		if !validateCandidate(row, result) {
			continue
		}

		key := strings.ToLower(row.Name)
		if first, ok := seen[key]; ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Line %d: %s duplicates line %d", row.LineNumber, row.Name, first))
		} else {
			seen[key] = row.LineNumber
		}

		valid = append(valid, row)
	}

	result.ValidContacts = len(valid)
	result.Skipped = result.TotalContacts - result.ValidContacts
	return result, valid, nil
}

func readJSON(r io.Reader) ([]Candidate, error) {
	var wrapper struct {
		Contacts []Candidate `json:"contacts"`
	}
	if err := json.NewDecoder(r).Decode(&wrapper); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty JSON file")
		}
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for idx := range wrapper.Contacts {
		wrapper.Contacts[idx].LineNumber = idx + 1
	}
	return wrapper.Contacts, nil
}

func readCSV(r io.Reader) ([]Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file")
	}

	headerMap := make(map[string]int)
	for idx, col := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	if _, ok := headerMap["name"]; !ok {
		return nil, fmt.Errorf("CSV header has no name column")
	}

	field := func(record []string, column string) string {
		if idx, ok := headerMap[column]; ok && idx < len(record) {
			return record[idx]
		}
		return ""
	}

	rows := make([]Candidate, 0, len(records)-1)
	for rowIdx, record := range records[1:] {
		rows = append(rows, Candidate{
			ID:         strings.TrimSpace(field(record, "id")),
			Name:       field(record, "name"),
			Number:     field(record, "number"),
			LineNumber: rowIdx + 2,
		})
	}
	return rows, nil
}

func validateCandidate(c Candidate, result *ImportResult) bool {
	valid := true

	if c.Name == "" {
		valid = false
		result.Errors = append(result.Errors, ImportError{
			LineNumber: c.LineNumber,
			Field:      "name",
			Message:    "Name is required",
			Severity:   SeverityError,
		})
	}

	if utf8.RuneCountInString(c.Name) > maxNameLength {
		valid = false
		result.Errors = append(result.Errors, ImportError{
			LineNumber: c.LineNumber,
			Field:      "name",
			Message:    fmt.Sprintf("Name too long (max %d characters)", maxNameLength),
			Severity:   SeverityError,
		})
	}

	if valid && c.Number == "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Line %d: %s has no number", c.LineNumber, c.Name))
	}

	return valid
}

// DetectConflicts returns every candidate whose name already exists,
// compared case-insensitively.
func DetectConflicts(candidates []Candidate, existing []models.Contact) []Conflict {
	conflicts := []Conflict{}
	for _, candidate := range candidates {
		for _, contact := range existing {
			if strings.EqualFold(strings.TrimSpace(candidate.Name), contact.Name) {
				conflicts = append(conflicts, Conflict{Candidate: candidate, Existing: contact})
				break
			}
		}
	}
	return conflicts
}

// BackupFilename returns a timestamped file name for an export.
func BackupFilename(format Format, now time.Time) string {
	return fmt.Sprintf("contacts_backup_%s%s", now.Format("2006-01-02_15-04-05"), format.Extension())
}
