package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/models"
	"rhystmorgan/phoneterm/internal/transfer"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rt, err := flags.openLoaded(cmd.Context(), printTo(out))
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.store.Status() == contactbook.StatusEmpty {
				fmt.Fprintln(out, "There is no contacts")
				fmt.Fprintln(out, "Run `phoneterm defaults` to load the default contacts.")
				return nil
			}

			rt.store.SetFilter(filter)
			visible := rt.store.VisibleContacts()
			if len(visible) == 0 {
				fmt.Fprintln(out, "No contacts with this name")
				return nil
			}

			tbl := stylesFor(rt.cfg).Table("NAME", "NUMBER", "ID")
			for _, contact := range visible {
				tbl.Row(contact.Name, contact.Number, contact.ID)
			}
			_, err = fmt.Fprintln(out, tbl.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Show only names containing this text (case-insensitive)")
	return cmd
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME NUMBER",
		Short: "Add a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.openLoaded(cmd.Context(), printTo(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer rt.Close()

			_, err = rt.store.AddContact(cmd.Context(), args[0], args[1])
			return err
		},
	}
}

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a contact by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.openLoaded(cmd.Context(), printTo(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, found := models.ContactList(rt.store.Contacts()).FindByID(args[0]); !found {
				return fmt.Errorf("no contact with id %s", args[0])
			}
			return rt.store.RemoveContact(cmd.Context(), args[0])
		},
	}
}

func newDefaultsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Load the default contacts into an empty phonebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rt, err := flags.openLoaded(cmd.Context(), printTo(out))
			if err != nil {
				return err
			}
			defer rt.Close()

			err = rt.store.LoadDefaults(cmd.Context())
			if errors.Is(err, contactbook.ErrDefaultsUnavailable) {
				return fmt.Errorf("phonebook already has contacts")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Loaded %d default contacts\n", len(rt.store.Contacts()))
			return nil
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		formatName string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export contacts as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := transfer.ParseFormat(formatName)
			if err != nil {
				return err
			}

			rt, err := flags.openLoaded(cmd.Context(), printTo(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rt.Close()

			contacts := rt.store.Contacts()
			if outPath == "-" {
				return transfer.Export(cmd.OutOrStdout(), contacts, format)
			}
			if outPath == "" {
				outPath = transfer.BackupFilename(format, time.Now())
			}

			if err := writeExport(outPath, contacts, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s\n", len(contacts), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "json", "Export format: json|csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, - for stdout (default contacts_backup_<time>.<format>)")
	return cmd
}

func writeExport(path string, contacts []models.Contact, format transfer.Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := transfer.Export(file, contacts, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	var (
		formatName string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import contacts from a JSON or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if formatName == "" {
				formatName = strings.TrimPrefix(filepath.Ext(path), ".")
			}
			format, err := transfer.ParseFormat(formatName)
			if err != nil {
				return err
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer file.Close()

			result, candidates, err := transfer.Import(file, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rt, err := flags.openLoaded(cmd.Context(), printTo(out))
			if err != nil {
				return err
			}
			defer rt.Close()

			printImportReport(out, result, transfer.DetectConflicts(candidates, rt.store.Contacts()))
			if dryRun {
				fmt.Fprintf(out, "Dry run: %d contacts would be imported\n", len(candidates))
				return nil
			}

			added := 0
			for _, candidate := range candidates {
				_, err := rt.store.AddContact(cmd.Context(), candidate.Name, candidate.Number)
				switch {
				case err == nil:
					added++
				case errors.Is(err, contactbook.ErrDuplicateName), errors.Is(err, contactbook.ErrNameRequired):
				default:
					return err
				}
			}
			fmt.Fprintf(out, "Imported %d of %d contacts\n", added, result.TotalContacts)
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "", "Import format: json|csv (default from file extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without changing the phonebook")
	return cmd
}

func printImportReport(out io.Writer, result *transfer.ImportResult, conflicts []transfer.Conflict) {
	fmt.Fprintf(out, "Read %d contacts: %d valid, %d skipped\n",
		result.TotalContacts, result.ValidContacts, result.Skipped)
	for _, importErr := range result.Errors {
		fmt.Fprintf(out, "  error: %s\n", importErr.Error())
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}
	for _, conflict := range conflicts {
		fmt.Fprintf(out, "  conflict: line %d: %s already exists\n",
			conflict.Candidate.LineNumber, conflict.Existing.Name)
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent phonebook changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rt, err := flags.open(printTo(out))
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.journal.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet")
				return nil
			}

			tbl := stylesFor(rt.cfg).Table("TIME", "ACTION", "NAME", "NUMBER")
			for _, entry := range entries {
				tbl.Row(
					entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
					string(entry.Action),
					entry.Name,
					entry.Number)
			}
			_, err = fmt.Fprintln(out, tbl.String())
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show, 0 for all")
	return cmd
}
