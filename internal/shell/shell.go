// Package shell implements the interactive menu of the contact book. It reads one line per prompt
// and forwards the input to the contact book and the contacts file codec.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/codec"
	"gitlab.com/dirk.krummacker/contact-book/internal/model"
	"gitlab.com/dirk.krummacker/contact-book/internal/validate"
)

// ErrCancelled is returned by prompts when the input ends before a value was entered.
var ErrCancelled = errors.New("input ended")

// maxInputLength is the longest input line accepted by a prompt. Longer lines are dropped and the
// current action is abandoned.
const maxInputLength = validate.MaxFieldLength

// Options configure a Shell.
type Options struct {
	// File is the contacts file used by export and import.
	File string

	In  io.Reader
	Out io.Writer

	// Logger receives diagnostics. It defaults to a logger that discards everything.
	Logger *slog.Logger

	// Interactive is set when a human types the input. Only then are invalid phone numbers and
	// email addresses asked for again.
	Interactive bool

	// MaxAttempts limits how often a field is asked for in interactive mode. 0 means no limit.
	MaxAttempts int
}

// Shell is the interactive menu loop around one contact book.
type Shell struct {
	book     *book.Book
	file     string
	in       *bufio.Reader
	out      io.Writer
	log      *slog.Logger
	attempts int
}

// New returns a shell that works on the given book.
func New(b *book.Book, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	attempts := 1
	if opts.Interactive {
		attempts = opts.MaxAttempts
	}
	return &Shell{
		book:     b,
		file:     opts.File,
		in:       bufio.NewReader(opts.In),
		out:      opts.Out,
		log:      logger,
		attempts: attempts,
	}
}

// Run shows the menu and executes the selected actions until the user quits or the input ends.
// Failed actions are reported to the user and do not end the loop; an error is only returned if
// reading the input fails.
func (s *Shell) Run() error {
	for {
		s.printMenu()
		choice, err := s.readLine("Select an option (1-8): ")
		if err == nil {
			err = s.dispatch(choice)
		}
		if errors.Is(err, errQuit) || errors.Is(err, ErrCancelled) {
			s.println("Goodbye!")
			return nil
		}
		if errors.Is(err, codec.ErrLineTooLong) {
			s.log.Warn("input line too long", "limit", maxInputLength)
			s.printf("Input is longer than %d bytes and was ignored.\n", maxInputLength)
			continue
		}
		if err != nil {
			return err
		}
	}
}

// errQuit ends the menu loop.
var errQuit = errors.New("quit")

func (s *Shell) dispatch(choice string) error {
	switch choice {
	case "1":
		return s.addContact()
	case "2":
		return s.editContact()
	case "3":
		return s.deleteContact()
	case "4":
		return s.searchContact()
	case "5":
		s.displayAllContacts()
	case "6":
		s.exportContacts()
	case "7":
		s.importContacts()
	case "8":
		return errQuit
	default:
		s.println("Invalid option, please try again.")
	}
	return nil
}

func (s *Shell) printMenu() {
	s.println("")
	s.println("Welcome to the Contact Management System!")
	s.println("Menu:")
	s.println("1. Add a new contact")
	s.println("2. Edit an existing contact")
	s.println("3. Delete a contact")
	s.println("4. Search for a contact")
	s.println("5. Display all contacts")
	s.println("6. Export contacts to a text file")
	s.println("7. Import contacts from a text file")
	s.println("8. Quit")
}

func (s *Shell) addContact() error {
	identifier, err := s.readLine("Enter a unique identifier (contact name or email): ")
	if err != nil {
		return err
	}
	if book.NormalizeIdentifier(identifier) == "" {
		s.println(sentence(book.ErrInvalidIdentifier))
		return nil
	}
	if _, found := s.book.Find(identifier); found {
		s.println("Contact already exists.")
		return nil
	}
	name, err := s.readLine("Enter name: ")
	if err != nil {
		return err
	}
	phone, err := s.readValid("Enter phone number (digits only): ", validate.Phone)
	if err != nil {
		return s.notAdded(err)
	}
	email, err := s.readValid("Enter email address: ", func(raw string) (string, error) {
		return raw, validate.Email(raw)
	})
	if err != nil {
		return s.notAdded(err)
	}
	info, err := s.readLine("Enter additional information (address, notes): ")
	if err != nil {
		return err
	}

	added, err := s.book.Add(model.Contact{
		Identifier:     identifier,
		Name:           name,
		Phone:          phone,
		Email:          email,
		AdditionalInfo: info,
	})
	if err != nil {
		return s.notAdded(err)
	}
	s.log.Debug("contact added", "identifier", added.Identifier)
	s.println("Contact added successfully.")
	return nil
}

// notAdded reports a failed add. Input errors are passed on, everything else ends the action.
func (s *Shell) notAdded(err error) error {
	if errors.Is(err, ErrCancelled) || errors.Is(err, codec.ErrLineTooLong) {
		return err
	}
	s.log.Info("contact not added", "err", err)
	s.printf("Contact not added: %v.\n", err)
	return nil
}

func (s *Shell) editContact() error {
	identifier, err := s.readLine("Enter the unique identifier of the contact to edit: ")
	if err != nil {
		return err
	}
	current, found := s.book.Find(identifier)
	if !found {
		s.println("Contact not found.")
		return nil
	}
	s.println("Current details: " + details(current))

	var changes model.Changes
	prompts := []struct {
		prompt string
		field  *string
	}{
		{"Enter new name (leave blank to keep current): ", &changes.Name},
		{"Enter new phone number (leave blank to keep current): ", &changes.Phone},
		{"Enter new email address (leave blank to keep current): ", &changes.Email},
		{"Enter new additional information (leave blank to keep current): ", &changes.AdditionalInfo},
	}
	for _, p := range prompts {
		if *p.field, err = s.readLine(p.prompt); err != nil {
			return err
		}
	}

	if _, err := s.book.Edit(identifier, changes); err != nil {
		s.log.Info("contact not updated", "identifier", current.Identifier, "err", err)
		s.printf("Contact not updated: %v.\n", err)
		return nil
	}
	s.log.Debug("contact updated", "identifier", current.Identifier)
	s.println("Contact updated successfully.")
	return nil
}

func (s *Shell) deleteContact() error {
	identifier, err := s.readLine("Enter the unique identifier of the contact to delete: ")
	if err != nil {
		return err
	}
	if err := s.book.Delete(identifier); err != nil {
		s.println(sentence(err))
		return nil
	}
	s.log.Debug("contact deleted", "identifier", book.NormalizeIdentifier(identifier))
	s.println("Contact deleted successfully.")
	return nil
}

func (s *Shell) searchContact() error {
	identifier, err := s.readLine("Enter the unique identifier of the contact to search: ")
	if err != nil {
		return err
	}
	c, found := s.book.Find(identifier)
	if !found {
		s.println(sentence(book.ErrNotFound))
		return nil
	}
	s.println("Contact details: " + details(c))
	return nil
}

func (s *Shell) displayAllContacts() {
	if s.book.Len() == 0 {
		s.println("No contacts found.")
		return
	}
	for _, c := range s.book.List() {
		s.printf("Identifier: %s, Details: %s\n", c.Identifier, details(c))
	}
}

func (s *Shell) exportContacts() {
	if err := codec.ExportFile(s.file, s.book); err != nil {
		s.log.Error("export failed", "file", s.file, "err", err)
		s.printf("An error occurred while exporting contacts: %v\n", err)
		return
	}
	s.log.Debug("contacts exported", "file", s.file, "count", s.book.Len())
	s.printf("Contacts exported successfully to %s.\n", s.file)
}

func (s *Shell) importContacts() {
	report, err := codec.ImportFile(s.file, s.book)
	if err != nil {
		s.log.Error("import failed", "file", s.file, "err", err)
		s.printf("An error occurred while importing contacts: %v\n", err)
		return
	}
	for _, skipped := range report.Skipped {
		s.log.Warn("skipped malformed line", "file", s.file, "line", skipped.Line, "err", skipped.Reason)
		s.printf("Skipped %v.\n", skipped)
	}
	s.printf("Imported %d contacts from %s.\n", report.Imported, s.file)
}

// readLine shows the prompt and returns the next input line without surrounding whitespace.
func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := codec.ReadLine(s.in, maxInputLength)
	switch {
	case errors.Is(err, io.EOF):
		s.println("")
		return "", ErrCancelled
	case errors.Is(err, codec.ErrLineTooLong):
		s.println("")
		return "", err
	case err != nil:
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readValid asks for a value until check accepts it or the attempts are used up. The last
// validation error is returned in the latter case.
func (s *Shell) readValid(prompt string, check func(string) (string, error)) (string, error) {
	for attempt := 1; ; attempt++ {
		raw, err := s.readLine(prompt)
		if err != nil {
			return "", err
		}
		value, err := check(raw)
		if err == nil {
			return value, nil
		}
		if s.attempts > 0 && attempt >= s.attempts {
			return "", err
		}
		s.println(sentence(err))
	}
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// details formats the fields of a contact except the identifier.
func details(c model.Contact) string {
	return fmt.Sprintf("Name: %s, Phone: %s, Email: %s, Additional Info: %s",
		c.Name, c.Phone, c.Email, c.AdditionalInfo)
}

// sentence turns an error message into a sentence for the user.
func sentence(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
