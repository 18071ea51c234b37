package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/model"
)

// alice is stored in the books of the tests that need an existing contact.
var alice = model.Contact{
	Identifier: "Alice",
	Name:       "Alice",
	Phone:      "555-123-4567",
	Email:      "a@x.com",
}

// runScript runs a shell on the book with the given input lines and returns the output.
func runScript(t *testing.T, b *book.Book, opts Options, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(strings.Join(lines, "\n") + "\n")
	opts.Out = &out
	if opts.File == "" {
		opts.File = filepath.Join(t.TempDir(), "contacts.txt")
	}
	require.NoError(t, New(b, opts).Run())
	return out.String()
}

// bookWithAlice returns a book that contains alice.
func bookWithAlice(t *testing.T) *book.Book {
	b := book.New()
	_, err := b.Add(alice)
	require.NoError(t, err)
	return b
}

// TestAddSearchList adds a contact and looks it up with a different spelling.
func TestAddSearchList(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{},
		"1", "alice", "alice smith", "5551234567", "a@x.com", "notes",
		"4", "ALICE",
		"5",
		"8",
	)
	assert.Contains(t, out, "Welcome to the Contact Management System!")
	assert.Contains(t, out, "Contact added successfully.")
	assert.Contains(t, out, "Contact details: Name: Alice Smith, Phone: 555-123-4567, Email: a@x.com, Additional Info: notes")
	assert.Contains(t, out, "Identifier: Alice, Details: Name: Alice Smith")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.Equal(t, 1, b.Len())
}

// TestAddInvalidPhoneScripted checks that invalid input is not asked for again when the input
// does not come from a terminal.
func TestAddInvalidPhoneScripted(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{MaxAttempts: 5},
		"1", "bob", "Bob", "123",
		"5",
		"8",
	)
	assert.Contains(t, out, "Contact not added: invalid phone number, please enter 10 digits.")
	assert.Contains(t, out, "No contacts found.")
	assert.Equal(t, 0, b.Len())
}

// TestAddRetriesInteractively checks that invalid phone numbers and emails are asked for again.
func TestAddRetriesInteractively(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{Interactive: true, MaxAttempts: 3},
		"1", "bob", "Bob", "123", "555 000 1111", "nope", "bob@x.com", "",
		"8",
	)
	assert.Contains(t, out, "Invalid phone number, please enter 10 digits.")
	assert.Contains(t, out, "Invalid email address format.")
	assert.Contains(t, out, "Contact added successfully.")

	found, ok := b.Find("bob")
	require.True(t, ok)
	assert.Equal(t, model.Contact{
		Identifier: "Bob",
		Name:       "Bob",
		Phone:      "555-000-1111",
		Email:      "bob@x.com",
	}, found)
}

// TestAddAttemptsExhausted checks that the add is abandoned after the configured attempts.
func TestAddAttemptsExhausted(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{Interactive: true, MaxAttempts: 2},
		"1", "bob", "Bob", "1", "2",
		"8",
	)
	assert.Equal(t, 1, strings.Count(out, "Invalid phone number, please enter 10 digits.\n"))
	assert.Contains(t, out, "Contact not added: invalid phone number, please enter 10 digits.")
	assert.Equal(t, 0, b.Len())
}

// TestAddReservedCharacter checks that a value with the file delimiter is rejected.
func TestAddReservedCharacter(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{},
		"1", "bob", "Bob", "5550001111", "bob@x.com", "a|b",
		"8",
	)
	assert.Contains(t, out, "Contact not added: additional info contains a reserved character")
	assert.Equal(t, 0, b.Len())
}

// TestAddDuplicate checks that an existing identifier is rejected before any other prompt.
func TestAddDuplicate(t *testing.T) {
	b := bookWithAlice(t)
	out := runScript(t, b, Options{},
		"1", "ALICE",
		"8",
	)
	assert.Contains(t, out, "Contact already exists.")
	assert.NotContains(t, out, "Enter name: ")
	found, _ := b.Find("alice")
	assert.Equal(t, alice, found)
}

// TestAddEmptyIdentifier checks that a blank identifier is rejected.
func TestAddEmptyIdentifier(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{}, "1", "   ", "8")
	assert.Contains(t, out, "Identifier must not be empty.")
	assert.Equal(t, 0, b.Len())
}

// TestEdit checks a partial update and the handling of invalid replacement values.
func TestEdit(t *testing.T) {
	b := bookWithAlice(t)
	out := runScript(t, b, Options{},
		"2", "alice", "", "555-999-0000", "", "",
		"2", "alice", "", "", "bad", "",
		"2", "nobody",
		"8",
	)
	assert.Contains(t, out, "Current details: Name: Alice, Phone: 555-123-4567, Email: a@x.com, Additional Info: ")
	assert.Contains(t, out, "Contact updated successfully.")
	assert.Contains(t, out, "Contact not updated: invalid email address format.")
	assert.Contains(t, out, "Contact not found.")

	found, _ := b.Find("alice")
	assert.Equal(t, "555-999-0000", found.Phone)
	assert.Equal(t, "a@x.com", found.Email)
}

// TestDelete deletes a contact twice.
func TestDelete(t *testing.T) {
	b := bookWithAlice(t)
	out := runScript(t, b, Options{},
		"3", "alice",
		"3", "alice",
		"4", "alice",
		"8",
	)
	assert.Contains(t, out, "Contact deleted successfully.")
	assert.Equal(t, 2, strings.Count(out, "Contact not found."))
	assert.Equal(t, 0, b.Len())
}

// TestExportImport exports a book with one shell and imports it with another.
func TestExportImport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "contacts.txt")
	out := runScript(t, bookWithAlice(t), Options{File: file}, "6", "8")
	assert.Contains(t, out, "Contacts exported successfully to "+file+".")

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "Alice|Alice|555-123-4567|a@x.com|\n", string(content))

	restored := book.New()
	out = runScript(t, restored, Options{File: file}, "7", "8")
	assert.Contains(t, out, "Imported 1 contacts from "+file+".")
	found, ok := restored.Find("alice")
	require.True(t, ok)
	assert.Equal(t, alice, found)
}

// TestImportReportsSkippedLines checks that malformed lines are shown to the user.
func TestImportReportsSkippedLines(t *testing.T) {
	file := filepath.Join(t.TempDir(), "contacts.txt")
	require.NoError(t, os.WriteFile(file, []byte("Alice|Alice|555-123-4567|a@x.com|\nbad line\n"), 0o600))

	b := book.New()
	out := runScript(t, b, Options{File: file}, "7", "8")
	assert.Contains(t, out, "Skipped line 2: line does not have exactly 5 fields.")
	assert.Contains(t, out, "Imported 1 contacts from "+file+".")
	assert.Equal(t, 1, b.Len())
}

// TestFileErrors checks that i/o errors are reported and do not end the loop.
func TestFileErrors(t *testing.T) {
	dir := t.TempDir()
	b := bookWithAlice(t)
	out := runScript(t, b, Options{File: filepath.Join(dir, "missing", "contacts.txt")},
		"6",
		"7",
		"5",
		"8",
	)
	assert.Contains(t, out, "An error occurred while exporting contacts: ")
	assert.Contains(t, out, "An error occurred while importing contacts: ")
	assert.Contains(t, out, "Identifier: Alice")
	assert.Equal(t, 1, b.Len())
}

// TestInvalidOption checks that unknown menu input redisplays the menu.
func TestInvalidOption(t *testing.T) {
	out := runScript(t, book.New(), Options{}, "9", "abc", "8")
	assert.Equal(t, 2, strings.Count(out, "Invalid option, please try again."))
	assert.Equal(t, 3, strings.Count(out, "Select an option (1-8): "))
}

// TestEndOfInput checks that the loop ends without a quit selection when the input ends, also in
// the middle of an action.
func TestEndOfInput(t *testing.T) {
	out := runScript(t, book.New(), Options{}, "5")
	assert.Contains(t, out, "No contacts found.")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))

	b := book.New()
	out = runScript(t, b, Options{Interactive: true}, "1", "bob", "Bob")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.Equal(t, 0, b.Len())
}

// TestAddLongInfo adds a contact whose additional information is longer than a default scanner
// buffer.
func TestAddLongInfo(t *testing.T) {
	b := book.New()
	info := strings.Repeat("n", 70*1024)
	out := runScript(t, b, Options{},
		"1", "bob", "Bob", "5550001111", "bob@x.com", info,
		"8")
	assert.Contains(t, out, "Contact added successfully.")
	bob, found := b.Find("bob")
	require.True(t, found)
	assert.Equal(t, info, bob.AdditionalInfo)
}

// TestOversizeInputLine checks that a line over the limit abandons the action and the menu keeps
// running.
func TestOversizeInputLine(t *testing.T) {
	b := book.New()
	out := runScript(t, b, Options{},
		"1", "bob", "Bob", "5550001111", "bob@x.com", strings.Repeat("n", maxInputLength+1),
		"5",
		"1", "carol", "Carol", "5552223333", "c@x.com", "",
		"8")
	assert.Contains(t, out, "Input is longer than")
	assert.Contains(t, out, "No contacts found.")
	assert.Contains(t, out, "Contact added successfully.")
	assert.Equal(t, 1, b.Len())
	_, found := b.Find("bob")
	assert.False(t, found)
}
