// Package book holds the contact book: an in-memory mapping from identifier to contact that
// enforces the uniqueness and validity of its entries.
//
// A Book is not safe for concurrent use. Callers that share a Book between goroutines must
// serialize the access themselves.
package book

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gitlab.com/dirk.krummacker/contact-book/internal/model"
	"gitlab.com/dirk.krummacker/contact-book/internal/validate"
)

var (
	// ErrAlreadyExists is returned when adding a contact under an identifier that is taken.
	ErrAlreadyExists = errors.New("contact already exists")

	// ErrNotFound is returned when no contact is stored under the requested identifier.
	ErrNotFound = errors.New("contact not found")

	// ErrInvalidIdentifier is returned for identifiers that are empty after normalization.
	ErrInvalidIdentifier = errors.New("identifier must not be empty")
)

// Book is the contact book. The zero value is not usable, create one with New.
type Book struct {
	contacts map[string]*model.Contact
	order    []string
}

// New returns an empty contact book.
func New() *Book {
	return &Book{contacts: make(map[string]*model.Contact)}
}

// NormalizeIdentifier folds an identifier into the form under which it is stored: surrounding
// and repeated whitespace is removed and every word is capitalized, so that "alice smith" and
// "ALICE  SMITH" resolve to the same contact.
func NormalizeIdentifier(raw string) string {
	return titleCase(raw)
}

// titleCase collapses whitespace and capitalizes the first letter of every word.
func titleCase(raw string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(raw), " "))
}

// Len returns the number of contacts in the book.
func (b *Book) Len() int {
	return len(b.order)
}

// Add validates a new contact and stores it. The phone number may be given in any form with
// exactly ten digits; it is stored as DDD-DDD-DDDD. The name is capitalized like the identifier.
// Adding a contact under an identifier that is already present fails with ErrAlreadyExists and
// leaves the stored contact untouched.
func (b *Book) Add(c model.Contact) (model.Contact, error) {
	c.Name = titleCase(c.Name)
	canonical, err := Canonical(c)
	if err != nil {
		return model.Contact{}, err
	}
	if _, found := b.contacts[canonical.Identifier]; found {
		return model.Contact{}, ErrAlreadyExists
	}
	b.insert(canonical)
	return canonical, nil
}

// Put stores a contact, replacing any contact with the same identifier. The contact is validated
// like in Add, but the name is kept as given. Put is used by the importers.
func (b *Book) Put(c model.Contact) (model.Contact, error) {
	canonical, err := Canonical(c)
	if err != nil {
		return model.Contact{}, err
	}
	if existing, found := b.contacts[canonical.Identifier]; found {
		*existing = canonical
		return canonical, nil
	}
	b.insert(canonical)
	return canonical, nil
}

func (b *Book) insert(c model.Contact) {
	stored := c
	b.contacts[c.Identifier] = &stored
	b.order = append(b.order, c.Identifier)
}

// Canonical returns the contact in the form in which it would be stored, or the first validation
// error. It does not modify any book.
func Canonical(c model.Contact) (model.Contact, error) {
	c.Identifier = NormalizeIdentifier(c.Identifier)
	if c.Identifier == "" {
		return model.Contact{}, ErrInvalidIdentifier
	}
	if err := checkFields(c); err != nil {
		return model.Contact{}, err
	}
	phone, err := validate.Phone(c.Phone)
	if err != nil {
		return model.Contact{}, err
	}
	c.Phone = phone
	if err := validate.Email(c.Email); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

// checkFields rejects contacts with values that cannot be written to the contacts file.
func checkFields(c model.Contact) error {
	fields := []struct{ name, value string }{
		{"identifier", c.Identifier},
		{"name", c.Name},
		{"phone", c.Phone},
		{"email", c.Email},
		{"additional info", c.AdditionalInfo},
	}
	for _, f := range fields {
		if err := validate.Field(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// Edit applies a partial update to the contact with the given identifier. Empty or blank fields
// in changes keep the current value. A replacement phone number or email address is validated; if any value
// is rejected, the contact is left unchanged. The updated contact is returned.
func (b *Book) Edit(identifier string, changes model.Changes) (model.Contact, error) {
	existing, found := b.contacts[NormalizeIdentifier(identifier)]
	if !found {
		return model.Contact{}, ErrNotFound
	}
	updated := *existing
	if !blank(changes.Name) {
		updated.Name = titleCase(changes.Name)
	}
	if !blank(changes.Phone) {
		updated.Phone = changes.Phone
	}
	if !blank(changes.Email) {
		updated.Email = changes.Email
	}
	if !blank(changes.AdditionalInfo) {
		updated.AdditionalInfo = changes.AdditionalInfo
	}
	if changes.IsEmpty() {
		return updated, nil
	}
	canonical, err := Canonical(updated)
	if err != nil {
		return model.Contact{}, err
	}
	*existing = canonical
	return canonical, nil
}

// blank reports whether value holds nothing but whitespace.
func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Delete removes the contact with the given identifier.
func (b *Book) Delete(identifier string) error {
	key := NormalizeIdentifier(identifier)
	if _, found := b.contacts[key]; !found {
		return ErrNotFound
	}
	delete(b.contacts, key)
	b.order = slices.DeleteFunc(b.order, func(k string) bool { return k == key })
	return nil
}

// Find returns the contact with the given identifier. There is no partial matching.
func (b *Book) Find(identifier string) (model.Contact, bool) {
	c, found := b.contacts[NormalizeIdentifier(identifier)]
	if !found {
		return model.Contact{}, false
	}
	return *c, true
}

// List returns copies of all contacts in the order in which they were first stored.
func (b *Book) List() []model.Contact {
	contacts := make([]model.Contact, 0, len(b.order))
	for _, key := range b.order {
		contacts = append(contacts, *b.contacts[key])
	}
	return contacts
}
