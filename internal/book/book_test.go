package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/contact-book/internal/model"
	"gitlab.com/dirk.krummacker/contact-book/internal/validate"
)

// erika returns a valid contact as it would be typed in by a user.
func erika() model.Contact {
	return model.Contact{
		Identifier:     "erika",
		Name:           "erika mustermann",
		Phone:          "(555) 123 4567",
		Email:          "erika@example.com",
		AdditionalInfo: "Musterstraße 1, Berlin",
	}
}

// TestNormalizeIdentifier checks that differently typed identifiers fold to the same key.
func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "Alice", NormalizeIdentifier("alice"))
	assert.Equal(t, "Alice", NormalizeIdentifier("ALICE"))
	assert.Equal(t, "Alice Smith", NormalizeIdentifier("  alice   SMITH "))
	assert.Equal(t, "", NormalizeIdentifier("   "))
	for _, raw := range []string{"alice", "Rudi Völler", "o'neil", "bob@example.com"} {
		once := NormalizeIdentifier(raw)
		assert.Equal(t, once, NormalizeIdentifier(once), raw)
	}
}

// TestAddAndFind checks that a contact can be found under any spelling of its identifier.
func TestAddAndFind(t *testing.T) {
	b := New()
	added, err := b.Add(erika())
	require.NoError(t, err)
	assert.Equal(t, "Erika", added.Identifier)
	assert.Equal(t, "Erika Mustermann", added.Name)
	assert.Equal(t, "555-123-4567", added.Phone)

	for _, identifier := range []string{"erika", "Erika", "ERIKA", " erika "} {
		found, ok := b.Find(identifier)
		assert.True(t, ok, identifier)
		assert.Equal(t, added, found, identifier)
	}
	assert.Equal(t, 1, b.Len())
}

// TestAddDuplicate checks that a colliding identifier is rejected without touching the existing
// contact.
func TestAddDuplicate(t *testing.T) {
	b := New()
	original, err := b.Add(erika())
	require.NoError(t, err)

	duplicate := erika()
	duplicate.Identifier = "ERIKA"
	duplicate.Name = "Somebody Else"
	_, err = b.Add(duplicate)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	found, _ := b.Find("erika")
	assert.Equal(t, original, found)
	assert.Equal(t, 1, b.Len())
}

// TestAddInvalid checks that invalid contacts are rejected with the matching error kind and that
// nothing is stored.
func TestAddInvalid(t *testing.T) {
	cases := []struct {
		modify   func(c *model.Contact)
		expected error
	}{
		{func(c *model.Contact) { c.Identifier = "  " }, ErrInvalidIdentifier},
		{func(c *model.Contact) { c.Phone = "12345" }, validate.ErrInvalidPhone},
		{func(c *model.Contact) { c.Phone = "" }, validate.ErrInvalidPhone},
		{func(c *model.Contact) { c.Email = "erika.example.com" }, validate.ErrInvalidEmail},
		{func(c *model.Contact) { c.Name = "Erika | Mustermann" }, validate.ErrReservedCharacter},
		{func(c *model.Contact) { c.AdditionalInfo = "first\nsecond" }, validate.ErrReservedCharacter},
		{func(c *model.Contact) { c.Identifier = "a|b" }, validate.ErrReservedCharacter},
	}
	for _, tc := range cases {
		b := New()
		c := erika()
		tc.modify(&c)
		_, err := b.Add(c)
		assert.ErrorIs(t, err, tc.expected)
		assert.Equal(t, 0, b.Len())
	}
}

// TestEdit checks a partial update.
func TestEdit(t *testing.T) {
	b := New()
	_, err := b.Add(erika())
	require.NoError(t, err)

	updated, err := b.Edit("ERIKA", model.Changes{Phone: "555.987.6543", AdditionalInfo: "moved"})
	require.NoError(t, err)
	assert.Equal(t, "Erika", updated.Identifier)
	assert.Equal(t, "Erika Mustermann", updated.Name)
	assert.Equal(t, "555-987-6543", updated.Phone)
	assert.Equal(t, "erika@example.com", updated.Email)
	assert.Equal(t, "moved", updated.AdditionalInfo)

	found, _ := b.Find("erika")
	assert.Equal(t, updated, found)
}

// TestEditNothing checks that an edit without values leaves the contact identical.
func TestEditNothing(t *testing.T) {
	b := New()
	before, err := b.Add(erika())
	require.NoError(t, err)

	_, err = b.Edit("erika", model.Changes{})
	require.NoError(t, err)
	after, _ := b.Find("erika")
	assert.Equal(t, before, after)
}

// TestEditBlank checks that changes consisting only of whitespace keep the current values.
func TestEditBlank(t *testing.T) {
	b := New()
	before, err := b.Add(erika())
	require.NoError(t, err)

	blank := model.Changes{Name: "   ", Phone: " ", Email: "\t", AdditionalInfo: "  "}
	assert.True(t, blank.IsEmpty())
	updated, err := b.Edit("erika", blank)
	require.NoError(t, err)
	assert.Equal(t, before, updated)
	after, _ := b.Find("erika")
	assert.Equal(t, before, after)
}

// TestEditInvalid checks that rejected replacement values do not change anything, not even the
// fields that were valid.
func TestEditInvalid(t *testing.T) {
	b := New()
	before, err := b.Add(erika())
	require.NoError(t, err)

	_, err = b.Edit("erika", model.Changes{Name: "New Name", Phone: "123"})
	assert.ErrorIs(t, err, validate.ErrInvalidPhone)
	_, err = b.Edit("erika", model.Changes{Name: "New Name", Email: "nope"})
	assert.ErrorIs(t, err, validate.ErrInvalidEmail)
	_, err = b.Edit("erika", model.Changes{AdditionalInfo: "a|b"})
	assert.ErrorIs(t, err, validate.ErrReservedCharacter)

	after, _ := b.Find("erika")
	assert.Equal(t, before, after)
}

// TestEditNotFound checks that editing an absent contact fails.
func TestEditNotFound(t *testing.T) {
	b := New()
	_, err := b.Edit("nobody", model.Changes{Name: "Somebody"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, b.Len())
}

// TestDelete checks that exactly the requested contact is removed.
func TestDelete(t *testing.T) {
	b := New()
	for _, identifier := range []string{"aaron", "berta", "carla"} {
		c := erika()
		c.Identifier = identifier
		_, err := b.Add(c)
		require.NoError(t, err)
	}

	require.NoError(t, b.Delete("BERTA"))
	_, found := b.Find("berta")
	assert.False(t, found)

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Aaron", list[0].Identifier)
	assert.Equal(t, "Carla", list[1].Identifier)
}

// TestDeleteNotFound checks that deleting an absent contact fails and changes nothing.
func TestDeleteNotFound(t *testing.T) {
	b := New()
	_, err := b.Add(erika())
	require.NoError(t, err)
	before := b.List()

	assert.ErrorIs(t, b.Delete("nobody"), ErrNotFound)
	assert.Equal(t, before, b.List())
}

// TestListOrder checks that contacts are listed in insertion order and that replacing a contact
// keeps its position.
func TestListOrder(t *testing.T) {
	b := New()
	assert.Empty(t, b.List())

	for _, identifier := range []string{"zora", "adam", "mila"} {
		c := erika()
		c.Identifier = identifier
		_, err := b.Put(c)
		require.NoError(t, err)
	}
	replacement := erika()
	replacement.Identifier = "adam"
	replacement.Name = "Adam Replaced"
	_, err := b.Put(replacement)
	require.NoError(t, err)

	list := b.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Zora", "Adam", "Mila"},
		[]string{list[0].Identifier, list[1].Identifier, list[2].Identifier})
	assert.Equal(t, "Adam Replaced", list[1].Name)
}

// TestListReturnsCopies checks that callers cannot modify the stored contacts through List or
// Find.
func TestListReturnsCopies(t *testing.T) {
	b := New()
	_, err := b.Add(erika())
	require.NoError(t, err)

	list := b.List()
	list[0].Name = "Changed"
	found, _ := b.Find("erika")
	found.Email = "changed@example.com"

	stored, _ := b.Find("erika")
	assert.Equal(t, "Erika Mustermann", stored.Name)
	assert.Equal(t, "erika@example.com", stored.Email)
}

// TestPutValidates checks that Put applies the same rules as Add apart from the collision check.
func TestPutValidates(t *testing.T) {
	b := New()
	c := erika()
	c.Email = "invalid"
	_, err := b.Put(c)
	assert.ErrorIs(t, err, validate.ErrInvalidEmail)
	assert.Equal(t, 0, b.Len())

	c = erika()
	c.Name = "keep  as is"
	stored, err := b.Put(c)
	require.NoError(t, err)
	assert.Equal(t, "keep  as is", stored.Name)
}
