package model

import "strings"

// Contact is the data structure for a person that we know. The Identifier is the key under which
// the contact is stored in the contact book; all other fields are free text, with the exception
// of Phone and Email which follow the formats enforced by the validate package.
type Contact struct {
	Identifier     string `json:"identifier"     db:"identifier"`
	Name           string `json:"name"           db:"name"`
	Phone          string `json:"phone"          db:"phone"`
	Email          string `json:"email"          db:"email"`
	AdditionalInfo string `json:"additionalinfo" db:"additional_info"`
}

// Changes holds the values of a partial update. Empty fields leave the stored value untouched.
type Changes struct {
	Name           string
	Phone          string
	Email          string
	AdditionalInfo string
}

// IsEmpty returns true if the changes would not modify any field. Values consisting only of
// whitespace count as empty.
func (c Changes) IsEmpty() bool {
	for _, value := range []string{c.Name, c.Phone, c.Email, c.AdditionalInfo} {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
