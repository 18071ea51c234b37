package model

// Contact is the JSON representation of a contact as exchanged with the contacts REST API.
// Identifier, phone and email are mandatory when creating a contact.
type Contact struct {
	Identifier     string `json:"identifier"               binding:"required"`
	Name           string `json:"name"`
	Phone          string `json:"phone"                    binding:"required"`
	Email          string `json:"email"                    binding:"required"`
	AdditionalInfo string `json:"additionalinfo,omitempty"`
}

// ContactUpdate is the body of an update request. All fields are optional; only the fields that
// are present and non-empty are changed.
type ContactUpdate struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	AdditionalInfo *string `json:"additionalinfo,omitempty"`
}
