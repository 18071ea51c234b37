package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/codec"
	"gitlab.com/dirk.krummacker/contact-book/internal/model"
	"gitlab.com/dirk.krummacker/contact-book/internal/validate"
	api "gitlab.com/dirk.krummacker/contact-book/pkg/model"
)

// Service exposes one contact book over a REST API. Requests are handled one at a time, so the
// book never sees concurrent access.
type Service struct {
	mu   sync.Mutex
	book *book.Book
	file string
	log  *slog.Logger
}

// New returns a service for the book. The file is used by the export and import endpoints.
func New(b *book.Book, file string, logger *slog.Logger) *Service {
	return &Service{book: b, file: file, log: logger}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. If logging is false,
// HTTP requests are not logged.
func (s *Service) SetupHttpRouter(logging bool) *gin.Engine {
	var router *gin.Engine
	if logging {
		router = gin.Default()
	} else {
		router = gin.New()
		router.Use(gin.Recovery())
	}
	router.Use(s.serialize)
	router.GET("/contacts", s.findContacts)
	router.POST("/contacts", s.createContact)
	router.POST("/contacts/export", s.exportContacts)
	router.POST("/contacts/import", s.importContacts)
	router.GET("/contacts/:id", s.findContactByID)
	router.PUT("/contacts/:id", s.updateContactByID)
	router.DELETE("/contacts/:id", s.deleteContactByID)
	return router
}

// serialize lets only one request at a time work on the book.
func (s *Service) serialize(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Next()
}

// findContacts responds with the list of all contacts as JSON, in the order in which they were
// added.
//
// REST API call:
//
//	> curl "http://localhost:8080/contacts"
func (s *Service) findContacts(c *gin.Context) {
	if s.book.Len() == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "no contacts found"})
		return
	}
	contacts := s.book.List()
	body := make([]api.Contact, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, toAPI(contact))
	}
	c.IndentedJSON(http.StatusOK, body)
}

// createContact adds the contact specified in the request's JSON to the book. It responds with the
// contact as stored, i.e. with normalized identifier and phone number.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"identifier": "erika", "name": "Erika Mustermann", "phone": "555 123 4567", "email": "erika@example.com"}'
func (s *Service) createContact(c *gin.Context) {
	var newContact api.Contact
	if err := c.ShouldBindJSON(&newContact); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	added, err := s.book.Add(model.Contact{
		Identifier:     newContact.Identifier,
		Name:           newContact.Name,
		Phone:          newContact.Phone,
		Email:          newContact.Email,
		AdditionalInfo: newContact.AdditionalInfo,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.log.Debug("contact added", "identifier", added.Identifier)
	c.IndentedJSON(http.StatusCreated, toAPI(added))
}

// findContactByID locates the contact whose identifier matches the id parameter of the request
// URL, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika
func (s *Service) findContactByID(c *gin.Context) {
	contact, found := s.book.Find(c.Param("id"))
	if !found {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, toAPI(contact))
}

// updateContactByID updates the contact whose identifier matches the id parameter of the request
// URL with the non-empty values specified in the JSON (and only those), and finally responds with
// the new version of the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "555 987 6543"}'
func (s *Service) updateContactByID(c *gin.Context) {
	var submitted api.ContactUpdate
	if errBind := c.ShouldBindJSON(&submitted); errBind != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	changes := model.Changes{
		Name:           deref(submitted.Name),
		Phone:          deref(submitted.Phone),
		Email:          deref(submitted.Email),
		AdditionalInfo: deref(submitted.AdditionalInfo),
	}

	// It only makes sense to continue if we have at least one value to update.
	if changes.IsEmpty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}

	updated, err := s.book.Edit(c.Param("id"), changes)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.log.Debug("contact updated", "identifier", updated.Identifier)
	c.IndentedJSON(http.StatusOK, toAPI(updated))
}

// deleteContactByID deletes the contact whose identifier matches the id parameter of the request
// URL from the book.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika --request "DELETE"
func (s *Service) deleteContactByID(c *gin.Context) {
	if err := s.book.Delete(c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// exportContacts writes all contacts to the contacts file.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/export --request "POST"
func (s *Service) exportContacts(c *gin.Context) {
	if err := codec.ExportFile(s.file, s.book); err != nil {
		s.log.Error("export failed", "file", s.file, "err", err)
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("contacts exported to %s", s.file),
		"count":   s.book.Len(),
	})
}

// importContacts reads the contacts file into the book. Malformed lines are skipped and listed in
// the response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/import --request "POST"
func (s *Service) importContacts(c *gin.Context) {
	report, err := codec.ImportFile(s.file, s.book)
	if err != nil {
		s.log.Error("import failed", "file", s.file, "err", err)
		s.abortWithError(c, err)
		return
	}
	skipped := make([]string, 0, len(report.Skipped))
	for _, parseErr := range report.Skipped {
		s.log.Warn("skipped malformed line", "file", s.file, "line", parseErr.Line, "err", parseErr.Reason)
		skipped = append(skipped, parseErr.Error())
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("contacts imported from %s", s.file),
		"imported": report.Imported,
		"skipped":  skipped,
	})
}

// abortWithError maps an error of the contact book or the codec to the matching HTTP status code.
func (s *Service) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, book.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, book.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, book.ErrInvalidIdentifier),
		errors.Is(err, validate.ErrInvalidPhone),
		errors.Is(err, validate.ErrInvalidEmail),
		errors.Is(err, validate.ErrReservedCharacter):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"message": err.Error()})
}

func toAPI(c model.Contact) api.Contact {
	return api.Contact{
		Identifier:     c.Identifier,
		Name:           c.Name,
		Phone:          c.Phone,
		Email:          c.Email,
		AdditionalInfo: c.AdditionalInfo,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
