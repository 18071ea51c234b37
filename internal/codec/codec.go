// Package codec reads and writes the contacts file. Every contact is stored on one line with its
// fields separated by '|':
//
//	identifier|name|phone|email|additionalInfo
//
// There is no header line and no escaping. Field values containing the delimiter or a line break
// are rejected by the contact book, so the format is never ambiguous.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/model"
	"gitlab.com/dirk.krummacker/contact-book/internal/validate"
)

// Delimiter separates the fields of a line.
const Delimiter = "|"

// fieldCount is the number of fields on every line.
const fieldCount = 5

// maxLineLength is the longest line the decoder accepts. Every line written by Encode fits,
// because validate.Field limits the length of each field.
const maxLineLength = 1024 * 1024

var (
	// ErrIO is wrapped around every failure to open, read, write or close the contacts file.
	ErrIO = errors.New("contacts file i/o failed")

	// ErrFieldCount is the reason for lines that do not split into exactly five fields.
	ErrFieldCount = fmt.Errorf("line does not have exactly %d fields", fieldCount)

	// ErrNotText is the reason for lines that are not valid UTF-8.
	ErrNotText = errors.New("line is not valid UTF-8 text")

	// ErrLineTooLong is the reason for lines that exceed the length limit of the reader.
	ErrLineTooLong = errors.New("line is too long")
)

// ParseError describes a line of the contacts file that could not be imported.
type ParseError struct {
	Line   int
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// Report summarizes an import. Malformed lines do not abort the import; they are skipped and
// listed here.
type Report struct {
	Imported int
	Skipped  []*ParseError
}

// Encode writes the contacts in the file format. A contact with a field that contains the
// delimiter or a line break is rejected before anything is written for it.
func Encode(w io.Writer, contacts []model.Contact) error {
	for _, c := range contacts {
		fields := []string{c.Identifier, c.Name, c.Phone, c.Email, c.AdditionalInfo}
		for _, f := range fields {
			if err := validate.Field("contact "+c.Identifier, f); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, strings.Join(fields, Delimiter)+"\n"); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	return nil
}

// Export writes all contacts of the book in list order.
func Export(w io.Writer, b *book.Book) error {
	return Encode(w, b.List())
}

// ExportFile writes all contacts of the book to the file at path. The contacts are written to a
// temporary file next to it first, which then replaces the file. On error the previous file is
// left as it was.
func ExportFile(path string, b *book.Book) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	writer := bufio.NewWriter(tmp)
	if err = Export(writer, b); err != nil {
		return err
	}
	if err = writer.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Decode parses the contacts file format. Valid lines are validated and normalized like in
// book.Put and returned in file order; invalid lines are returned as parse errors. Empty lines
// are ignored. An error is only returned if reading fails.
func Decode(r io.Reader) ([]model.Contact, []*ParseError, error) {
	var contacts []model.Contact
	var skipped []*ParseError

	reader := bufio.NewReader(r)
	lineNumber := 0
	for {
		line, err := ReadLine(reader, maxLineLength)
		if errors.Is(err, io.EOF) {
			break
		}
		lineNumber++
		if errors.Is(err, ErrLineTooLong) {
			skipped = append(skipped, &ParseError{Line: lineNumber, Reason: err})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading line %d: %w", ErrIO, lineNumber, err)
		}
		if line == "" {
			continue
		}
		c, err := decodeLine(line)
		if err != nil {
			skipped = append(skipped, &ParseError{Line: lineNumber, Reason: err})
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, skipped, nil
}

// ReadLine reads the next line from r without its "\n" or "\r\n" terminator. A line longer than
// limit bytes is consumed and reported as ErrLineTooLong, so the next call continues with the
// following line. io.EOF is returned once no more input is left.
func ReadLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > limit+len("\r\n") {
				tooLong = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if err != nil && len(line) == 0 && !tooLong {
			return "", io.EOF
		}
		break
	}
	if tooLong {
		return "", ErrLineTooLong
	}
	text := strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
	if len(text) > limit {
		return "", ErrLineTooLong
	}
	return text, nil
}

func decodeLine(line string) (model.Contact, error) {
	if !utf8.ValidString(line) {
		return model.Contact{}, ErrNotText
	}
	fields := strings.Split(line, Delimiter)
	if len(fields) != fieldCount {
		return model.Contact{}, ErrFieldCount
	}
	return book.Canonical(model.Contact{
		Identifier:     fields[0],
		Name:           fields[1],
		Phone:          fields[2],
		Email:          fields[3],
		AdditionalInfo: fields[4],
	})
}

// Import reads contacts from r and stores them in the book, replacing contacts with the same
// identifier. The book is only changed after the whole input was read successfully.
func Import(r io.Reader, b *book.Book) (Report, error) {
	contacts, skipped, err := Decode(r)
	if err != nil {
		return Report{}, err
	}
	report := Report{Skipped: skipped}
	for _, c := range contacts {
		if _, err := b.Put(c); err != nil {
			return report, err
		}
		report.Imported++
	}
	return report, nil
}

// ImportFile imports the contacts from the file at path.
func ImportFile(path string, b *book.Book) (Report, error) {
	file, err := os.Open(path) // nosemgrep
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()
	return Import(file, b)
}
