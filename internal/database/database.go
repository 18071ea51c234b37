// Package database mirrors the contact book into a MySQL table. The flat contacts file stays the
// primary storage; the table is filled and read on explicit request only.
package database

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/codec"
	"gitlab.com/dirk.krummacker/contact-book/internal/config"
	"gitlab.com/dirk.krummacker/contact-book/internal/model"
)

// row is a contact together with its position in the book.
type row struct {
	Position int `db:"position"`
	model.Contact
}

// insertContact stores one row. The named parameters are bound from a row.
const insertContact = `
	INSERT INTO contacts (position, identifier, name, phone, email, additional_info)
	VALUES (:position, :identifier, :name, :phone, :email, :additional_info)
`

// DSN returns the MySQL data source name for the connection parameters.
func DSN(cfg config.Database) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Host
	c.DBName = cfg.Name
	return c.FormatDSN()
}

// CreateDatabase returns a database handle for the connection parameters. No connection is made
// before the handle is used.
func CreateDatabase(cfg config.Database) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	return sqlDB, nil
}

// Repository reads and writes the contacts table.
type Repository struct {
	db *sqlx.DB

	// selectAll is a prepared statement for reading all contacts in book order.
	selectAll *sqlx.Stmt
}

// NewRepository wraps the sql database in sqlx and prepares all statements. The database argument
// can be a real database for production use or a mock database within unit tests.
func NewRepository(sqlDB *sql.DB) (*Repository, error) {
	db := sqlx.NewDb(sqlDB, "mysql")
	selectAll, err := db.Preparex(`
		SELECT identifier, name, phone, email, additional_info FROM contacts ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("database: prepare: %w", err)
	}
	return &Repository{db: db, selectAll: selectAll}, nil
}

// Close releases the prepared statements and the database handle.
func (r *Repository) Close() error {
	r.selectAll.Close()
	return r.db.Close()
}

// Save replaces the content of the contacts table with the contacts of the book. Either all
// contacts are written or the table is left unchanged.
func (r *Repository) Save(b *book.Book) (err error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("database: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM contacts`); err != nil {
		return fmt.Errorf("database: clear contacts: %w", err)
	}
	for i, c := range b.List() {
		if _, err = tx.NamedExec(insertContact, row{Position: i, Contact: c}); err != nil {
			return fmt.Errorf("database: insert %s: %w", c.Identifier, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Load reads all contacts from the table into the book with the same semantics as an import of
// the contacts file: existing contacts are replaced and invalid rows are skipped. The Line of a
// skipped row is its 1-based position in the result set. The book is only changed if all rows
// could be read.
func (r *Repository) Load(b *book.Book) (codec.Report, error) {
	var rows []model.Contact
	if err := r.selectAll.Select(&rows); err != nil {
		return codec.Report{}, fmt.Errorf("database: select contacts: %w", err)
	}

	var report codec.Report
	valid := make([]model.Contact, 0, len(rows))
	for i, c := range rows {
		canonical, err := book.Canonical(c)
		if err != nil {
			report.Skipped = append(report.Skipped, &codec.ParseError{Line: i + 1, Reason: err})
			continue
		}
		valid = append(valid, canonical)
	}
	for _, c := range valid {
		if _, err := b.Put(c); err != nil {
			return report, err
		}
		report.Imported++
	}
	return report, nil
}

// ExecScript executes the SQL statements read from r. Statements may span several lines and end
// with a line that contains ';'. The number of executed statements is returned.
func ExecScript(db *sqlx.DB, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statement := builder.String()
			if _, err := db.Exec(statement); err != nil {
				return executed, fmt.Errorf("database: executing %q: %w", strings.TrimSpace(statement), err)
			}
			executed++
			builder = strings.Builder{}
		}
	}
	if err := scanner.Err(); err != nil {
		return executed, fmt.Errorf("database: reading script: %w", err)
	}
	return executed, nil
}
