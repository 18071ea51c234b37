package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/config"
	"gitlab.com/dirk.krummacker/contact-book/internal/logger"
	"gitlab.com/dirk.krummacker/contact-book/internal/shell"
)

// Usage example on the command line:
// > go run main.go
// > CONTACTS_FILE=/tmp/contacts.txt CONTACTS_LOG_LEVEL=debug go run main.go
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Getenv("CONTACTS_CONFIG"), os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, closeLog := logger.New(cfg.Log, os.Stderr)
	defer closeLog()

	fd := os.Stdin.Fd()
	interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	log.Debug("starting contact book", "file", cfg.File, "interactive", interactive)

	sh := shell.New(book.New(), shell.Options{
		File:        cfg.File,
		In:          os.Stdin,
		Out:         os.Stdout,
		Logger:      log,
		Interactive: interactive,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err := sh.Run(); err != nil {
		log.Error("contact book stopped", "err", err)
		return 1
	}
	return 0
}
