package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/codec"
	"gitlab.com/dirk.krummacker/contact-book/internal/config"
	"gitlab.com/dirk.krummacker/contact-book/internal/logger"
	"gitlab.com/dirk.krummacker/contact-book/internal/service"
)

// Usage example on the command line:
// > PORT=8080 CONTACTS_FILE=contacts.txt GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	os.Exit(run(os.Getenv, os.Stdout, os.Stderr))
}

func run(getenv func(string) string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(getenv("CONTACTS_CONFIG"), getenv)
	if err != nil {
		fmt.Fprintln(stderr, "could not load configuration:", err)
		return 1
	}
	log, closeLog := logger.New(cfg.Log, stderr)
	defer closeLog()

	// The book starts with the content of the contacts file, if there is one.
	b := book.New()
	report, err := codec.ImportFile(cfg.File, b)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("starting with an empty contact book", "file", cfg.File)
	case err != nil:
		log.Error("could not read contacts file", "file", cfg.File, "err", err)
		return 1
	default:
		for _, skipped := range report.Skipped {
			log.Warn("skipped malformed line", "file", cfg.File, "line", skipped.Line, "err", skipped.Reason)
		}
		log.Info("contacts loaded", "file", cfg.File, "count", report.Imported)
	}

	if !cfg.Service.GinLogging {
		fmt.Fprintln(stdout, "Turning off HTTP request logging.")
	}
	router := service.New(b, cfg.File, log).SetupHttpRouter(cfg.Service.GinLogging)
	if gin.Mode() != gin.ReleaseMode {
		log.Info("set GIN_MODE=release in production")
	}
	if err := router.Run(":" + cfg.Service.Port); err != nil {
		log.Error("server stopped", "err", err)
		return 1
	}
	return 0
}
