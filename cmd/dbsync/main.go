package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"gitlab.com/dirk.krummacker/contact-book/internal/book"
	"gitlab.com/dirk.krummacker/contact-book/internal/codec"
	"gitlab.com/dirk.krummacker/contact-book/internal/config"
	"gitlab.com/dirk.krummacker/contact-book/internal/database"
	"gitlab.com/dirk.krummacker/contact-book/internal/logger"
)

// CLI is the top-level command structure for dbsync.
type CLI struct {
	Config string  `help:"YAML configuration file." env:"CONTACTS_CONFIG" type:"path"`
	File   string  `help:"Contacts file, overrides the configuration." short:"f"`
	Push   PushCmd `cmd:"" help:"Copy the contacts file into the MySQL contacts table."`
	Pull   PullCmd `cmd:"" help:"Copy the MySQL contacts table into the contacts file."`
}

// env bundles what every command needs.
type env struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

// PushCmd replaces the table content with the contacts file.
type PushCmd struct{}

// Run executes the push command.
func (c *PushCmd) Run(e *env) error {
	b := book.New()
	report, err := codec.ImportFile(e.cfg.File, b)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	logSkipped(e.log, e.cfg.File, report)

	repository, err := openRepository(e.cfg.Database)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	defer repository.Close()
	if err := repository.Save(b); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	fmt.Fprintf(e.out, "Pushed %d contacts from %s.\n", b.Len(), e.cfg.File)
	return nil
}

// PullCmd merges the table content into the contacts file. Contacts of the file that are not in
// the table are kept.
type PullCmd struct {
	Replace bool `help:"Drop the contacts of the file that are not in the table."`
}

// Run executes the pull command.
func (c *PullCmd) Run(e *env) error {
	b := book.New()
	if !c.Replace {
		report, err := codec.ImportFile(e.cfg.File, b)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("pull: %w", err)
		}
		logSkipped(e.log, e.cfg.File, report)
	}

	repository, err := openRepository(e.cfg.Database)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	defer repository.Close()
	report, err := repository.Load(b)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	logSkipped(e.log, "contacts table", report)

	if err := codec.ExportFile(e.cfg.File, b); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	fmt.Fprintf(e.out, "Pulled %d contacts into %s.\n", report.Imported, e.cfg.File)
	return nil
}

func openRepository(cfg config.Database) (*database.Repository, error) {
	sqlDB, err := database.CreateDatabase(cfg)
	if err != nil {
		return nil, err
	}
	repository, err := database.NewRepository(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return repository, nil
}

func logSkipped(log *slog.Logger, source string, report codec.Report) {
	for _, skipped := range report.Skipped {
		log.Warn("skipped invalid contact", "source", source, "line", skipped.Line, "err", skipped.Reason)
	}
}

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go push --file=contacts.txt
func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dbsync"),
		kong.Description("Copy contacts between the contacts file and the MySQL mirror."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	cfg, err := config.Load(cli.Config, getenv)
	if err != nil {
		parser.Errorf("%s", err)
		return 1
	}
	if cli.File != "" {
		cfg.File = cli.File
	}
	log, closeLog := logger.New(cfg.Log, stderr)
	defer closeLog()

	if err := ctx.Run(&env{cfg: cfg, log: log, out: stdout}); err != nil {
		log.Error("command failed", "command", ctx.Command(), "err", err)
		parser.Errorf("%s", err)
		return 1
	}
	return 0
}
