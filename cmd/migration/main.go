package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/contact-book/internal/config"
	"gitlab.com/dirk.krummacker/contact-book/internal/database"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONTACTS_CONFIG"), os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := database.CreateDatabase(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatal(err)
	}
	defer readFile.Close()

	executed, err := database.ExecScript(db, readFile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Executed %d statements from %s.\n", executed, *filePtr)
}
