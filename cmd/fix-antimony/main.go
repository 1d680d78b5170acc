// fix-antimony fills missing antimony percentages on historical refining
// batches from the RML purchase that minted the referenced SKU. Idempotent;
// runs in dry-run mode unless -dry-run=false is passed.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/fix-antimony -dry-run=false
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "Report what would change without writing")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	logger := logrus.New()

	changed, err := workflow.BackfillAntimony(db, logger, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "antimony backfill failed: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("dry run: %d refining batches would be updated (rerun with -dry-run=false to apply)\n", changed)
		return
	}
	fmt.Printf("antimony backfill complete: %d refining batches updated\n", changed)
}
