// ledger-rebuild re-derives every dossier's remaining count (planned_count)
// from the production log sums. The ledger is an incrementally-maintained
// cache; this job is the offline answer to manual plan edits or suspected
// drift. Runs are serialized with a redis lock so two operators cannot rebuild
// concurrently.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/ledger-rebuild
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/models"
	"github.com/bsm/redislock"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	// Serialize rebuilds. Without redis the lock is skipped; the per-dossier
	// transaction in ReconcileLedger still keeps each row consistent.
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:ledger-rebuild", 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			fmt.Fprintln(os.Stderr, "another ledger rebuild is already running")
			os.Exit(2)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "failed to obtain rebuild lock: %v\n", err)
			os.Exit(1)
		} else {
			defer lock.Release(ctx)
		}
	}

	var fileNumbers []string
	if err := db.WithContext(ctx).Model(&models.ShippingProgram{}).
		Order("file_number ASC").
		Pluck("file_number", &fileNumbers).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list dossiers: %v\n", err)
		os.Exit(1)
	}

	var drifted int
	for _, fileNumber := range fileNumbers {
		report, err := models.ReconcileLedger(ctx, fileNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reconcile %s: %v\n", fileNumber, err)
			continue
		}
		if report.PreviousCount != report.ReconciledCount {
			drifted++
			fmt.Printf("%s: %d -> %d (initial=%d logged=%d)\n",
				report.FileNumber, report.PreviousCount, report.ReconciledCount,
				report.InitialCount, report.LoggedTrucks)
		}
	}

	fmt.Printf("reconciled %d dossiers, %d had drifted\n", len(fileNumbers), drifted)
}
