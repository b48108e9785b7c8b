// seed-admin creates or updates the admin console operator (username: loadtrackAdmin).
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/models"
)

const (
	adminUsername = "loadtrackAdmin"
	adminName     = "Loadtrack Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	operator, err := models.UpsertOperator(ctx, &models.NewOperator{
		Username:           adminUsername,
		Name:               adminName,
		Role:               models.OperatorRoleAdmin,
		PlatformAssignment: models.PlatformAssignmentBoth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin operator: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin operator ready: id=%d username=%s\n", operator.ID, operator.Username)
}
