package models

import (
	"bitbucket.org/sahelfocus/loadtrack_backend/config"
)

// MigrateTable runs AutoMigrate for every table this core owns.
// Gated by SKIP_MIGRATIONS in main: DDL can block tables, run it as a job in
// production.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Operator{},
		&ShippingProgram{},
		&ProductionLog{},
	)
	if err != nil {
		config.LogError(config.GetLogger(), "migrate.go", "MigrateTable", "AutoMigrate", nil, err)
	}
}
