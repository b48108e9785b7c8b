package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// ShippingProgram is one export dossier. FileNumber is the human-assigned
// correlation key; production logs reference it as a loose string key, not a
// foreign key.
//
// PlannedCount is the remaining-unit ledger: it starts at the contractual truck
// count (kept immutable in InitialCount) and is decremented once per accepted
// log. It is a derived-but-stored cache over the log table, maintained
// incrementally and never recomputed on read. Negative values are valid and
// mean overbooking.
type ShippingProgram struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	FileNumber          string          `gorm:"size:100;not null;unique" json:"file_number" binding:"required"`
	Destination         string          `gorm:"size:255" json:"destination"`
	ShippingLine        string          `gorm:"size:255" json:"shipping_line"`
	PlatformSection     PlatformSection `gorm:"type:enum('BIG_BAG', '50KG');not null" json:"platform_section" binding:"required"`
	PlannedQuantity     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"planned_quantity"`
	InitialCount        int             `gorm:"not null;default:0" json:"initial_count"`
	PlannedCount        int             `gorm:"not null;default:0" json:"planned_count"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	Status              ProgramStatus   `gorm:"type:enum('PENDING', 'IN_PROGRESS', 'COMPLETED');default:PENDING" json:"status"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShippingProgram struct {
	FileNumber          string          `json:"file_number" binding:"required"`
	Destination         string          `json:"destination"`
	ShippingLine        string          `json:"shipping_line"`
	PlatformSection     PlatformSection `json:"platform_section" binding:"required"`
	PlannedQuantity     decimal.Decimal `json:"planned_quantity"`
	PlannedCount        int             `json:"planned_count" binding:"required"`
	SpecialInstructions string          `json:"special_instructions"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewShippingProgram) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.FileNumber) == "" {
		return errors.New("file number is required")
	}
	if !input.PlatformSection.IsValid() {
		return errors.New("invalid platform section")
	}
	if input.PlannedCount <= 0 {
		return errors.New("planned count must be positive")
	}
	if input.PlannedQuantity.IsNegative() {
		return errors.New("planned quantity cannot be negative")
	}
	if err := utils.ValidateUnique[ShippingProgram](ctx, "file_number", input.FileNumber, id); err != nil {
		return err
	}
	return nil
}

// CreateShippingProgram imports a dossier. Programs are never deleted:
// completed ones stay queryable for audit.
func CreateShippingProgram(ctx context.Context, input *NewShippingProgram) (*ShippingProgram, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	program := ShippingProgram{
		FileNumber:          input.FileNumber,
		Destination:         input.Destination,
		ShippingLine:        input.ShippingLine,
		PlatformSection:     input.PlatformSection,
		PlannedQuantity:     input.PlannedQuantity,
		InitialCount:        input.PlannedCount,
		PlannedCount:        input.PlannedCount,
		SpecialInstructions: input.SpecialInstructions,
		Status:              ProgramStatusPending,
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&program).Error
	if err != nil {
		// ValidateUnique races with concurrent imports; the unique index is
		// the source of truth.
		if isDuplicateKeyErr(err) {
			return nil, errors.New("duplicate file_number")
		}
		return nil, err
	}
	return &program, nil
}

// GetShippingProgramByFileNumber matches case-sensitively: ledger correlation
// uses the exact key, only search/lookup is case-insensitive.
func GetShippingProgramByFileNumber(ctx context.Context, fileNumber string) (*ShippingProgram, error) {
	db := config.GetDB()
	var program ShippingProgram
	err := db.WithContext(ctx).Where("BINARY file_number = ?", fileNumber).Take(&program).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &program, nil
}

/* Ledger operations */

// applyLedgerDelta subtracts delta from the remaining count in ONE server-side
// statement. Read-modify-write round-trips are forbidden here: concurrent
// submissions against the same dossier would lose updates. RowsAffected == 0
// means the dossier is gone; that is reported, not fatal.
func applyLedgerDelta(ctx context.Context, tx *gorm.DB, fileNumber string, delta int) error {
	if tx == nil {
		tx = config.GetDB()
	}
	result := tx.WithContext(ctx).Model(&ShippingProgram{}).
		Where("BINARY file_number = ?", fileNumber).
		UpdateColumn("planned_count", gorm.Expr("planned_count - ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &utils.LedgerUpdateError{FileNumber: fileNumber, Reason: "dossier not found"}
	}
	return nil
}

// activateProgram flips PENDING to IN_PROGRESS. The WHERE guard makes it
// idempotent under concurrent first submissions.
func activateProgram(ctx context.Context, tx *gorm.DB, fileNumber string) error {
	if tx == nil {
		tx = config.GetDB()
	}
	return tx.WithContext(ctx).Model(&ShippingProgram{}).
		Where("BINARY file_number = ? AND status = ?", fileNumber, ProgramStatusPending).
		UpdateColumn("status", ProgramStatusInProgress).Error
}

// ApplyLogToLedger fires once per accepted production log carrying a file
// number: decrement remaining count by the truck count and auto-activate the
// dossier. The caller treats failure as a warning; the log insert always wins.
func ApplyLogToLedger(ctx context.Context, tx *gorm.DB, fileNumber string, truckCount int) error {
	if err := applyLedgerDelta(ctx, tx, fileNumber, truckCount); err != nil {
		return err
	}
	return activateProgram(ctx, tx, fileNumber)
}

// LedgerReconciliation reports one dossier's re-derivation.
type LedgerReconciliation struct {
	FileNumber      string `json:"file_number"`
	InitialCount    int    `json:"initial_count"`
	LoggedTrucks    int    `json:"logged_trucks"`
	PreviousCount   int    `json:"previous_count"`
	ReconciledCount int    `json:"reconciled_count"`
}

// ReconcileLedger recomputes planned_count as initial_count - sum(truck_count)
// from the log table. The hot path stays purely incremental; this runs only as
// an explicit admin action (after manual plan edits) or from the batch rebuild
// job. Raw log sums are the source of truth, the ledger is the cache.
func ReconcileLedger(ctx context.Context, fileNumber string) (*LedgerReconciliation, error) {
	db := config.GetDB()
	var report LedgerReconciliation

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program ShippingProgram
		if err := tx.Where("BINARY file_number = ?", fileNumber).Take(&program).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		var loggedTrucks int
		if err := tx.Model(&ProductionLog{}).
			Where("BINARY file_number = ?", fileNumber).
			Select("COALESCE(SUM(truck_count), 0)").
			Scan(&loggedTrucks).Error; err != nil {
			return err
		}

		reconciled := program.InitialCount - loggedTrucks
		if err := tx.Model(&ShippingProgram{}).
			Where("id = ?", program.ID).
			UpdateColumn("planned_count", reconciled).Error; err != nil {
			return err
		}

		report = LedgerReconciliation{
			FileNumber:      program.FileNumber,
			InitialCount:    program.InitialCount,
			LoggedTrucks:    loggedTrucks,
			PreviousCount:   program.PlannedCount,
			ReconciledCount: reconciled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
