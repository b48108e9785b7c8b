package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionLog is one loading event, append-only. TotalTonnage is computed at
// submit time and stored; it is never recomputed afterwards, so an edited bag
// weight cannot silently rewrite history. The log table, not the program
// ledger, is the source of truth for all reconciliation.
type ProductionLog struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Category      LogCategory     `gorm:"type:enum('EXPORT', 'LOCAL', 'DEBARDAGE');not null" json:"category" binding:"required"`
	Shift         WorkShift       `gorm:"type:enum('MORNING', 'AFTERNOON', 'NIGHT', 'EVENING');not null" json:"shift" binding:"required"`
	Platform      PlatformSection `gorm:"type:enum('BIG_BAG', '50KG');not null;index" json:"platform" binding:"required"`
	TruckCount    int             `gorm:"not null" json:"truck_count" binding:"required"`
	UnitsPerTruck int             `gorm:"not null" json:"units_per_truck"`
	WeightPerUnit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight_per_unit"`
	TotalTonnage  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_tonnage"`
	FileNumber    string          `gorm:"size:100;index" json:"file_number"`
	OperatorName  string          `gorm:"size:100" json:"operator_name"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductionLog struct {
	Category      LogCategory     `json:"category" binding:"required"`
	Shift         WorkShift       `json:"shift" binding:"required"`
	Platform      PlatformSection `json:"platform" binding:"required"`
	TruckCount    int             `json:"truck_count" binding:"required"`
	UnitsPerTruck int             `json:"units_per_truck"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	FileNumber    string          `json:"file_number"`
}

// computeTotalTonnage = trucks x units x weight, fixed at submit time.
func computeTotalTonnage(truckCount int, unitsPerTruck int, weightPerUnit decimal.Decimal) decimal.Decimal {
	return weightPerUnit.
		Mul(decimal.NewFromInt(int64(unitsPerTruck))).
		Mul(decimal.NewFromInt(int64(truckCount)))
}

// validate rejects before any write. Required logistics fields come from the
// rules matrix, never from per-call defaults.
func (input *NewProductionLog) validate(ctx context.Context) error {
	if !input.Category.IsValid() {
		return errors.New("invalid category")
	}
	if !input.Shift.IsValid() {
		return errors.New("invalid shift")
	}
	if !input.Platform.IsValid() {
		return errors.New("invalid platform")
	}
	if input.TruckCount <= 0 {
		return errors.New("truck count must be positive")
	}

	rule, err := RuleFor(input.Platform, input.Category)
	if err != nil {
		return err
	}
	if rule.RequiresFileNumber && strings.TrimSpace(input.FileNumber) == "" {
		return errors.New("file number is required for export logs")
	}
	if rule.RequiresLogistics {
		if input.UnitsPerTruck <= 0 {
			return errors.New("units per truck is required for export logs")
		}
		if !input.WeightPerUnit.IsPositive() {
			return errors.New("weight per unit is required for export logs")
		}
	}
	// non-export categories fall back to the platform's packaging figures
	if input.UnitsPerTruck == 0 {
		input.UnitsPerTruck = rule.UnitsPerTruck
	}
	if input.WeightPerUnit.IsZero() {
		input.WeightPerUnit = rule.WeightPerUnit
	}
	return nil
}

// CreateProductionLog persists a loading event and then fires the ledger
// decrement. The two mutations are deliberately NOT one transaction (see the
// partial-failure policy): a log whose dossier vanished between lookup and
// submit is still recorded, and the ledger miss is logged as a warning.
// The decrement is tied strictly to the insert of this new row, so a retried
// create produces a new log and can never double-apply against an old one.
func CreateProductionLog(ctx context.Context, input *NewProductionLog) (*ProductionLog, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	operatorName, _ := utils.GetOperatorNameFromContext(ctx)

	log := ProductionLog{
		Category:      input.Category,
		Shift:         input.Shift,
		Platform:      input.Platform,
		TruckCount:    input.TruckCount,
		UnitsPerTruck: input.UnitsPerTruck,
		WeightPerUnit: input.WeightPerUnit,
		TotalTonnage:  computeTotalTonnage(input.TruckCount, input.UnitsPerTruck, input.WeightPerUnit),
		FileNumber:    input.FileNumber,
		OperatorName:  operatorName,
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, err
	}

	// ledger is an auxiliary cache; failure here must not fail the insert
	if log.FileNumber != "" {
		if err := ApplyLogToLedger(ctx, nil, log.FileNumber, log.TruckCount); err != nil {
			config.LogWarn(config.GetLogger(), "productionLog.go", "CreateProductionLog", "ApplyLogToLedger", log.FileNumber, err)
		}
	}

	publishLogEvent(ctx, "created", &log)
	return &log, nil
}

// ledgerAdjustmentsForEdit returns, per file number, the truck-count delta the
// ledger must absorb when a log changes from old to new. Within one dossier
// only the difference is applied; re-running the same edit yields a zero map.
// When the file number itself moves, the old dossier gets its trucks back and
// the new one absorbs the full new count.
func ledgerAdjustmentsForEdit(oldLog, newLog *ProductionLog) map[string]int {
	adjustments := make(map[string]int)
	if oldLog.FileNumber == newLog.FileNumber {
		if delta := newLog.TruckCount - oldLog.TruckCount; delta != 0 && newLog.FileNumber != "" {
			adjustments[newLog.FileNumber] = delta
		}
		return adjustments
	}
	if oldLog.FileNumber != "" {
		adjustments[oldLog.FileNumber] = -oldLog.TruckCount
	}
	if newLog.FileNumber != "" {
		adjustments[newLog.FileNumber] = newLog.TruckCount
	}
	return adjustments
}

// UpdateProductionLog corrects an existing log. The row update and the ledger
// delta commit together: replaying the same edit recomputes a zero delta, so
// retries cannot double-count. Ledger misses (dossier gone) are warn-only,
// matching the create path.
func UpdateProductionLog(ctx context.Context, id int, input *NewProductionLog) (*ProductionLog, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var updated ProductionLog

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldLog ProductionLog
		if err := tx.First(&oldLog, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		updated = oldLog
		updated.Category = input.Category
		updated.Shift = input.Shift
		updated.Platform = input.Platform
		updated.TruckCount = input.TruckCount
		updated.UnitsPerTruck = input.UnitsPerTruck
		updated.WeightPerUnit = input.WeightPerUnit
		updated.TotalTonnage = computeTotalTonnage(input.TruckCount, input.UnitsPerTruck, input.WeightPerUnit)
		updated.FileNumber = input.FileNumber

		if err := tx.Model(&ProductionLog{}).Where("id = ?", id).Updates(map[string]interface{}{
			"Category":      updated.Category,
			"Shift":         updated.Shift,
			"Platform":      updated.Platform,
			"TruckCount":    updated.TruckCount,
			"UnitsPerTruck": updated.UnitsPerTruck,
			"WeightPerUnit": updated.WeightPerUnit,
			"TotalTonnage":  updated.TotalTonnage,
			"FileNumber":    updated.FileNumber,
		}).Error; err != nil {
			return err
		}

		for fileNumber, delta := range ledgerAdjustmentsForEdit(&oldLog, &updated) {
			if err := applyLedgerDelta(ctx, tx, fileNumber, delta); err != nil {
				var ledgerErr *utils.LedgerUpdateError
				if errors.As(err, &ledgerErr) {
					config.LogWarn(config.GetLogger(), "productionLog.go", "UpdateProductionLog", "applyLedgerDelta", fileNumber, err)
					continue
				}
				return err
			}
			if err := activateProgram(ctx, tx, fileNumber); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishLogEvent(ctx, "updated", &updated)
	return &updated, nil
}

type logEvent struct {
	Action     string `json:"action"`
	LogId      int    `json:"log_id"`
	FileNumber string `json:"file_number,omitempty"`
	Platform   string `json:"platform"`
}

// publishLogEvent feeds the optional realtime channel. Best-effort: consumers
// that miss events (or have no redis at all) recompute on demand instead.
func publishLogEvent(ctx context.Context, action string, log *ProductionLog) {
	event := logEvent{
		Action:     action,
		LogId:      log.ID,
		FileNumber: log.FileNumber,
		Platform:   string(log.Platform),
	}
	if err := config.PublishRedis(ctx, config.LogEventsChannel, &event); err != nil {
		config.LogWarn(config.GetLogger(), "productionLog.go", "publishLogEvent", "PublishRedis", event, err)
	}
}
