package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
)

// CriticalStockThreshold marks a dossier as low-stock when fewer units remain.
const CriticalStockThreshold = 5

// StockProjection is the client-side estimate of remaining units after a
// not-yet-submitted entry. It is computed from a snapshot read and can be
// stale the moment another operator submits against the same dossier; the
// authoritative decrement happens server-side per insert, so a stale
// projection is allowed to proceed and the OVERBOOKED classification surfaces
// the conflict afterwards. Do not try to make this value "consistent" with
// the ledger; overbooking is tolerated by design.
type StockProjection struct {
	FileNumber        string    `json:"file_number"`
	Remaining         int       `json:"remaining"`
	PendingTruckCount int       `json:"pending_truck_count"`
	Projected         int       `json:"projected"`
	LowStock          bool      `json:"low_stock"`
	Overbooking       bool      `json:"overbooking"`
	SnapshotAt        time.Time `json:"snapshot_at"`
}

// ProjectRemaining computes the pre-submission projection. Negative results
// are expected output (overbooking warning), never an error.
func ProjectRemaining(fileNumber string, stock int, pendingTruckCount int) StockProjection {
	projected := stock - pendingTruckCount
	return StockProjection{
		FileNumber:        fileNumber,
		Remaining:         stock,
		PendingTruckCount: pendingTruckCount,
		Projected:         projected,
		LowStock:          stock > 0 && stock < CriticalStockThreshold,
		Overbooking:       projected < 0,
		SnapshotAt:        time.Now().UTC(),
	}
}

// canAccessSection: admins see everything, everyone else only their assigned
// platform (BOTH covers both sections).
func canAccessSection(role OperatorRole, assignment PlatformAssignment, section PlatformSection) bool {
	if role == OperatorRoleAdmin {
		return true
	}
	return assignment.Covers(section)
}

// resolveScopedMiss decides what a scoped lookup miss means. A dossier that
// exists outside the caller's platform scope must surface as AccessDenied
// naming the owning platform, so the operator knows which desk to call;
// collapsing it into not-found would hide the misrouting.
func resolveScopedMiss(caller *Operator, unscopedMatch *ShippingProgram) error {
	if unscopedMatch == nil {
		return utils.ErrorRecordNotFound
	}
	if !canAccessSection(caller.Role, caller.PlatformAssignment, unscopedMatch.PlatformSection) {
		return &utils.AccessDeniedError{
			FileNumber:     unscopedMatch.FileNumber,
			OwningPlatform: string(unscopedMatch.PlatformSection),
		}
	}
	return utils.ErrorRecordNotFound
}

// LookupDossiers searches file numbers with a case-insensitive partial match,
// scoped to the caller's platform for non-admins.
func LookupDossiers(ctx context.Context, searchTerm string) ([]*ShippingProgram, error) {

	caller, err := OperatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.TrimSpace(searchTerm)
	if term == "" {
		return nil, errors.New("search term is required")
	}
	pattern := "%" + term + "%"

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&ShippingProgram{}).
		Where("LOWER(file_number) LIKE LOWER(?)", pattern)
	if caller.Role != OperatorRoleAdmin && caller.PlatformAssignment != PlatformAssignmentBoth {
		dbCtx = dbCtx.Where("platform_section = ?", caller.PlatformAssignment)
	}

	var programs []*ShippingProgram
	if err := dbCtx.Order("file_number ASC").Limit(config.SearchLimit).Find(&programs).Error; err != nil {
		return nil, err
	}
	if len(programs) > 0 {
		return programs, nil
	}

	// scoped miss: check the unfiltered scope to distinguish not-found from
	// cross-platform access
	var unscoped ShippingProgram
	err = db.WithContext(ctx).Model(&ShippingProgram{}).
		Where("LOWER(file_number) LIKE LOWER(?)", pattern).
		Order("file_number ASC").
		Take(&unscoped).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return nil, resolveScopedMiss(caller, &unscoped)
}

// GetStockProjection resolves one dossier and projects remaining stock after a
// pending (unsubmitted) truck count. The snapshot read here is the documented
// staleness window; see StockProjection.
func GetStockProjection(ctx context.Context, fileNumber string, pendingTruckCount int) (*StockProjection, error) {

	caller, err := OperatorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if pendingTruckCount < 0 {
		return nil, errors.New("pending truck count cannot be negative")
	}

	program, err := GetShippingProgramByFileNumber(ctx, fileNumber)
	if err != nil {
		return nil, err
	}
	if !canAccessSection(caller.Role, caller.PlatformAssignment, program.PlatformSection) {
		return nil, &utils.AccessDeniedError{
			FileNumber:     program.FileNumber,
			OwningPlatform: string(program.PlatformSection),
		}
	}

	projection := ProjectRemaining(program.FileNumber, program.PlannedCount, pendingTruckCount)
	return &projection, nil
}
