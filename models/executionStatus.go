package models

import (
	"context"
	"sort"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ClassifyExecution derives the execution status from planned vs actual
// tonnage. Progress is rounded and clamped at 100 for display, but the
// overbooking test uses the raw comparison: OVERBOOKED wins over the
// COMPLETED band whenever actual exceeds planned.
//
// The 98-point completion band is load-bearing business logic, not cosmetics:
// real-world loads round to slightly under plan, so exact 100% is rarely hit.
func ClassifyExecution(planned, actual decimal.Decimal) (ExecutionStatus, int) {
	if actual.IsZero() {
		return ExecutionStatusPending, 0
	}
	if actual.GreaterThan(planned) {
		return ExecutionStatusOverbooked, 100
	}

	// planned >= actual > 0 here, so planned is positive
	ratio := actual.Div(planned).Mul(oneHundred)
	progress := int(ratio.Round(0).IntPart())
	if progress > 100 {
		progress = 100
	}

	if progress >= 98 {
		return ExecutionStatusCompleted, progress
	}
	return ExecutionStatusInProgress, progress
}

// DerivedExecutionStatus joins a dossier to its log aggregates. Actuals are
// summed from the raw logs on every read; the planned_count ledger is shown
// alongside but never used to derive them.
type DerivedExecutionStatus struct {
	FileNumber      string          `json:"file_number"`
	Destination     string          `json:"destination"`
	PlatformSection PlatformSection `json:"platform_section"`
	PlannedQuantity decimal.Decimal `json:"planned_quantity"`
	ActualQty       decimal.Decimal `json:"actual_qty"`
	ActualTrucks    int             `json:"actual_trucks"`
	RemainingCount  int             `json:"remaining_count"`
	ProgressPercent int             `json:"progress_percent"`
	Status          ExecutionStatus `json:"status"`
}

// GetExecutionStatuses builds the monitoring view, ordered most-attention-needed
// first (OVERBOOKED > IN_PROGRESS > PENDING > COMPLETED).
func GetExecutionStatuses(ctx context.Context) ([]*DerivedExecutionStatus, error) {
	db := config.GetDB()

	var rows []*DerivedExecutionStatus
	query := `
	SELECT
		p.file_number,
		p.destination,
		p.platform_section,
		p.planned_quantity,
		p.planned_count AS remaining_count,
		COALESCE(SUM(l.total_tonnage), 0) AS actual_qty,
		COALESCE(SUM(l.truck_count), 0) AS actual_trucks
	FROM
		shipping_programs p
		LEFT JOIN production_logs l ON BINARY l.file_number = BINARY p.file_number
	GROUP BY
		p.id
`
	if err := db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		row.Status, row.ProgressPercent = ClassifyExecution(row.PlannedQuantity, row.ActualQty)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Status.Priority() != rows[j].Status.Priority() {
			return rows[i].Status.Priority() < rows[j].Status.Priority()
		}
		return rows[i].FileNumber < rows[j].FileNumber
	})
	return rows, nil
}
