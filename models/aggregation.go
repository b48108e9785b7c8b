package models

import (
	"context"
	"sort"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"github.com/shopspring/decimal"
)

// Rollups hold no state of their own: unlike the program ledger they are
// recomputed from the production_logs table on every request, so they can
// never drift. Bucketing always goes through the industrial day calendar.

type DailyRollup struct {
	ProductionDate   string          `json:"production_date"`
	Platform         PlatformSection `json:"platform"`
	Category         LogCategory     `json:"category"`
	MorningTonnage   decimal.Decimal `json:"morning_tonnage"`
	AfternoonTonnage decimal.Decimal `json:"afternoon_tonnage"`
	NightTonnage     decimal.Decimal `json:"night_tonnage"`
	TotalTonnage     decimal.Decimal `json:"total_tonnage"`
	TruckCount       int             `json:"truck_count"`
	OperatorCount    int             `json:"operator_count"`
}

type MonthlyRollup struct {
	ProductionMonth  string          `json:"production_month"`
	Platform         PlatformSection `json:"platform"`
	Category         LogCategory     `json:"category"`
	MorningTonnage   decimal.Decimal `json:"morning_tonnage"`
	AfternoonTonnage decimal.Decimal `json:"afternoon_tonnage"`
	NightTonnage     decimal.Decimal `json:"night_tonnage"`
	TotalTonnage     decimal.Decimal `json:"total_tonnage"`
	TruckCount       int             `json:"truck_count"`
	OperatorCount    int             `json:"operator_count"`
}

type rollupKey struct {
	Bucket   string
	Platform PlatformSection
	Category LogCategory
}

type rollupAccumulator struct {
	shiftTonnage map[WorkShift]decimal.Decimal
	totalTonnage decimal.Decimal
	truckCount   int
	operators    map[string]struct{}
}

// accumulate groups logs by (bucket, platform, category). bucketOf decides the
// grain (production date or month); EVENING folds into AFTERNOON here, at
// aggregation time only.
func accumulate(logs []*ProductionLog, bucketOf func(time.Time) string) map[rollupKey]*rollupAccumulator {
	groups := make(map[rollupKey]*rollupAccumulator)
	for _, log := range logs {
		key := rollupKey{
			Bucket:   bucketOf(log.CreatedAt),
			Platform: log.Platform,
			Category: log.Category,
		}
		acc := groups[key]
		if acc == nil {
			acc = &rollupAccumulator{
				shiftTonnage: make(map[WorkShift]decimal.Decimal),
				operators:    make(map[string]struct{}),
			}
			groups[key] = acc
		}
		shift := log.Shift.ReportingShift()
		acc.shiftTonnage[shift] = acc.shiftTonnage[shift].Add(log.TotalTonnage)
		acc.totalTonnage = acc.totalTonnage.Add(log.TotalTonnage)
		acc.truckCount += log.TruckCount
		if log.OperatorName != "" {
			acc.operators[log.OperatorName] = struct{}{}
		}
	}
	return groups
}

func dateBucket(t time.Time) string {
	date, _, _ := IndustrialDayBucket(t)
	return date.Format("2006-01-02")
}

func monthBucket(t time.Time) string {
	date, _, _ := IndustrialDayBucket(t)
	return date.Format("2006-01")
}

// rollupDaily is the pure aggregation over an already-fetched log set.
func rollupDaily(logs []*ProductionLog) []*DailyRollup {
	groups := accumulate(logs, dateBucket)

	rollups := make([]*DailyRollup, 0, len(groups))
	for key, acc := range groups {
		rollups = append(rollups, &DailyRollup{
			ProductionDate:   key.Bucket,
			Platform:         key.Platform,
			Category:         key.Category,
			MorningTonnage:   acc.shiftTonnage[WorkShiftMorning],
			AfternoonTonnage: acc.shiftTonnage[WorkShiftAfternoon],
			NightTonnage:     acc.shiftTonnage[WorkShiftNight],
			TotalTonnage:     acc.totalTonnage,
			TruckCount:       acc.truckCount,
			OperatorCount:    len(acc.operators),
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].ProductionDate != rollups[j].ProductionDate {
			return rollups[i].ProductionDate < rollups[j].ProductionDate
		}
		if rollups[i].Platform != rollups[j].Platform {
			return rollups[i].Platform < rollups[j].Platform
		}
		return rollups[i].Category < rollups[j].Category
	})
	return rollups
}

func rollupMonthly(logs []*ProductionLog) []*MonthlyRollup {
	groups := accumulate(logs, monthBucket)

	rollups := make([]*MonthlyRollup, 0, len(groups))
	for key, acc := range groups {
		rollups = append(rollups, &MonthlyRollup{
			ProductionMonth:  key.Bucket,
			Platform:         key.Platform,
			Category:         key.Category,
			MorningTonnage:   acc.shiftTonnage[WorkShiftMorning],
			AfternoonTonnage: acc.shiftTonnage[WorkShiftAfternoon],
			NightTonnage:     acc.shiftTonnage[WorkShiftNight],
			TotalTonnage:     acc.totalTonnage,
			TruckCount:       acc.truckCount,
			OperatorCount:    len(acc.operators),
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].ProductionMonth != rollups[j].ProductionMonth {
			return rollups[i].ProductionMonth < rollups[j].ProductionMonth
		}
		if rollups[i].Platform != rollups[j].Platform {
			return rollups[i].Platform < rollups[j].Platform
		}
		return rollups[i].Category < rollups[j].Category
	})
	return rollups
}

// fetchLogsBetween reads logs whose created_at falls in [start, end).
func fetchLogsBetween(ctx context.Context, start, end time.Time) ([]*ProductionLog, error) {
	db := config.GetDB()
	var logs []*ProductionLog
	err := db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DailyRollups covers production dates from..to inclusive. The fetch window is
// shifted to industrial-day boundaries: from-at-06:00 up to the morning after to.
func DailyRollups(ctx context.Context, from, to time.Time) ([]*DailyRollup, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), industrialDayStartHour, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), industrialDayStartHour, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	logs, err := fetchLogsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return rollupDaily(logs), nil
}

// MonthlyRollups covers one production year.
func MonthlyRollups(ctx context.Context, year int) ([]*MonthlyRollup, error) {
	start := time.Date(year, time.January, 1, industrialDayStartHour, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)

	logs, err := fetchLogsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return rollupMonthly(logs), nil
}

// ShiftOutput is the per-operator HUD counter: what the caller has logged so
// far in the current industrial day.
type ShiftOutput struct {
	OperatorName string          `json:"operator_name"`
	WindowStart  time.Time       `json:"window_start"`
	WindowEnd    time.Time       `json:"window_end"`
	TruckCount   int             `json:"truck_count"`
	TotalTonnage decimal.Decimal `json:"total_tonnage"`
}

func GetShiftOutput(ctx context.Context, now time.Time) (*ShiftOutput, error) {
	caller, err := OperatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	start, end := IndustrialDayWindow(now)

	db := config.GetDB()
	var row struct {
		TruckCount   int
		TotalTonnage decimal.Decimal
	}
	err = db.WithContext(ctx).Model(&ProductionLog{}).
		Where("operator_name = ? AND created_at >= ? AND created_at < ?", caller.Name, start, end).
		Select("COALESCE(SUM(truck_count), 0) AS truck_count, COALESCE(SUM(total_tonnage), 0) AS total_tonnage").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &ShiftOutput{
		OperatorName: caller.Name,
		WindowStart:  start,
		WindowEnd:    end,
		TruckCount:   row.TruckCount,
		TotalTonnage: row.TotalTonnage,
	}, nil
}
