package models

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRuleFor_TotalOverEnumPair(t *testing.T) {
	platforms := []PlatformSection{PlatformSectionBigBag, PlatformSectionFiftyKg}
	categories := []LogCategory{LogCategoryExport, LogCategoryLocal, LogCategoryDebardage}

	for _, platform := range platforms {
		for _, category := range categories {
			rule, err := RuleFor(platform, category)
			if err != nil {
				t.Fatalf("matrix must be total: missing (%s, %s)", platform, category)
			}
			if rule.UnitsPerTruck <= 0 || !rule.WeightPerUnit.IsPositive() {
				t.Fatalf("(%s, %s) rule is not fully specified: %+v", platform, category, rule)
			}
			if category == LogCategoryExport && !rule.RequiresFileNumber {
				t.Fatalf("(%s, EXPORT) must require a file number", platform)
			}
			if category != LogCategoryExport && rule.RequiresFileNumber {
				t.Fatalf("(%s, %s) must not require a file number", platform, category)
			}
		}
	}

	if _, err := RuleFor(PlatformSection("TRUCK_YARD"), LogCategoryExport); err == nil {
		t.Fatal("values outside the closed enums must error")
	}
}

func TestComputeTotalTonnage(t *testing.T) {
	// 4 trucks x 22 big bags x 1.5 t
	got := computeTotalTonnage(4, 22, decimal.NewFromFloat(1.5))
	if !got.Equal(decimal.NewFromInt(132)) {
		t.Fatalf("expected 132, got %s", got)
	}
}

func TestNewProductionLog_Validate(t *testing.T) {
	ctx := context.Background()

	valid := func() *NewProductionLog {
		return &NewProductionLog{
			Category:      LogCategoryExport,
			Shift:         WorkShiftMorning,
			Platform:      PlatformSectionBigBag,
			TruckCount:    3,
			UnitsPerTruck: 22,
			WeightPerUnit: decimal.NewFromFloat(1.5),
			FileNumber:    "BL-1024",
		}
	}

	if err := valid().validate(ctx); err != nil {
		t.Fatalf("valid export log rejected: %v", err)
	}

	input := valid()
	input.TruckCount = 0
	if err := input.validate(ctx); err == nil {
		t.Fatal("truck_count <= 0 must be rejected before any write")
	}

	input = valid()
	input.FileNumber = "  "
	if err := input.validate(ctx); err == nil {
		t.Fatal("export without file number must be rejected")
	}

	input = valid()
	input.UnitsPerTruck = 0
	if err := input.validate(ctx); err == nil {
		t.Fatal("export without units per truck must be rejected")
	}

	input = valid()
	input.Shift = WorkShift("DAWN")
	if err := input.validate(ctx); err == nil {
		t.Fatal("unknown shift must be rejected")
	}
}

func TestNewProductionLog_ValidateAppliesPlatformDefaults(t *testing.T) {
	// local loads without packaging figures pick them up from the rules matrix
	input := &NewProductionLog{
		Category:   LogCategoryLocal,
		Shift:      WorkShiftAfternoon,
		Platform:   PlatformSectionFiftyKg,
		TruckCount: 2,
	}
	if err := input.validate(context.Background()); err != nil {
		t.Fatalf("local log without logistics fields rejected: %v", err)
	}
	if input.UnitsPerTruck != 600 {
		t.Fatalf("expected 50KG default of 600 bags per truck, got %d", input.UnitsPerTruck)
	}
	if !input.WeightPerUnit.Equal(decimal.NewFromFloat(0.05)) {
		t.Fatalf("expected 50kg bag weight 0.05 t, got %s", input.WeightPerUnit)
	}
}

func TestNewProductionLog_FileNumberOptionalForNonExport(t *testing.T) {
	input := &NewProductionLog{
		Category:   LogCategoryDebardage,
		Shift:      WorkShiftNight,
		Platform:   PlatformSectionBigBag,
		TruckCount: 1,
	}
	if err := input.validate(context.Background()); err != nil {
		t.Fatalf("debardage without file number rejected: %v", err)
	}
}
