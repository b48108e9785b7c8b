package models

import (
	"errors"
	"testing"

	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
)

func TestProjectRemaining(t *testing.T) {
	cases := []struct {
		name            string
		stock           int
		pending         int
		wantProjected   int
		wantLowStock    bool
		wantOverbooking bool
	}{
		{"plenty left", 20, 5, 15, false, false},
		{"low stock flag", 4, 1, 3, true, false},
		{"threshold itself is not low", 5, 1, 4, false, false},
		{"projection goes negative", 3, 5, -2, true, true},
		{"already exhausted", 0, 2, -2, false, true},
		{"already overbooked", -1, 2, -3, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ProjectRemaining("BL-1", tc.stock, tc.pending)
			if p.Projected != tc.wantProjected {
				t.Fatalf("expected projected %d, got %d", tc.wantProjected, p.Projected)
			}
			if p.LowStock != tc.wantLowStock {
				t.Fatalf("expected low_stock=%v, got %v", tc.wantLowStock, p.LowStock)
			}
			if p.Overbooking != tc.wantOverbooking {
				t.Fatalf("expected overbooking=%v, got %v", tc.wantOverbooking, p.Overbooking)
			}
		})
	}
}

func TestCanAccessSection(t *testing.T) {
	if !canAccessSection(OperatorRoleAdmin, PlatformAssignmentFiftyKg, PlatformSectionBigBag) {
		t.Fatal("admins must see every platform")
	}
	if !canAccessSection(OperatorRoleOperator, PlatformAssignmentBoth, PlatformSectionBigBag) {
		t.Fatal("BOTH assignment must cover BIG_BAG")
	}
	if canAccessSection(OperatorRoleOperator, PlatformAssignmentFiftyKg, PlatformSectionBigBag) {
		t.Fatal("50KG operator must not see BIG_BAG dossiers")
	}
	if !canAccessSection(OperatorRoleSupervisor, PlatformAssignmentFiftyKg, PlatformSectionFiftyKg) {
		t.Fatal("matching assignment must pass")
	}
}

func TestResolveScopedMiss_NamesOwningPlatform(t *testing.T) {
	caller := &Operator{
		Username:           "op50",
		Role:               OperatorRoleOperator,
		PlatformAssignment: PlatformAssignmentFiftyKg,
	}
	foreign := &ShippingProgram{
		FileNumber:      "BL-88",
		PlatformSection: PlatformSectionBigBag,
	}

	err := resolveScopedMiss(caller, foreign)

	var denied *utils.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %v", err)
	}
	if denied.OwningPlatform != string(PlatformSectionBigBag) {
		t.Fatalf("denial must name the owning platform, got %q", denied.OwningPlatform)
	}
	if denied.FileNumber != "BL-88" {
		t.Fatalf("denial must name the dossier, got %q", denied.FileNumber)
	}
}

func TestResolveScopedMiss_NoUnscopedMatchIsNotFound(t *testing.T) {
	caller := &Operator{Role: OperatorRoleOperator, PlatformAssignment: PlatformAssignmentFiftyKg}

	err := resolveScopedMiss(caller, nil)

	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}
