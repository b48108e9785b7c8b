package models

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type PlatformSection string

const (
	PlatformSectionBigBag  PlatformSection = "BIG_BAG"
	PlatformSectionFiftyKg PlatformSection = "50KG"
)

func (t *PlatformSection) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = PlatformSection(v)
	case string:
		*t = PlatformSection(v)
	default:
		return fmt.Errorf("unsupported platform section value: %v", value)
	}
	return nil
}

func (t PlatformSection) Value() (driver.Value, error) {
	return string(t), nil
}

func (t PlatformSection) IsValid() bool {
	return t == PlatformSectionBigBag || t == PlatformSectionFiftyKg
}

// PlatformAssignment is an operator-side value: a platform section or BOTH.
type PlatformAssignment string

const (
	PlatformAssignmentBigBag  PlatformAssignment = "BIG_BAG"
	PlatformAssignmentFiftyKg PlatformAssignment = "50KG"
	PlatformAssignmentBoth    PlatformAssignment = "BOTH"
)

func (t PlatformAssignment) Covers(section PlatformSection) bool {
	if t == PlatformAssignmentBoth {
		return true
	}
	return string(t) == string(section)
}

type LogCategory string

const (
	LogCategoryExport    LogCategory = "EXPORT"
	LogCategoryLocal     LogCategory = "LOCAL"
	LogCategoryDebardage LogCategory = "DEBARDAGE"
)

func (t *LogCategory) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = LogCategory(v)
	case string:
		*t = LogCategory(v)
	default:
		return fmt.Errorf("unsupported log category value: %v", value)
	}
	return nil
}

func (t LogCategory) Value() (driver.Value, error) {
	return string(t), nil
}

func (t LogCategory) IsValid() bool {
	switch t {
	case LogCategoryExport, LogCategoryLocal, LogCategoryDebardage:
		return true
	}
	return false
}

type WorkShift string

const (
	WorkShiftMorning   WorkShift = "MORNING"
	WorkShiftAfternoon WorkShift = "AFTERNOON"
	WorkShiftNight     WorkShift = "NIGHT"
	WorkShiftEvening   WorkShift = "EVENING"
)

func (t *WorkShift) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = WorkShift(v)
	case string:
		*t = WorkShift(v)
	default:
		return fmt.Errorf("unsupported work shift value: %v", value)
	}
	return nil
}

func (t WorkShift) Value() (driver.Value, error) {
	return string(t), nil
}

func (t WorkShift) IsValid() bool {
	switch t {
	case WorkShiftMorning, WorkShiftAfternoon, WorkShiftNight, WorkShiftEvening:
		return true
	}
	return false
}

// ReportingShift folds EVENING into AFTERNOON. Reporting-time normalization
// only; the stored shift value is never rewritten.
func (t WorkShift) ReportingShift() WorkShift {
	if t == WorkShiftEvening {
		return WorkShiftAfternoon
	}
	return t
}

// ProgramStatus is the stored dossier lifecycle state.
type ProgramStatus string

const (
	ProgramStatusPending    ProgramStatus = "PENDING"
	ProgramStatusInProgress ProgramStatus = "IN_PROGRESS"
	ProgramStatusCompleted  ProgramStatus = "COMPLETED"
)

func (t *ProgramStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = ProgramStatus(v)
	case string:
		*t = ProgramStatus(v)
	default:
		return fmt.Errorf("unsupported program status value: %v", value)
	}
	return nil
}

func (t ProgramStatus) Value() (driver.Value, error) {
	return string(t), nil
}

// ExecutionStatus is derived from planned-vs-actual aggregates, never stored.
type ExecutionStatus string

const (
	ExecutionStatusPending    ExecutionStatus = "PENDING"
	ExecutionStatusInProgress ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusCompleted  ExecutionStatus = "COMPLETED"
	ExecutionStatusOverbooked ExecutionStatus = "OVERBOOKED"
)

// Priority orders monitoring views most-attention-needed first.
func (t ExecutionStatus) Priority() int {
	switch t {
	case ExecutionStatusOverbooked:
		return 0
	case ExecutionStatusInProgress:
		return 1
	case ExecutionStatusPending:
		return 2
	case ExecutionStatusCompleted:
		return 3
	}
	return 4
}

type OperatorRole string

const (
	OperatorRoleAdmin      OperatorRole = "ADMIN"
	OperatorRoleSupervisor OperatorRole = "SUPERVISOR"
	OperatorRoleOperator   OperatorRole = "OPERATOR"
)

func (t *OperatorRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = OperatorRole(v)
	case string:
		*t = OperatorRole(v)
	default:
		return fmt.Errorf("unsupported operator role value: %v", value)
	}
	return nil
}

func (t OperatorRole) Value() (driver.Value, error) {
	return string(t), nil
}

/* Loading rules matrix */

// LoadingRule is the fully-specified business rule for one (platform, category)
// pair: default packaging figures plus which logistics fields a submission must
// carry. The matrix is total over the closed enum pair; call sites never apply
// their own defaults.
type LoadingRule struct {
	UnitsPerTruck      int
	WeightPerUnit      decimal.Decimal
	RequiresFileNumber bool
	RequiresLogistics  bool
}

type ruleKey struct {
	Platform PlatformSection
	Category LogCategory
}

var loadingRules = map[ruleKey]LoadingRule{
	{PlatformSectionBigBag, LogCategoryExport}:     {UnitsPerTruck: 22, WeightPerUnit: decimal.NewFromFloat(1.5), RequiresFileNumber: true, RequiresLogistics: true},
	{PlatformSectionBigBag, LogCategoryLocal}:      {UnitsPerTruck: 22, WeightPerUnit: decimal.NewFromFloat(1.5)},
	{PlatformSectionBigBag, LogCategoryDebardage}:  {UnitsPerTruck: 22, WeightPerUnit: decimal.NewFromFloat(1.5)},
	{PlatformSectionFiftyKg, LogCategoryExport}:    {UnitsPerTruck: 600, WeightPerUnit: decimal.NewFromFloat(0.05), RequiresFileNumber: true, RequiresLogistics: true},
	{PlatformSectionFiftyKg, LogCategoryLocal}:     {UnitsPerTruck: 600, WeightPerUnit: decimal.NewFromFloat(0.05)},
	{PlatformSectionFiftyKg, LogCategoryDebardage}: {UnitsPerTruck: 600, WeightPerUnit: decimal.NewFromFloat(0.05)},
}

// RuleFor returns the rule for a (platform, category) pair.
// Errors only on values outside the closed enums.
func RuleFor(platform PlatformSection, category LogCategory) (LoadingRule, error) {
	rule, ok := loadingRules[ruleKey{platform, category}]
	if !ok {
		return LoadingRule{}, errors.New("no loading rule for platform/category pair")
	}
	return rule, nil
}
