package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMode        = errors.New("unknown calculation mode")
	ErrUnknownRatePeriod  = errors.New("unknown rate period")
	ErrUnknownUnit        = errors.New("unknown duration unit")
	ErrUnknownEmployment  = errors.New("unknown employment type")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrUnknownMillionMode = errors.New("unknown million mode")
)

// Mode selects a projection calculator.
type Mode int

const (
	ModeCompound Mode = iota + 1
	ModeIncome
	ModeEmergency
	ModeMillion
)

var modeNames = map[Mode]string{
	ModeCompound:  "compound",
	ModeIncome:    "income",
	ModeEmergency: "emergency",
	ModeMillion:   "million",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MillionMode picks which unknown the million calculator solves for.
type MillionMode int

const (
	// MillionTermMode solves for the time to reach the target.
	MillionTermMode MillionMode = iota + 1
	// MillionAmountMode solves for the monthly contribution over a fixed term.
	MillionAmountMode
)

func (m MillionMode) String() string {
	switch m {
	case MillionTermMode:
		return "term"
	case MillionAmountMode:
		return "amount"
	default:
		return fmt.Sprintf("MillionMode(%d)", int(m))
	}
}

type RatePeriod int

const (
	Annual RatePeriod = iota + 1
	Monthly
)

func (p RatePeriod) String() string {
	switch p {
	case Annual:
		return "annual"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("RatePeriod(%d)", int(p))
	}
}

type DurationUnit int

const (
	Years DurationUnit = iota + 1
	Months
)

func (u DurationUnit) String() string {
	switch u {
	case Years:
		return "years"
	case Months:
		return "months"
	default:
		return fmt.Sprintf("DurationUnit(%d)", int(u))
	}
}

// EmploymentType selects the emergency fund coverage preset.
type EmploymentType int

const (
	EmploymentCLT EmploymentType = iota + 1
	EmploymentSelfEmployed
	EmploymentPublicSector
	EmploymentCustom
)

func (e EmploymentType) String() string {
	switch e {
	case EmploymentCLT:
		return "clt"
	case EmploymentSelfEmployed:
		return "self_employed"
	case EmploymentPublicSector:
		return "public_sector"
	case EmploymentCustom:
		return "custom"
	default:
		return fmt.Sprintf("EmploymentType(%d)", int(e))
	}
}

// CoverageMonths returns how many months of cost the fund must cover.
// custom is only consulted for EmploymentCustom.
func (e EmploymentType) CoverageMonths(custom int) (int, error) {
	switch e {
	case EmploymentCLT:
		return 6, nil
	case EmploymentSelfEmployed:
		return 12, nil
	case EmploymentPublicSector:
		return 3, nil
	case EmploymentCustom:
		if custom < 0 {
			return 0, nil
		}
		return custom, nil
	default:
		return 0, ErrUnknownEmployment
	}
}

// VehicleType is how the driver holds the vehicle.
type VehicleType int

const (
	Financed VehicleType = iota + 1
	Rented
	Owned
)

func (v VehicleType) String() string {
	switch v {
	case Financed:
		return "financed"
	case Rented:
		return "rented"
	case Owned:
		return "owned"
	default:
		return fmt.Sprintf("VehicleType(%d)", int(v))
	}
}

func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}

func ParseMode(s string) (Mode, error) {
	switch norm(s) {
	case "compound":
		return ModeCompound, nil
	case "income", "drawdown":
		return ModeIncome, nil
	case "emergency":
		return ModeEmergency, nil
	case "million":
		return ModeMillion, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func ParseMillionMode(s string) (MillionMode, error) {
	switch norm(s) {
	case "term", "":
		return MillionTermMode, nil
	case "amount":
		return MillionAmountMode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMillionMode, s)
	}
}

func ParseRatePeriod(s string) (RatePeriod, error) {
	switch norm(s) {
	case "annual", "yearly", "":
		return Annual, nil
	case "monthly":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRatePeriod, s)
	}
}

func ParseDurationUnit(s string) (DurationUnit, error) {
	switch norm(s) {
	case "years", "year", "":
		return Years, nil
	case "months", "month":
		return Months, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

func ParseEmploymentType(s string) (EmploymentType, error) {
	switch norm(s) {
	case "clt", "":
		return EmploymentCLT, nil
	case "self_employed", "autonomo", "pj":
		return EmploymentSelfEmployed, nil
	case "public_sector", "public", "publico":
		return EmploymentPublicSector, nil
	case "custom":
		return EmploymentCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEmployment, s)
	}
}

func ParseVehicleType(s string) (VehicleType, error) {
	switch norm(s) {
	case "financed":
		return Financed, nil
	case "rented", "":
		return Rented, nil
	case "owned":
		return Owned, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
	}
}
