package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/cache"
	"fincontrol/internal/config"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/log"
)

// ProjectionRequest is the wire form of a projection. Enumerations travel
// as strings; nil or empty settings take the configured defaults. Amounts
// are numbers or BRL strings and default to zero.
type ProjectionRequest struct {
	Mode           string      `json:"mode"`
	MillionMode    string      `json:"million_mode,omitempty"`
	Initial        core.Amount `json:"initial"`
	Contribution   core.Amount `json:"contribution"`
	Withdrawal     core.Amount `json:"withdrawal"`
	MonthlyCost    core.Amount `json:"monthly_cost"`
	Rate           *float64    `json:"rate,omitempty"`
	RatePeriod     string      `json:"rate_period,omitempty"`
	Duration       *int        `json:"duration,omitempty"`
	DurationUnit   string      `json:"duration_unit,omitempty"`
	StartDate      string      `json:"start_date,omitempty"` // YYYY-MM-DD
	Employment     string      `json:"employment,omitempty"`
	CustomCoverage *int        `json:"custom_coverage,omitempty"`
}

// Input resolves the request against defaults.
func (r ProjectionRequest) Input(defaults config.CalcDefaults) (engine.ProjectionInput, error) {
	mode, err := engine.ParseMode(r.Mode)
	if err != nil {
		return engine.ProjectionInput{}, err
	}
	in, err := defaults.ProjectionInput(mode)
	if err != nil {
		return engine.ProjectionInput{}, fmt.Errorf("calculator defaults: %w", err)
	}
	if in.MillionMode, err = engine.ParseMillionMode(r.MillionMode); err != nil {
		return engine.ProjectionInput{}, err
	}
	in.Initial = r.Initial.Decimal
	in.Contribution = r.Contribution.Decimal
	in.Withdrawal = r.Withdrawal.Decimal
	in.MonthlyCost = r.MonthlyCost.Decimal

	if r.Rate != nil {
		in.Rate = *r.Rate
	}
	if r.RatePeriod != "" {
		if in.RatePeriod, err = engine.ParseRatePeriod(r.RatePeriod); err != nil {
			return engine.ProjectionInput{}, err
		}
	}
	if r.Duration != nil {
		in.Duration.Value = *r.Duration
	}
	if r.DurationUnit != "" {
		if in.Duration.Unit, err = engine.ParseDurationUnit(r.DurationUnit); err != nil {
			return engine.ProjectionInput{}, err
		}
	}
	if r.Employment != "" {
		if in.Employment, err = engine.ParseEmploymentType(r.Employment); err != nil {
			return engine.ProjectionInput{}, err
		}
	}
	if r.CustomCoverage != nil {
		in.CustomCoverage = *r.CustomCoverage
	}
	if r.StartDate != "" {
		start, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return engine.ProjectionInput{}, fmt.Errorf("%w: start date %q", engine.ErrInvalidPeriod, r.StartDate)
		}
		in.StartDate = start
	}
	return in, nil
}

// DriverRequest is the wire form of a driver economics run. Absent fields
// take the configured defaults; an explicit zero is kept.
type DriverRequest struct {
	VehicleType         string       `json:"vehicle_type,omitempty"`
	VehicleValue        *core.Amount `json:"vehicle_value,omitempty"`
	Installment         *core.Amount `json:"installment,omitempty"`
	DepreciationPercent *float64     `json:"depreciation_percent,omitempty"`
	OwnershipTaxRate    *float64     `json:"ownership_tax_rate,omitempty"`
	MonthlyKm           *float64     `json:"monthly_km,omitempty"`
	Insurance           *core.Amount `json:"insurance,omitempty"`
	TireCost            *core.Amount `json:"tire_cost,omitempty"`
	TireLifeKm          *float64     `json:"tire_life_km,omitempty"`
	OilCost             *core.Amount `json:"oil_cost,omitempty"`
	OilIntervalKm       *float64     `json:"oil_interval_km,omitempty"`
	FuelPrice           *core.Amount `json:"fuel_price,omitempty"`
	FuelEfficiency      *float64     `json:"fuel_efficiency,omitempty"`
	DesiredProfit       *core.Amount `json:"desired_profit,omitempty"`
	MaintenanceIncluded *bool        `json:"maintenance_included,omitempty"`
}

// NewDriverRequest is the request that reproduces in exactly.
func NewDriverRequest(in engine.DriverInput) DriverRequest {
	amount := func(d decimal.Decimal) *core.Amount { return &core.Amount{Decimal: d} }
	num := func(v float64) *float64 { return &v }
	maintenance := in.MaintenanceIncluded
	return DriverRequest{
		VehicleType:         in.VehicleType.String(),
		VehicleValue:        amount(in.VehicleValue),
		Installment:         amount(in.Installment),
		DepreciationPercent: num(in.DepreciationPercent),
		OwnershipTaxRate:    num(in.OwnershipTaxRate),
		MonthlyKm:           num(in.MonthlyKm),
		Insurance:           amount(in.Insurance),
		TireCost:            amount(in.TireCost),
		TireLifeKm:          num(in.TireLifeKm),
		OilCost:             amount(in.OilCost),
		OilIntervalKm:       num(in.OilIntervalKm),
		FuelPrice:           amount(in.FuelPrice),
		FuelEfficiency:      num(in.FuelEfficiency),
		DesiredProfit:       amount(in.DesiredProfit),
		MaintenanceIncluded: &maintenance,
	}
}

func setAmount(dst *decimal.Decimal, v *core.Amount) {
	if v != nil {
		*dst = v.Decimal
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Input resolves the request against defaults.
func (r DriverRequest) Input(defaults config.CalcDefaults) (engine.DriverInput, error) {
	in, err := defaults.DriverInput()
	if err != nil {
		return engine.DriverInput{}, fmt.Errorf("calculator defaults: %w", err)
	}
	if r.VehicleType != "" {
		if in.VehicleType, err = engine.ParseVehicleType(r.VehicleType); err != nil {
			return engine.DriverInput{}, err
		}
	}
	setAmount(&in.VehicleValue, r.VehicleValue)
	setAmount(&in.Installment, r.Installment)
	setFloat(&in.DepreciationPercent, r.DepreciationPercent)
	setFloat(&in.OwnershipTaxRate, r.OwnershipTaxRate)
	setFloat(&in.MonthlyKm, r.MonthlyKm)
	setAmount(&in.Insurance, r.Insurance)
	setAmount(&in.TireCost, r.TireCost)
	setFloat(&in.TireLifeKm, r.TireLifeKm)
	setAmount(&in.OilCost, r.OilCost)
	setFloat(&in.OilIntervalKm, r.OilIntervalKm)
	setAmount(&in.FuelPrice, r.FuelPrice)
	setFloat(&in.FuelEfficiency, r.FuelEfficiency)
	setAmount(&in.DesiredProfit, r.DesiredProfit)
	if r.MaintenanceIncluded != nil {
		in.MaintenanceIncluded = *r.MaintenanceIncluded
	}
	return in, nil
}

// CalculatorService runs the engine calculators with caching.
type CalculatorService struct {
	defaults    config.CalcDefaults
	projections cache.Cache[engine.ProjectionResult]
	drivers     cache.Cache[engine.DriverResult]
	logger      *slog.Logger
	now         func() time.Time
}

func NewCalculatorService(
	defaults config.CalcDefaults,
	projections cache.Cache[engine.ProjectionResult],
	drivers cache.Cache[engine.DriverResult],
	logger *slog.Logger,
) *CalculatorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalculatorService{
		defaults:    defaults,
		projections: projections,
		drivers:     drivers,
		logger:      logger.With(log.FieldComponent, log.ComponentEngine),
		now:         time.Now,
	}
}

func (s *CalculatorService) Defaults() config.CalcDefaults {
	return s.defaults
}

// DriverDefaults is the driver input used when a request leaves every field empty.
func (s *CalculatorService) DriverDefaults() (engine.DriverInput, error) {
	return s.defaults.DriverInput()
}

// inputKey hashes the JSON form of a resolved input.
func inputKey(prefix string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return prefix + hex.EncodeToString(sum[:16]), nil
}

// Projection runs the projection selected by the request mode.
func (s *CalculatorService) Projection(ctx context.Context, req ProjectionRequest) (engine.ProjectionResult, error) {
	in, err := req.Input(s.defaults)
	if err != nil {
		return engine.ProjectionResult{}, err
	}
	if in.StartDate.IsZero() {
		// pin the start month so equal requests share a cache entry
		now := s.now()
		in.StartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	key, err := inputKey("projection:", in)
	if err != nil {
		return engine.ProjectionResult{}, fmt.Errorf("cache key: %w", err)
	}
	if s.projections != nil {
		if res, ok := s.projections.Get(key); ok {
			s.logger.DebugContext(ctx, "Projection cache hit", log.FieldCacheKey, key)
			return res, nil
		}
	}

	res, err := engine.Project(in)
	if err != nil {
		return engine.ProjectionResult{}, err
	}
	if s.projections != nil {
		s.projections.Set(key, res)
	}
	s.logger.InfoContext(ctx, "Projection calculated",
		log.FieldOperation, log.OpCalculate,
		log.FieldMode, in.Mode.String(),
		"months", res.Months,
		"reached", res.Reached)
	return res, nil
}

// Driver runs the driver economics calculator.
func (s *CalculatorService) Driver(ctx context.Context, req DriverRequest) (engine.DriverResult, error) {
	in, err := req.Input(s.defaults)
	if err != nil {
		return engine.DriverResult{}, err
	}

	key, err := inputKey("driver:", in)
	if err != nil {
		return engine.DriverResult{}, fmt.Errorf("cache key: %w", err)
	}
	if s.drivers != nil {
		if res, ok := s.drivers.Get(key); ok {
			s.logger.DebugContext(ctx, "Driver cache hit", log.FieldCacheKey, key)
			return res, nil
		}
	}

	res, err := engine.DriverEconomics(in)
	if err != nil {
		return engine.DriverResult{}, err
	}
	if s.drivers != nil {
		s.drivers.Set(key, res)
	}
	s.logger.InfoContext(ctx, "Driver economics calculated",
		log.FieldOperation, log.OpCalculate,
		"vehicle_type", res.VehicleType,
		"min_rate_per_km", res.MinRatePerKm.StringFixed(2))
	return res, nil
}
