package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"fincontrol/internal/engine"
)

// CalcDefaults holds the calculator defaults read from calc.toml.
type CalcDefaults struct {
	Projection ProjectionDefaults `toml:"projection"`
	Driver     DriverDefaults     `toml:"driver"`
}

// ProjectionDefaults seeds the investment calculators.
type ProjectionDefaults struct {
	Rate           float64 `toml:"rate"`
	RatePeriod     string  `toml:"rate_period"`
	Duration       int     `toml:"duration"`
	DurationUnit   string  `toml:"duration_unit"`
	Employment     string  `toml:"employment"`
	CustomCoverage int     `toml:"custom_coverage,omitempty"`
}

// DriverDefaults seeds the driver economics calculator. Amounts are in BRL.
type DriverDefaults struct {
	VehicleType         string  `toml:"vehicle_type"`
	VehicleValue        float64 `toml:"vehicle_value"`
	Installment         float64 `toml:"installment"`
	DepreciationPercent float64 `toml:"depreciation_percent"`
	OwnershipTaxRate    float64 `toml:"ownership_tax_rate"`
	MonthlyKm           float64 `toml:"monthly_km"`
	Insurance           float64 `toml:"insurance"`
	TireCost            float64 `toml:"tire_cost"`
	TireLifeKm          float64 `toml:"tire_life_km"`
	OilCost             float64 `toml:"oil_cost"`
	OilIntervalKm       float64 `toml:"oil_interval_km"`
	FuelPrice           float64 `toml:"fuel_price"`
	FuelEfficiency      float64 `toml:"fuel_efficiency"`
	DesiredProfit       float64 `toml:"desired_profit"`
	MaintenanceIncluded bool    `toml:"maintenance_included"`
}

// DefaultCalcDefaults returns the built-in calculator defaults.
func DefaultCalcDefaults() CalcDefaults {
	d := engine.DefaultDriverInput()
	return CalcDefaults{
		Projection: ProjectionDefaults{
			Rate:         8,
			RatePeriod:   engine.Annual.String(),
			Duration:     10,
			DurationUnit: engine.Years.String(),
			Employment:   engine.EmploymentCLT.String(),
		},
		Driver: DriverDefaults{
			VehicleType:         d.VehicleType.String(),
			VehicleValue:        d.VehicleValue.InexactFloat64(),
			Installment:         d.Installment.InexactFloat64(),
			DepreciationPercent: d.DepreciationPercent,
			OwnershipTaxRate:    d.OwnershipTaxRate,
			MonthlyKm:           d.MonthlyKm,
			Insurance:           d.Insurance.InexactFloat64(),
			TireCost:            d.TireCost.InexactFloat64(),
			TireLifeKm:          d.TireLifeKm,
			OilCost:             d.OilCost.InexactFloat64(),
			OilIntervalKm:       d.OilIntervalKm,
			FuelPrice:           d.FuelPrice.InexactFloat64(),
			FuelEfficiency:      d.FuelEfficiency,
			DesiredProfit:       d.DesiredProfit.InexactFloat64(),
			MaintenanceIncluded: d.MaintenanceIncluded,
		},
	}
}

// CalcDefaultsDir returns the XDG-compliant config directory.
func CalcDefaultsDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincontrol")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincontrol")
}

// CalcDefaultsPath returns the default location of calc.toml.
func CalcDefaultsPath() string {
	return filepath.Join(CalcDefaultsDir(), "calc.toml")
}

// LoadCalcDefaults reads path, returning the built-ins if it doesn't exist.
// Keys missing from the file keep their built-in value.
func LoadCalcDefaults(path string) (CalcDefaults, error) {
	cfg := DefaultCalcDefaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading calc defaults: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing calc defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveCalcDefaults writes cfg to path, creating the directory.
func SaveCalcDefaults(path string, cfg CalcDefaults) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating calc defaults file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks that every enum name in the file parses.
func (c CalcDefaults) Validate() error {
	if _, err := engine.ParseRatePeriod(c.Projection.RatePeriod); err != nil {
		return fmt.Errorf("calc defaults: %w", err)
	}
	if _, err := engine.ParseDurationUnit(c.Projection.DurationUnit); err != nil {
		return fmt.Errorf("calc defaults: %w", err)
	}
	if _, err := engine.ParseEmploymentType(c.Projection.Employment); err != nil {
		return fmt.Errorf("calc defaults: %w", err)
	}
	if _, err := engine.ParseVehicleType(c.Driver.VehicleType); err != nil {
		return fmt.Errorf("calc defaults: %w", err)
	}
	return nil
}

// ProjectionInput returns a base input for mode carrying the projection defaults.
func (c CalcDefaults) ProjectionInput(mode engine.Mode) (engine.ProjectionInput, error) {
	period, err := engine.ParseRatePeriod(c.Projection.RatePeriod)
	if err != nil {
		return engine.ProjectionInput{}, err
	}
	unit, err := engine.ParseDurationUnit(c.Projection.DurationUnit)
	if err != nil {
		return engine.ProjectionInput{}, err
	}
	employment, err := engine.ParseEmploymentType(c.Projection.Employment)
	if err != nil {
		return engine.ProjectionInput{}, err
	}
	return engine.ProjectionInput{
		Mode:           mode,
		Rate:           c.Projection.Rate,
		RatePeriod:     period,
		Duration:       engine.Span{Value: c.Projection.Duration, Unit: unit},
		Employment:     employment,
		CustomCoverage: c.Projection.CustomCoverage,
	}, nil
}

// DriverInput converts the driver defaults to an engine input.
func (c CalcDefaults) DriverInput() (engine.DriverInput, error) {
	d := c.Driver
	vt, err := engine.ParseVehicleType(d.VehicleType)
	if err != nil {
		return engine.DriverInput{}, err
	}
	return engine.DriverInput{
		VehicleType:         vt,
		VehicleValue:        decimal.NewFromFloat(d.VehicleValue),
		Installment:         decimal.NewFromFloat(d.Installment),
		DepreciationPercent: d.DepreciationPercent,
		OwnershipTaxRate:    d.OwnershipTaxRate,
		MonthlyKm:           d.MonthlyKm,
		Insurance:           decimal.NewFromFloat(d.Insurance),
		TireCost:            decimal.NewFromFloat(d.TireCost),
		TireLifeKm:          d.TireLifeKm,
		OilCost:             decimal.NewFromFloat(d.OilCost),
		OilIntervalKm:       d.OilIntervalKm,
		FuelPrice:           decimal.NewFromFloat(d.FuelPrice),
		FuelEfficiency:      d.FuelEfficiency,
		DesiredProfit:       decimal.NewFromFloat(d.DesiredProfit),
		MaintenanceIncluded: d.MaintenanceIncluded,
	}, nil
}
