package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultOwnershipTaxRate is the yearly vehicle tax, percent of value.
const DefaultOwnershipTaxRate = 4.0

// DriverInput describes a ride-hailing driver's vehicle and month.
type DriverInput struct {
	VehicleType         VehicleType
	VehicleValue        decimal.Decimal
	Installment         decimal.Decimal // monthly rent or loan payment
	DepreciationPercent float64         // yearly, percent of value
	OwnershipTaxRate    float64         // yearly, percent of value
	MonthlyKm           float64
	Insurance           decimal.Decimal // monthly
	TireCost            decimal.Decimal
	TireLifeKm          float64
	OilCost             decimal.Decimal
	OilIntervalKm       float64
	FuelPrice           decimal.Decimal // per litre
	FuelEfficiency      float64         // km per litre
	DesiredProfit       decimal.Decimal // monthly
	MaintenanceIncluded bool            // rental covers tires and oil
}

// DriverResult is the cost breakdown and break-even rate.
type DriverResult struct {
	VehicleType         string          `json:"vehicle_type"`
	MonthlyCost         decimal.Decimal `json:"monthly_cost"`
	FixedMonthly        decimal.Decimal `json:"fixed_monthly"`
	VariablePerKm       decimal.Decimal `json:"variable_per_km"`
	CostPerKm           decimal.Decimal `json:"cost_per_km"`
	MinRatePerKm        decimal.Decimal `json:"min_rate_per_km"`
	ProfitPerKm         decimal.Decimal `json:"profit_per_km"`
	InstallmentMonthly  decimal.Decimal `json:"installment_monthly"`
	TaxMonthly          decimal.Decimal `json:"tax_monthly"`
	InsuranceMonthly    decimal.Decimal `json:"insurance_monthly"`
	DepreciationMonthly decimal.Decimal `json:"depreciation_monthly"`
	MaintenanceMonthly  decimal.Decimal `json:"maintenance_monthly"`
	FuelMonthly         decimal.Decimal `json:"fuel_monthly"`
	TargetProfit        decimal.Decimal `json:"target_profit"`
	MonthlyKm           float64         `json:"monthly_km"`
}

// DefaultDriverInput is a rented car with maintenance bundled in the rent.
func DefaultDriverInput() DriverInput {
	return DriverInput{
		VehicleType:         Rented,
		VehicleValue:        decimal.NewFromInt(48000),
		Installment:         decimal.NewFromInt(1480),
		DepreciationPercent: 10,
		OwnershipTaxRate:    DefaultOwnershipTaxRate,
		MonthlyKm:           7000,
		Insurance:           decimal.NewFromInt(200),
		TireCost:            decimal.NewFromInt(1200),
		TireLifeKm:          50000,
		OilCost:             decimal.NewFromInt(236),
		OilIntervalKm:       10000,
		FuelPrice:           decimal.RequireFromString("5.89"),
		FuelEfficiency:      10,
		DesiredProfit:       decimal.NewFromInt(5000),
		MaintenanceIncluded: true,
	}
}

// fixedCosts switches the monthly fixed items on or off by vehicle type:
// installment, tax, insurance, depreciation.
func fixedCosts(in DriverInput, value float64) (installment, tax, insurance, depreciation float64, err error) {
	installment = toFloat(in.Installment)
	tax = value * finite(in.OwnershipTaxRate) / 100 / 12
	insurance = toFloat(in.Insurance)
	depreciation = value * finite(in.DepreciationPercent) / 100 / 12

	switch in.VehicleType {
	case Rented:
		return installment, 0, 0, 0, nil
	case Owned:
		return 0, tax, insurance, depreciation, nil
	case Financed:
		return installment, tax, insurance, depreciation, nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("%w: %v", ErrUnknownVehicleType, in.VehicleType)
	}
}

// DriverEconomics computes monthly cost, cost per km and the minimum per-km
// fare that yields the desired profit. User-supplied divisors are floored
// at 1.
func DriverEconomics(in DriverInput) (DriverResult, error) {
	value := toFloat(in.VehicleValue)
	installment, tax, insurance, depreciation, err := fixedCosts(in, value)
	if err != nil {
		return DriverResult{}, err
	}
	fixed := installment + tax + insurance + depreciation

	skipMaint := in.VehicleType == Rented && in.MaintenanceIncluded
	fuelKm := toFloat(in.FuelPrice) / math.Max(1, finite(in.FuelEfficiency))
	var tireKm, oilKm float64
	if !skipMaint {
		tireKm = toFloat(in.TireCost) / math.Max(1, finite(in.TireLifeKm))
		oilKm = toFloat(in.OilCost) / math.Max(1, finite(in.OilIntervalKm))
	}
	variableKm := fuelKm + tireKm + oilKm

	km := math.Max(0, finite(in.MonthlyKm))
	total := fixed + variableKm*km
	costPerKm := total / math.Max(1, km)
	profit := toFloat(in.DesiredProfit)
	minRate := (total + profit) / math.Max(1, km)

	return DriverResult{
		VehicleType:         in.VehicleType.String(),
		MonthlyCost:         RoundFloat(total),
		FixedMonthly:        RoundFloat(fixed),
		VariablePerKm:       RoundFloat(variableKm),
		CostPerKm:           RoundFloat(costPerKm),
		MinRatePerKm:        RoundFloat(minRate),
		ProfitPerKm:         RoundFloat(minRate - costPerKm),
		InstallmentMonthly:  RoundFloat(installment),
		TaxMonthly:          RoundFloat(tax),
		InsuranceMonthly:    RoundFloat(insurance),
		DepreciationMonthly: RoundFloat(depreciation),
		MaintenanceMonthly:  RoundFloat((tireKm + oilKm) * km),
		FuelMonthly:         RoundFloat(fuelKm * km),
		TargetProfit:        Round(in.DesiredProfit),
		MonthlyKm:           km,
	}, nil
}
