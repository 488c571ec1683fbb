package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/cache"
	"fincontrol/internal/config"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
)

func ptr[T any](v T) *T { return &v }

func newTestCalculator() (*CalculatorService, *cache.LRUCache[engine.ProjectionResult], *cache.LRUCache[engine.DriverResult]) {
	projections := cache.NewLRUCache[engine.ProjectionResult](16, time.Minute)
	drivers := cache.NewLRUCache[engine.DriverResult](16, time.Minute)
	s := NewCalculatorService(config.DefaultCalcDefaults(), projections, drivers, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	return s, projections, drivers
}

func TestProjectionRequest_InputDefaults(t *testing.T) {
	in, err := ProjectionRequest{Mode: "compound"}.Input(config.DefaultCalcDefaults())
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Rate != 8 || in.RatePeriod != engine.Annual {
		t.Errorf("Input() rate = %v %v, want 8 annual", in.Rate, in.RatePeriod)
	}
	if in.Duration != (engine.Span{Value: 10, Unit: engine.Years}) {
		t.Errorf("Input() duration = %+v, want 10 years", in.Duration)
	}
	if in.Employment != engine.EmploymentCLT {
		t.Errorf("Input() employment = %v, want clt", in.Employment)
	}
}

func TestProjectionRequest_InputOverrides(t *testing.T) {
	req := ProjectionRequest{
		Mode:           "emergency",
		Rate:           ptr(0.0),
		RatePeriod:     "monthly",
		Duration:       ptr(18),
		DurationUnit:   "months",
		Employment:     "custom",
		CustomCoverage: ptr(9),
		StartDate:      "2025-01-15",
	}
	in, err := req.Input(config.DefaultCalcDefaults())
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Mode != engine.ModeEmergency || in.Rate != 0 || in.RatePeriod != engine.Monthly {
		t.Errorf("Input() = %+v", in)
	}
	if in.Duration != (engine.Span{Value: 18, Unit: engine.Months}) {
		t.Errorf("Input() duration = %+v, want 18 months", in.Duration)
	}
	if in.Employment != engine.EmploymentCustom || in.CustomCoverage != 9 {
		t.Errorf("Input() employment = %v/%d, want custom/9", in.Employment, in.CustomCoverage)
	}
	if in.StartDate.Format("2006-01-02") != "2025-01-15" {
		t.Errorf("Input() start = %v, want 2025-01-15", in.StartDate)
	}
}

func TestProjectionRequest_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		req  ProjectionRequest
		want error
	}{
		{"unknown mode", ProjectionRequest{Mode: "lottery"}, engine.ErrUnknownMode},
		{"unknown million mode", ProjectionRequest{Mode: "million", MillionMode: "sideways"}, engine.ErrUnknownMillionMode},
		{"unknown rate period", ProjectionRequest{Mode: "compound", RatePeriod: "weekly"}, engine.ErrUnknownRatePeriod},
		{"unknown unit", ProjectionRequest{Mode: "compound", DurationUnit: "decades"}, engine.ErrUnknownUnit},
		{"unknown employment", ProjectionRequest{Mode: "emergency", Employment: "freelancer-ish"}, engine.ErrUnknownEmployment},
		{"bad start date", ProjectionRequest{Mode: "compound", StartDate: "15/01/2025"}, engine.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Input(config.DefaultCalcDefaults())
			if !errors.Is(err, tt.want) {
				t.Errorf("Input() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCalculatorService_ProjectionCached(t *testing.T) {
	s, projections, _ := newTestCalculator()
	ctx := context.Background()

	req := ProjectionRequest{
		Mode:         "compound",
		Initial:      core.Amount{Decimal: decimal.NewFromInt(1000)},
		Contribution: core.Amount{Decimal: decimal.NewFromInt(100)},
		Rate:         ptr(0.0),
		Duration:     ptr(12),
		DurationUnit: "months",
	}
	res, err := s.Projection(ctx, req)
	if err != nil {
		t.Fatalf("Projection() error = %v", err)
	}
	if !res.Total.Equal(decimal.NewFromInt(2200)) {
		t.Errorf("Projection() Total = %v, want 2200", res.Total)
	}
	if projections.Size() != 1 {
		t.Errorf("cache size = %d, want 1", projections.Size())
	}

	if _, err := s.Projection(ctx, req); err != nil {
		t.Fatalf("Projection() second call error = %v", err)
	}
	if projections.Size() != 1 {
		t.Errorf("cache size after repeat = %d, want 1", projections.Size())
	}

	req.Contribution = core.Amount{Decimal: decimal.NewFromInt(200)}
	if _, err := s.Projection(ctx, req); err != nil {
		t.Fatalf("Projection() error = %v", err)
	}
	if projections.Size() != 2 {
		t.Errorf("cache size after new input = %d, want 2", projections.Size())
	}
}

func TestDriverRequest_InputAbsentFieldsTakeDefaults(t *testing.T) {
	defaults := config.DefaultCalcDefaults()
	want, err := defaults.DriverInput()
	if err != nil {
		t.Fatalf("DriverInput() error = %v", err)
	}

	got, err := DriverRequest{}.Input(defaults)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got.VehicleType != want.VehicleType || !got.Installment.Equal(want.Installment) || got.MonthlyKm != want.MonthlyKm {
		t.Errorf("Input() = %+v, want defaults %+v", got, want)
	}

	got, err = DriverRequest{VehicleType: "owned", MonthlyKm: ptr(3000.0), MaintenanceIncluded: ptr(false)}.Input(defaults)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got.VehicleType != engine.Owned || got.MonthlyKm != 3000 || got.MaintenanceIncluded {
		t.Errorf("Input() = %+v, want owned at 3000 km without maintenance", got)
	}

	if _, err := (DriverRequest{VehicleType: "bike"}).Input(defaults); !errors.Is(err, engine.ErrUnknownVehicleType) {
		t.Errorf("Input(bike) error = %v, want %v", err, engine.ErrUnknownVehicleType)
	}
}

func TestDriverRequest_InputKeepsExplicitZeros(t *testing.T) {
	var req DriverRequest
	body := `{"vehicle_type":"financed","vehicle_value":0,"installment":"0,00","insurance":0,"desired_profit":0,"monthly_km":1000}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	got, err := req.Input(config.DefaultCalcDefaults())
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	for name, v := range map[string]decimal.Decimal{
		"VehicleValue":  got.VehicleValue,
		"Installment":   got.Installment,
		"Insurance":     got.Insurance,
		"DesiredProfit": got.DesiredProfit,
	} {
		if !v.IsZero() {
			t.Errorf("Input().%s = %v, want 0", name, v)
		}
	}
	if got.MonthlyKm != 1000 {
		t.Errorf("Input().MonthlyKm = %v, want 1000", got.MonthlyKm)
	}

	res, err := engine.DriverEconomics(got)
	if err != nil {
		t.Fatalf("DriverEconomics() error = %v", err)
	}
	if !res.TaxMonthly.IsZero() || !res.DepreciationMonthly.IsZero() {
		t.Errorf("DriverEconomics() tax/depreciation = %v/%v, want 0 for a zero-value vehicle", res.TaxMonthly, res.DepreciationMonthly)
	}
}

func TestNewDriverRequest_RoundTrip(t *testing.T) {
	defaults := config.DefaultCalcDefaults()
	want, err := defaults.DriverInput()
	if err != nil {
		t.Fatalf("DriverInput() error = %v", err)
	}
	want.Insurance = decimal.Zero

	// a zero default must not be replaced on the way back
	got, err := NewDriverRequest(want).Input(defaults)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if !got.Insurance.IsZero() || !got.FuelPrice.Equal(want.FuelPrice) || got.VehicleType != want.VehicleType {
		t.Errorf("Input() = %+v, want %+v", got, want)
	}
}

func TestCalculatorService_Driver(t *testing.T) {
	s, _, drivers := newTestCalculator()

	res, err := s.Driver(context.Background(), DriverRequest{})
	if err != nil {
		t.Fatalf("Driver() error = %v", err)
	}
	if !res.MinRatePerKm.IsPositive() || res.MinRatePerKm.LessThan(res.CostPerKm) {
		t.Errorf("Driver() MinRatePerKm = %v, CostPerKm = %v", res.MinRatePerKm, res.CostPerKm)
	}
	if drivers.Size() != 1 {
		t.Errorf("cache size = %d, want 1", drivers.Size())
	}
}
