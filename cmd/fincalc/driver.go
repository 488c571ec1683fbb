package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"fincontrol/internal/cli"
	"fincontrol/internal/config"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/services"
)

// driverFlags mirror services.DriverRequest. Numbers are strings so the
// form and the flags share one parser.
type driverFlags struct {
	interactive bool

	vehicleType   string
	vehicleValue  string
	installment   string
	depreciation  string
	taxRate       string
	monthlyKm     string
	insurance     string
	tireCost      string
	tireLifeKm    string
	oilCost       string
	oilIntervalKm string
	fuelPrice     string
	efficiency    string
	profit        string
	maintenance   bool
}

var driverOpts driverFlags

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Cost per km and minimum rate for a ride-hailing driver",
	Args:  cobra.NoArgs,
	RunE:  runDriver,
}

func init() {
	fs := driverCmd.Flags()
	fs.BoolVarP(&driverOpts.interactive, "interactive", "i", false, "Fill the inputs in a form")
	fs.StringVar(&driverOpts.vehicleType, "vehicle", "", "Vehicle: rented, financed or owned")
	fs.StringVar(&driverOpts.vehicleValue, "vehicle-value", "", "Vehicle value")
	fs.StringVar(&driverOpts.installment, "installment", "", "Monthly rent or loan installment")
	fs.StringVar(&driverOpts.depreciation, "depreciation", "", "Yearly depreciation, percent of value")
	fs.StringVar(&driverOpts.taxRate, "tax-rate", "", "Yearly ownership tax, percent of value")
	fs.StringVar(&driverOpts.monthlyKm, "km", "", "Kilometres driven per month")
	fs.StringVar(&driverOpts.insurance, "insurance", "", "Monthly insurance")
	fs.StringVar(&driverOpts.tireCost, "tire-cost", "", "Cost of a set of tires")
	fs.StringVar(&driverOpts.tireLifeKm, "tire-life", "", "Tire life in km")
	fs.StringVar(&driverOpts.oilCost, "oil-cost", "", "Cost of an oil change")
	fs.StringVar(&driverOpts.oilIntervalKm, "oil-interval", "", "Km between oil changes")
	fs.StringVar(&driverOpts.fuelPrice, "fuel-price", "", "Fuel price per litre")
	fs.StringVar(&driverOpts.efficiency, "efficiency", "", "Km per litre")
	fs.StringVar(&driverOpts.profit, "profit", "", "Desired monthly profit")
	fs.BoolVar(&driverOpts.maintenance, "maintenance-included", false, "Rent covers tires and oil")
	rootCmd.AddCommand(driverCmd)
}

func runDriver(cmd *cobra.Command, _ []string) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}

	f := driverOpts
	maintenanceSet := cmd.Flags().Changed("maintenance-included")
	if f.interactive {
		f = prefill(f, defaults.Driver, maintenanceSet)
		if err := driverForm(&f).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	req, err := f.request(maintenanceSet || f.interactive)
	if err != nil {
		return err
	}
	in, err := req.Input(defaults)
	if err != nil {
		return err
	}
	res, err := engine.DriverEconomics(in)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(res)
	}
	renderDriver(res)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// prefill seeds the form with the configured defaults where no flag was
// given. maintenanceSet says whether --maintenance-included was passed.
func prefill(f driverFlags, d config.DriverDefaults, maintenanceSet bool) driverFlags {
	set := func(dst *string, v float64) {
		if *dst == "" {
			*dst = formatFloat(v)
		}
	}
	if f.vehicleType == "" {
		f.vehicleType = d.VehicleType
	}
	set(&f.vehicleValue, d.VehicleValue)
	set(&f.installment, d.Installment)
	set(&f.depreciation, d.DepreciationPercent)
	set(&f.taxRate, d.OwnershipTaxRate)
	set(&f.monthlyKm, d.MonthlyKm)
	set(&f.insurance, d.Insurance)
	set(&f.tireCost, d.TireCost)
	set(&f.tireLifeKm, d.TireLifeKm)
	set(&f.oilCost, d.OilCost)
	set(&f.oilIntervalKm, d.OilIntervalKm)
	set(&f.fuelPrice, d.FuelPrice)
	set(&f.efficiency, d.FuelEfficiency)
	set(&f.profit, d.DesiredProfit)
	if !maintenanceSet {
		f.maintenance = d.MaintenanceIncluded
	}
	return f
}

func validNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return errors.New("enter a number")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func numberInput(title string, value *string) *huh.Input {
	return huh.NewInput().Title(title).Value(value).Validate(validNumber)
}

func driverForm(f *driverFlags) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Vehicle").
				Options(
					huh.NewOption("Rented", engine.Rented.String()),
					huh.NewOption("Financed", engine.Financed.String()),
					huh.NewOption("Owned", engine.Owned.String()),
				).
				Value(&f.vehicleType),
			numberInput("Vehicle value (R$)", &f.vehicleValue),
			numberInput("Monthly rent or installment (R$)", &f.installment),
			numberInput("Monthly insurance (R$)", &f.insurance),
		).Title("Vehicle"),
		huh.NewGroup(
			numberInput("Km per month", &f.monthlyKm),
			numberInput("Fuel price per litre (R$)", &f.fuelPrice),
			numberInput("Km per litre", &f.efficiency),
			numberInput("Desired monthly profit (R$)", &f.profit),
		).Title("Usage"),
		huh.NewGroup(
			huh.NewConfirm().Title("Rent covers tires and oil?").Value(&f.maintenance),
			numberInput("Tire set cost (R$)", &f.tireCost),
			numberInput("Tire life (km)", &f.tireLifeKm),
			numberInput("Oil change cost (R$)", &f.oilCost),
			numberInput("Km between oil changes", &f.oilIntervalKm),
			numberInput("Yearly depreciation (%)", &f.depreciation),
			numberInput("Yearly ownership tax (%)", &f.taxRate),
		).Title("Maintenance and ownership"),
	)
}

// optionalAmount leaves a blank value nil so the configured default applies.
func optionalAmount(name, s string) (*core.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseMoney(name, s)
	if err != nil {
		return nil, err
	}
	return &core.Amount{Decimal: d}, nil
}

func optionalFloat(name, s string) (*float64, error) {
	a, err := optionalAmount(name, s)
	if a == nil || err != nil {
		return nil, err
	}
	v := a.InexactFloat64()
	return &v, nil
}

// request converts the inputs; blank values take the configured defaults
// and an explicit 0 is kept. maintenanceSet says whether the maintenance
// flag was given explicitly.
func (f driverFlags) request(maintenanceSet bool) (services.DriverRequest, error) {
	req := services.DriverRequest{VehicleType: f.vehicleType}

	var err error
	for _, m := range []struct {
		name string
		raw  string
		dst  **core.Amount
	}{
		{"vehicle-value", f.vehicleValue, &req.VehicleValue},
		{"installment", f.installment, &req.Installment},
		{"insurance", f.insurance, &req.Insurance},
		{"tire-cost", f.tireCost, &req.TireCost},
		{"oil-cost", f.oilCost, &req.OilCost},
		{"fuel-price", f.fuelPrice, &req.FuelPrice},
		{"profit", f.profit, &req.DesiredProfit},
	} {
		if *m.dst, err = optionalAmount(m.name, m.raw); err != nil {
			return req, err
		}
	}
	for _, m := range []struct {
		name string
		raw  string
		dst  **float64
	}{
		{"depreciation", f.depreciation, &req.DepreciationPercent},
		{"tax-rate", f.taxRate, &req.OwnershipTaxRate},
		{"km", f.monthlyKm, &req.MonthlyKm},
		{"tire-life", f.tireLifeKm, &req.TireLifeKm},
		{"oil-interval", f.oilIntervalKm, &req.OilIntervalKm},
		{"efficiency", f.efficiency, &req.FuelEfficiency},
	} {
		if *m.dst, err = optionalFloat(m.name, m.raw); err != nil {
			return req, err
		}
	}
	if maintenanceSet {
		maintenance := f.maintenance
		req.MaintenanceIncluded = &maintenance
	}
	return req, nil
}

func renderDriver(res engine.DriverResult) {
	money := cli.FormatMoney
	fmt.Println()
	fmt.Println(cli.RenderTitle("DRIVER ECONOMICS  " + strings.ToUpper(res.VehicleType)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly costs",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Installment", money(res.InstallmentMonthly)},
			{"Ownership tax", money(res.TaxMonthly)},
			{"Insurance", money(res.InsuranceMonthly)},
			{"Depreciation", money(res.DepreciationMonthly)},
			{"Maintenance", money(res.MaintenanceMonthly)},
			{"Fuel", money(res.FuelMonthly)},
			{cli.SeparatorRow},
			{"Fixed", money(res.FixedMonthly)},
			{"Total", money(res.MonthlyCost)},
		},
	}))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Per km (%s km/month)", formatFloat(res.MonthlyKm)),
		Headers: []string{"Rate", "Value"},
		Rows: [][]string{
			{"Variable cost", cli.FormatPerKm(res.VariablePerKm)},
			{"Total cost", cli.FormatPerKm(res.CostPerKm)},
			{"Profit target", cli.FormatPerKm(res.ProfitPerKm)},
			{cli.SeparatorRow},
			{"Minimum rate", cli.FormatPerKm(res.MinRatePerKm)},
		},
	}))
	fmt.Println()
	fmt.Println("  " + cli.Muted("Target profit "+money(res.TargetProfit)+" per month"))
	fmt.Println()
}
