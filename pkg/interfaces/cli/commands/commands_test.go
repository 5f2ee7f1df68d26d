package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gearboxScenario = "../../../infrastructure/scenario/testdata/gearbox.yaml"

// run executes one CLI invocation against dbPath and returns its stdout
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func loadedDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bomcost.db")
	out, err := run(t, dbPath, "load", gearboxScenario)
	if err != nil {
		t.Fatalf("load failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Loaded GBX-100: 6 items, 5 cost records, 1 operations, 2 machines") {
		t.Fatalf("Unexpected load output:\n%s", out)
	}
	return dbPath
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadRecalcReport(t *testing.T) {
	dbPath := loadedDB(t)

	out, err := run(t, dbPath, "recalc", "GBX-100")
	if err != nil {
		t.Fatalf("recalc failed: %v", err)
	}
	if !strings.Contains(out, "GBX-100: 6 items processed, 5 records written (0 created)") {
		t.Errorf("Unexpected recalc output:\n%s", out)
	}
	if !strings.Contains(out, "no cost data: GASKET") {
		t.Errorf("Expected GASKET gap to be listed:\n%s", out)
	}

	out, err = run(t, dbPath, "report", "GBX-100", "--format", "json")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var report struct {
		Overall    string `json:"overall_total_cost"`
		StaleCosts int    `json:"stale_costs"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Expected JSON report, got %v\n%s", err, out)
	}
	if report.Overall != "164.9" || report.StaleCosts != 0 {
		t.Errorf("Expected 164.9 with nothing stale, got %s and %d", report.Overall, report.StaleCosts)
	}

	out, err = run(t, dbPath, "report", "GBX-100")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "Overall total: 164.90") {
		t.Errorf("Unexpected text report:\n%s", out)
	}
}

func TestLoad_WithRecalc(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bomcost.db")
	out, err := run(t, dbPath, "load", gearboxScenario, "--recalc")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !strings.Contains(out, "GBX-100: 6 items processed") {
		t.Errorf("Expected recalculation summary:\n%s", out)
	}
}

func TestLoad_StrictRefusesCycles(t *testing.T) {
	path := writeFile(t, "loop.yaml", `
bom_id: LOOP
items:
  - {id: A, parent: B, type: assembly, name: A, quantity: 1}
  - {id: B, parent: A, type: child_part, name: B, quantity: 1}
`)
	dbPath := filepath.Join(t.TempDir(), "bomcost.db")

	if _, err := run(t, dbPath, "load", path, "--strict"); err == nil {
		t.Fatal("Expected strict load to fail")
	}

	out, err := run(t, dbPath, "load", path)
	if err != nil {
		t.Fatalf("Expected lenient load to succeed, got %v", err)
	}
	if !strings.Contains(out, "warning: parent cycle detected") {
		t.Errorf("Expected cycle warning:\n%s", out)
	}

	out, err = run(t, dbPath, "validate", "LOOP")
	if err == nil {
		t.Error("Expected validate to fail on a cycle")
	}
	if !strings.Contains(out, "LOOP: 1 problems") {
		t.Errorf("Unexpected validate output:\n%s", out)
	}
}

func TestValidateAndTree(t *testing.T) {
	dbPath := loadedDB(t)

	out, err := run(t, dbPath, "validate", "GBX-100")
	if err != nil || out != "GBX-100: structure is valid\n" {
		t.Errorf("Expected valid structure, got %q (%v)", out, err)
	}

	out, err = run(t, dbPath, "tree", "GBX-100")
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 || !strings.HasPrefix(lines[2], "    HOUSING_CASTING") {
		t.Errorf("Unexpected tree:\n%s", out)
	}

	if _, err := run(t, dbPath, "tree", "NOPE"); err == nil || !strings.Contains(err.Error(), "has no items") {
		t.Errorf("Expected unknown bom error, got %v", err)
	}
}

func TestRecalc_Arguments(t *testing.T) {
	dbPath := loadedDB(t)

	if _, err := run(t, dbPath, "recalc"); err == nil {
		t.Error("Expected error without bom ids or --all")
	}
	if _, err := run(t, dbPath, "recalc", "GBX-100", "--all"); err == nil {
		t.Error("Expected error with both bom ids and --all")
	}

	out, err := run(t, dbPath, "recalc", "--all", "--format", "json")
	if err != nil {
		t.Fatalf("recalc --all failed: %v", err)
	}
	var results []struct {
		BOMID string `json:"bom_id"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("Expected JSON results, got %v", err)
	}
	if len(results) != 1 || results[0].BOMID != "GBX-100" {
		t.Errorf("Expected one GBX-100 result, got %+v", results)
	}
}

func TestReport_ToFile(t *testing.T) {
	dbPath := loadedDB(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")

	out, err := run(t, dbPath, "report", "GBX-100", "-o", reportPath)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "Report saved to: "+reportPath) {
		t.Errorf("Unexpected output %q", out)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Expected report file: %v", err)
	}
	if !strings.Contains(string(data), "5 items have stale costs") {
		t.Error("Expected stale banner before any recalculation")
	}

	if _, err := run(t, dbPath, "report", "GBX-100", "--format", "html"); err == nil {
		t.Error("Expected html format to be rejected")
	}
}

func TestCalc_Procured(t *testing.T) {
	input := writeFile(t, "bearing.yaml", `
unit_price: 6
quantity: 100
freight_percentage: 5
duty_percentage: 7.5
overhead_percentage: 0
`)
	dbPath := filepath.Join(t.TempDir(), "unused.db")

	out, err := run(t, dbPath, "calc", "procured", "--input", input)
	if err != nil {
		t.Fatalf("calc failed: %v", err)
	}
	if !strings.Contains(out, "landed_unit_cost") || !strings.Contains(out, "6.75") {
		t.Errorf("Unexpected calc output:\n%s", out)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("Expected calc without --save-as to leave the database alone")
	}
}

func TestCalc_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bomcost.db")

	bad := writeFile(t, "bad.yaml", "unit_price: -1\nquantity: 1\n")
	if _, err := run(t, dbPath, "calc", "procured", "--input", bad); err == nil || !strings.Contains(err.Error(), "unit_price") {
		t.Errorf("Expected validation error on unit_price, got %v", err)
	}

	typo := writeFile(t, "typo.yaml", "unit_prize: 1\n")
	if _, err := run(t, dbPath, "calc", "procured", "--input", typo); err == nil {
		t.Error("Expected unknown field to be rejected")
	}

	if _, err := run(t, dbPath, "calc", "packaging"); err == nil {
		t.Error("Expected missing --input to be rejected")
	}
}

func TestCalc_MHRSaveAsMarksUsersStale(t *testing.T) {
	dbPath := loadedDB(t)
	if _, err := run(t, dbPath, "recalc", "GBX-100"); err != nil {
		t.Fatalf("recalc failed: %v", err)
	}

	machine := writeFile(t, "lathe.yaml", `
shifts_per_day: 3
hours_per_shift: 8
working_days_per_year: 260
planned_maintenance_hours: 0
capacity_utilization_percent: 85
landed_cost: 1000000
accessories_percent: 6
installation_percent: 20
payback_years: 10
interest_rate_percent: 8
insurance_rate_percent: 1
maintenance_rate_percent: 5
footprint_sqm: 20
rent_per_sqm_per_month: 10
power_kwh_per_hour: 30
electricity_cost_per_kwh: 0.12
admin_overhead_percent: 10
profit_margin_percent: 15
`)
	out, err := run(t, dbPath, "calc", "mhr", "--input", machine, "--save-as", "LATHE-01")
	if err != nil {
		t.Fatalf("calc mhr failed: %v", err)
	}
	if !strings.Contains(out, "Saved rate 56.09 as LATHE-01") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = run(t, dbPath, "report", "GBX-100", "--format", "json")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var report struct {
		StaleCosts int `json:"stale_costs"`
	}
	_ = json.Unmarshal([]byte(out), &report)
	if report.StaleCosts != 2 {
		t.Errorf("Expected SHAFT and GEARBOX stale, got %d", report.StaleCosts)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := writeFile(t, "bomcost.yaml", "database:\n  path: "+dbPath+"\nlog:\n  level: error\n")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "load", gearboxScenario})
	if err := root.Execute(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("Expected database at configured path: %v", err)
	}

	t.Setenv("BOMCOST_LOG_LEVEL", "loud")
	root = NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "tree", "GBX-100"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected invalid log level from environment, got %v", err)
	}
}
