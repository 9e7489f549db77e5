package utils

import "testing"

type industryPayload struct {
	AverageRevenue string `json:"average_revenue"`
	GrowthRate     string `json:"growth_rate"`
}

func TestSmartParseStandardJSON(t *testing.T) {
	var out industryPayload
	raw := `{"average_revenue": "$1,200,000", "growth_rate": "4.5%"}`
	if _, err := SmartParse(raw, &out); err != nil {
		t.Fatalf("SmartParse failed: %v", err)
	}
	if out.AverageRevenue != "$1,200,000" || out.GrowthRate != "4.5%" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestSmartParseRepairsFencedOutput(t *testing.T) {
	var out industryPayload
	raw := "```json\n{'average_revenue': '$500', 'growth_rate': '2%',}\n```"
	if _, err := SmartParse(raw, &out); err != nil {
		t.Fatalf("SmartParse failed on fenced output: %v", err)
	}
	if out.AverageRevenue != "$500" {
		t.Errorf("expected repaired value, got %+v", out)
	}
}

func TestSmartParseHJSONFallback(t *testing.T) {
	var out map[string]interface{}
	raw := `
	{
		# analyst notes allowed
		average_revenue: N/A
		growth_rate: N/A
	}`
	if _, err := SmartParse(raw, &out); err != nil {
		t.Fatalf("SmartParse failed on hjson input: %v", err)
	}
	if out["average_revenue"] != "N/A" {
		t.Errorf("expected N/A, got %v", out["average_revenue"])
	}
}

func TestMustRepairJSONFallsBack(t *testing.T) {
	if got := MustRepairJSON("total nonsense that is not json at all \x00"); got == "" {
		t.Error("MustRepairJSON should never return an empty string")
	}
}
