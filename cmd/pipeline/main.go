package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"enterprise_analytics/pkg/core/cache"
	"enterprise_analytics/pkg/core/gateway"
	"enterprise_analytics/pkg/core/llm"
	"enterprise_analytics/pkg/core/outlook"
	"enterprise_analytics/pkg/core/pipeline"
)

// Config holds the pipeline tunables loaded from config/pipeline.yaml.
type Config struct {
	LLMProvider       string  `yaml:"llm_provider"`
	DefaultGrowthRate float64 `yaml:"default_growth_rate"`
	OutlookTimeoutSec int     `yaml:"outlook_timeout_seconds"`
	CacheTTLMinutes   int     `yaml:"cache_ttl_minutes"`
}

func loadConfig(path string) Config {
	cfg := Config{
		DefaultGrowthRate: 0.05,
		OutlookTimeoutSec: 30,
		CacheTTLMinutes:   60,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		stdlog.Printf("Warning: %s is malformed (%v), falling back to defaults.", path, err)
		return Config{
			DefaultGrowthRate: 0.05,
			OutlookTimeoutSec: 30,
			CacheTTLMinutes:   60,
		}
	}
	return cfg
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	enterpriseID := flag.Int64("enterprise", 0, "enterprise id to analyze")
	description := flag.String("description", "", "revenue description filter")
	growthRate := flag.Float64("growth", 0, "growth rate assumption (default from config)")
	configPath := flag.String("config", "config/pipeline.yaml", "path to pipeline config")
	offline := flag.Bool("offline", false, "use the deterministic outlook stub instead of Gemini+web")
	flag.Parse()

	if *enterpriseID == 0 {
		stdlog.Fatal("Error: -enterprise is required.")
	}

	cfg := loadConfig(*configPath)
	if *growthRate == 0 {
		*growthRate = cfg.DefaultGrowthRate
	}

	ctx := context.Background()

	fmt.Println("🚀 Revenue Analytics Pipeline Starting...")

	if err := gateway.InitDB(ctx); err != nil {
		stdlog.Fatalf("Critical: database init failed: %v", err)
	}
	defer gateway.Close()
	gw := gateway.NewPostgresGateway(nil)

	resultCache, err := cache.New()
	if err != nil {
		stdlog.Fatalf("Critical: cache init failed: %v", err)
	}
	defer resultCache.Close()

	var provider outlook.Provider
	if *offline {
		provider = &outlook.Static{}
	} else {
		model, err := llm.FromName(cfg.LLMProvider)
		if err != nil {
			stdlog.Fatalf("Critical: %v", err)
		}
		analyst := outlook.NewAnalyst(model, outlook.NewGoogleSearcher())
		analyst.Cache = resultCache
		analyst.Timeout = time.Duration(cfg.OutlookTimeoutSec) * time.Second
		analyst.CacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		provider = analyst
	}

	orchestrator := pipeline.New(gw, provider, resultCache)

	fmt.Printf("📂 Processing enterprise %d (description=%q, growth=%.1f%%)...\n",
		*enterpriseID, *description, *growthRate*100)

	report, err := orchestrator.Run(ctx, *enterpriseID, *description, *growthRate)
	if err != nil {
		stdlog.Fatalf("Pipeline failed: %v", err)
	}

	printReport(report)
	fmt.Println("\n[Done] Analysis Complete.")
}

func printReport(report *pipeline.Report) {
	fmt.Println("\n################################################################################")
	fmt.Println("                REVENUE ANALYTICS ENGINE - FORECAST REPORT")
	fmt.Printf("                Request: %s\n", report.RequestID)
	fmt.Println("################################################################################")

	// [1] VALIDATION
	fmt.Println("\n[1] DATA SUFFICIENCY")
	v := report.Validation
	fmt.Printf("Overall:               %v\n", v.OverallValidation)
	fmt.Printf("Revenue years:         %d\n", v.DataQuality.Revenue.YearsAvailable)
	fmt.Printf("Recurrence score:      %.2f\n", v.DataQuality.RecurrentRevenue)
	for _, rec := range v.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	// [2] SEASONAL
	if report.Seasonal != nil {
		fmt.Println("\n[2] INDUSTRY & SEASONAL ANALYSIS")
		fmt.Printf("Industry:              %s\n", report.Seasonal.IndustryLabel)
		years := make([]int, 0, len(report.Seasonal.Anomalies))
		for y := range report.Seasonal.Anomalies {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			if months := report.Seasonal.Anomalies[y]; len(months) > 0 {
				fmt.Printf("Anomalies %d:         months %v\n", y, months)
			}
		}
	}

	// [3] PREDICTION
	if report.Prediction != nil {
		fmt.Println("\n[3] COMBINED MONTHLY FORECAST")
		fmt.Printf("%-10s | %15s\n", "Month", "Forecast")
		fmt.Println(strings.Repeat("-", 30))
		keys := make([]string, 0, len(report.Prediction.CombinedMonthly))
		for k := range report.Prediction.CombinedMonthly {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var total float64
		for _, k := range keys {
			fmt.Printf("%-10s | $ %13.2f\n", k, report.Prediction.CombinedMonthly[k])
			total += report.Prediction.CombinedMonthly[k]
		}
		fmt.Println(strings.Repeat("-", 30))
		fmt.Printf("%-10s | $ %13.2f\n", "Total", total)
	}

	// [4] UNIT ECONOMICS
	if report.Units != nil {
		fmt.Println("\n[4] UNIT ECONOMICS")
		fmt.Printf("Base year:             %d\n", report.Units.BaseYear)
		for _, s := range report.Units.Summary {
			marker := ""
			if s.Projected {
				marker = " (projected)"
			}
			if s.PctChange != nil {
				fmt.Printf("%d: $ %12.2f  (%+.1f%%)%s\n", s.Year, s.TotalIncome, *s.PctChange, marker)
			} else {
				fmt.Printf("%d: $ %12.2f%s\n", s.Year, s.TotalIncome, marker)
			}
		}
	}

	// [5] MARKET TRENDS
	if report.Trends != nil {
		fmt.Println("\n[5] MARKET TRENDS")
		fmt.Printf("Growth hypothesis:     %.1f%%\n", report.Trends.Hypothesis)
		for _, trend := range report.Trends.Trends {
			fmt.Printf("  * %s\n", trend)
		}
	}

	if report.Narrative != "" {
		fmt.Println("\n[6] ANALYST COMMENTARY")
		fmt.Println(report.Narrative)
	}
}
