// Command quote prints an offline premium quote for a coverage amount,
// duration, and trigger type, along with the full risk multiplier table.
//
// Usage:
//
//	go run ./cmd/quote -coverage 1000000 -duration 720h -trigger rainfall_below
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/pricing"
)

var triggerTypes = []domain.TriggerType{
	domain.TriggerRainfallBelow,
	domain.TriggerRainfallAbove,
	domain.TriggerTemperatureBelow,
	domain.TriggerTemperatureAbove,
	domain.TriggerWindSpeedAbove,
}

func main() {
	coverage := flag.Int64("coverage", 0, "coverage amount in base units")
	duration := flag.Duration("duration", 0, "coverage duration (e.g. 720h for 30 days)")
	trigger := flag.String("trigger", "", "trigger type (rainfall_below, rainfall_above, temperature_below, temperature_above, wind_speed_above)")
	baseRate := flag.Int64("base-rate-bps", 500, "annual base rate in basis points")
	minPremium := flag.Int64("min-premium", 100, "minimum premium floor")
	flag.Parse()

	if *coverage <= 0 || *duration <= 0 || *trigger == "" {
		flag.Usage()
		os.Exit(1)
	}

	triggerType := domain.TriggerType(*trigger)
	if !triggerType.Valid() {
		fmt.Fprintf(os.Stderr, "unknown trigger type %q\n", *trigger)
		os.Exit(1)
	}

	engine := pricing.NewEngine(pricing.Params{
		BaseRateBps:    *baseRate,
		MinimumPremium: *minPremium,
	}, "")

	premium := engine.CalculatePremium(*coverage, int64(duration.Seconds()), triggerType)

	fmt.Printf("coverage:  %d\n", *coverage)
	fmt.Printf("duration:  %s (%d days)\n", duration, int(duration.Hours()/24))
	fmt.Printf("trigger:   %s\n", triggerType)
	fmt.Printf("base rate: %d bps/year\n", *baseRate)
	fmt.Printf("premium:   %d\n\n", premium)

	fmt.Println("risk multiplier table:")
	for _, t := range triggerTypes {
		marker := "  "
		if t == triggerType {
			marker = "> "
		}
		fmt.Printf("%s%-19s %d%%\n", marker, t, pricing.RiskMultiplier(t))
	}
}
