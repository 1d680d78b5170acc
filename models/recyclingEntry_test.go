package models

import (
	"testing"
)

func TestComputeRecyclingFiguresPP(t *testing.T) {
	remelted, receivable, recoveryPercent := ComputeRecyclingFigures(dec("100"), dec("60.5"), dec("50"))

	requireEqual(t, "remelted_lead_kg", remelted, dec("60.50"))
	requireEqual(t, "receivable_kg", receivable, dec("10.50"))
	requireEqual(t, "recovery_percent", recoveryPercent, dec("50.00"))
}

func TestComputeRecyclingFiguresZeroBatteryKg(t *testing.T) {
	remelted, receivable, recoveryPercent := ComputeRecyclingFigures(dec("0"), dec("58"), dec("0"))

	requireEqual(t, "remelted_lead_kg", remelted, dec("0"))
	requireEqual(t, "receivable_kg", receivable, dec("0"))
	requireEqual(t, "recovery_percent", recoveryPercent, dec("0"))
}

func TestComputeRecyclingFiguresNothingReceivedYet(t *testing.T) {
	remelted, receivable, recoveryPercent := ComputeRecyclingFigures(dec("200"), dec("58"), dec("0"))

	requireEqual(t, "remelted_lead_kg", remelted, dec("116"))
	requireEqual(t, "receivable_kg", receivable, dec("116"))
	requireEqual(t, "recovery_percent", recoveryPercent, dec("0"))
}

// Over-delivery pushes the batch receivable negative; the aggregate ledger
// clamp handles it, the per-batch figure keeps the raw value.
func TestComputeRecyclingFiguresOverDelivery(t *testing.T) {
	_, receivable, _ := ComputeRecyclingFigures(dec("100"), dec("60.5"), dec("70"))

	requireEqual(t, "receivable_kg", receivable, dec("-9.5"))
}

func TestRecoverySettingsRateFor(t *testing.T) {
	settings := defaultRecoverySettings()

	requireEqual(t, "pp rate", settings.RateFor(BatteryTypePP), dec("60.5"))
	requireEqual(t, "mc_smf rate", settings.RateFor(BatteryTypeMcSmf), dec("58.0"))
}

func TestParseBatteryType(t *testing.T) {
	if _, err := ParseBatteryType("PP"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseBatteryType("MC_SMF"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseBatteryType("LiIon"); err == nil {
		t.Fatal("unknown battery type must be rejected")
	}
}
