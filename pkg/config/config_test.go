package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BAOFLOW_APP_ENV", "dev")
	t.Setenv("BAOFLOW_APP_PORT", "8080")
	t.Setenv("BAOFLOW_DB_DSN", "postgres://localhost/baoflow_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env")
	}
	if !cfg.Rates.DefaultRate.Equal(decimal.NewFromInt(155)) {
		t.Fatalf("unexpected default rate %s", cfg.Rates.DefaultRate)
	}
	if cfg.Rates.TargetCurrency != "JPY" {
		t.Fatalf("unexpected target currency %s", cfg.Rates.TargetCurrency)
	}
	if !cfg.Fees.BankTransferFee.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected bank fee %s", cfg.Fees.BankTransferFee)
	}
	if !cfg.Billing.TaxRatePercent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected tax rate %s", cfg.Billing.TaxRatePercent)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BAOFLOW_RATES_DEFAULT_RATE", "148.5")
	t.Setenv("BAOFLOW_FEES_CARD_RATE", "0.029")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Rates.DefaultRate.Equal(decimal.RequireFromString("148.5")) {
		t.Fatalf("rate override lost: %s", cfg.Rates.DefaultRate)
	}
	if !cfg.Fees.CardFeeRate.Equal(decimal.RequireFromString("0.029")) {
		t.Fatalf("card rate override lost: %s", cfg.Fees.CardFeeRate)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BAOFLOW_APP_ENV", "")
	t.Setenv("BAOFLOW_APP_PORT", "")
	t.Setenv("BAOFLOW_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing required config")
	}
}
