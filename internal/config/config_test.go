package config

import "testing"

func TestClampYieldMs(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinYieldMs},
		{-50, MinYieldMs},
		{MinYieldMs, MinYieldMs},
		{5000, 5000},
		{MaxYieldMs, MaxYieldMs},
		{1000000, MaxYieldMs},
	}
	for _, tt := range tests {
		if got := ClampYieldMs(tt.in); got != tt.want {
			t.Errorf("ClampYieldMs(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampMaxOutputChars(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinMaxOutputChars},
		{MinMaxOutputChars, MinMaxOutputChars},
		{50000, 50000},
		{MaxMaxOutputChars, MaxMaxOutputChars},
		{1000000, MaxMaxOutputChars},
	}
	for _, tt := range tests {
		if got := ClampMaxOutputChars(tt.in); got != tt.want {
			t.Errorf("ClampMaxOutputChars(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFromEnvDefaultsWhenUnset(t *testing.T) {
	t.Setenv(EnvYieldMs, "")
	t.Setenv(EnvMaxOutputChars, "")

	cfg := FromEnv()
	if cfg.YieldMs != DefaultYieldMs {
		t.Errorf("YieldMs = %d, want %d", cfg.YieldMs, DefaultYieldMs)
	}
	if cfg.MaxOutputChars != DefaultMaxOutputChars {
		t.Errorf("MaxOutputChars = %d, want %d", cfg.MaxOutputChars, DefaultMaxOutputChars)
	}
}

func TestFromEnvReadsAndClamps(t *testing.T) {
	t.Setenv(EnvYieldMs, "5")
	t.Setenv(EnvMaxOutputChars, "999999")

	cfg := FromEnv()
	if cfg.YieldMs != MinYieldMs {
		t.Errorf("YieldMs = %d, want clamped to %d", cfg.YieldMs, MinYieldMs)
	}
	if cfg.MaxOutputChars != MaxMaxOutputChars {
		t.Errorf("MaxOutputChars = %d, want clamped to %d", cfg.MaxOutputChars, MaxMaxOutputChars)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv(EnvYieldMs, "not-a-number")

	cfg := FromEnv()
	if cfg.YieldMs != DefaultYieldMs {
		t.Errorf("YieldMs = %d, want default %d on invalid input", cfg.YieldMs, DefaultYieldMs)
	}
}
