package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lotalloc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Promotion", cfg.Allocation.PromotionTag)
	assert.Equal(t, 15, cfg.Allocation.PromotionCutoffDay)
	assert.Equal(t, "Updated_DataFrame", cfg.Output.SheetName)
	assert.Equal(t, "02-01-2006", cfg.Output.DateLayout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
allocation:
  promotion_tag: Promo
  promotion_cutoff_day: 10
output:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Promo", cfg.Allocation.PromotionTag)
	assert.Equal(t, 10, cfg.Allocation.PromotionCutoffDay)
	assert.Equal(t, "json", cfg.Output.Format)
	// untouched sections keep defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Input.DateLayouts)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_SHEET_NAME", "Allocations")
	path := writeConfig(t, `
output:
  sheet_name: ${TEST_SHEET_NAME}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Allocations", cfg.Output.SheetName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LOTALLOC_PROMOTION_CUTOFF_DAY", "20")
	path := writeConfig(t, `
allocation:
  promotion_cutoff_day: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Allocation.PromotionCutoffDay)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"cutoff out of range", "allocation:\n  promotion_cutoff_day: 40\n"},
		{"empty tag", "allocation:\n  promotion_tag: \"\"\n"},
		{"bad format", "output:\n  format: pdf\n"},
		{"bad encoding", "input:\n  encoding: latin-9\n"},
		{"malformed yaml", "allocation: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Allocation, cfg.Allocation)
}

func TestLoadOrDefault_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("LOTALLOC_OUTPUT_FORMAT", "csv")

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)
}
