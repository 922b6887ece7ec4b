package fare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerovia/booking/internal/models"
)

func TestRateFor(t *testing.T) {
	rules := Default()

	tests := []struct {
		name     string
		category models.AgeCategory
		expected int64
		wantErr  bool
	}{
		{name: "adult pays full fare", category: models.AgeCategoryAdult, expected: 10000},
		{name: "child pays 75 percent", category: models.AgeCategoryChild, expected: 7500},
		{name: "infant factor exists even with flat fare enabled", category: models.AgeCategoryInfant, expected: 8000},
		{name: "unknown category is a configuration error", category: "senior", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp, err := rules.RateFor(tt.category)
			if tt.wantErr {
				require.Error(t, err)
				var configErr *ConfigError
				assert.ErrorAs(t, err, &configErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bp)
		})
	}
}

func TestSurchargeFor(t *testing.T) {
	rules := Default()

	tests := []struct {
		name     string
		kind     models.BaggageKind
		tier     int
		expected models.Cents
		wantErr  bool
	}{
		{name: "checked tier 0 is free", kind: models.BaggageKindChecked, tier: 0, expected: 0},
		{name: "checked tier 1", kind: models.BaggageKindChecked, tier: 1, expected: 3000},
		{name: "checked tier 3", kind: models.BaggageKindChecked, tier: 3, expected: 7500},
		{name: "cabin tier 2", kind: models.BaggageKindCabin, tier: 2, expected: 2500},
		{name: "tier beyond table", kind: models.BaggageKindChecked, tier: 9, wantErr: true},
		{name: "negative tier", kind: models.BaggageKindCabin, tier: -1, wantErr: true},
		{name: "unknown kind", kind: "oversized", tier: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := rules.SurchargeFor(tt.kind, tt.tier)
			if tt.wantErr {
				var configErr *ConfigError
				assert.ErrorAs(t, err, &configErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.json")
		content := `{
			"discountBasisPoints": {"adult": 10000, "child": 9000, "infant": 8000},
			"useFlatInfantFare": false,
			"infantFlatFareCents": 0,
			"checkedBaggageCents": [0, 2000],
			"cabinBaggageCents": [0, 1000],
			"insuranceFeeCents": 1500,
			"pointsPerCent": 2
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := Load(path)
		require.NoError(t, err)

		bp, err := rules.RateFor(models.AgeCategoryChild)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), bp)
		assert.False(t, rules.UseFlatInfantFare)
		assert.Equal(t, int64(2), rules.PointsPerCent)
	})

	t.Run("missing category fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.json")
		content := `{
			"discountBasisPoints": {"adult": 10000},
			"checkedBaggageCents": [0],
			"cabinBaggageCents": [0],
			"pointsPerCent": 1
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unreadable file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("default rules are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("factor above full fare rejected", func(t *testing.T) {
		rules := Default()
		rules.DiscountBasisPoints[models.AgeCategoryChild] = 10001
		assert.Error(t, rules.Validate())
	})

	t.Run("zero points rate rejected", func(t *testing.T) {
		rules := Default()
		rules.PointsPerCent = 0
		assert.Error(t, rules.Validate())
	})
}
