package config_test

import (
	"testing"

	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_CurrencyUnit(t *testing.T) {
	tests := []struct {
		name      string
		currency  string
		want      string
		wantError string
	}{
		{name: "rupee: ok", currency: "INR", want: "INR"},
		{name: "padded lower case: ok", currency: " usd ", want: "USD"},
		{name: "not a currency: error", currency: "XYZW", wantError: "currency[XYZW] is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := config.Config{Currency: tt.currency}.CurrencyUnit()
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, unit.String())
		})
	}
}

func TestConfig_Principal(t *testing.T) {
	cfg := config.Config{PrincipalID: " 42 ", PrincipalEmail: " buyer@example.com", PrincipalRole: "buyer"}

	p := cfg.Principal()

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "buyer@example.com", p.Email)
	assert.True(t, p.Authenticated())
}
