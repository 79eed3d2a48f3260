package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.HeatShare = 0.3
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.ElectricityShare, p.HeatShare = 1.2, -0.2
	assert.Error(t, p.Validate())
}

func TestPolicyFromEnv(t *testing.T) {
	t.Setenv("GREENSTAMP_REPORT_ELECTRICITY_SHARE", "0.6")
	t.Setenv("GREENSTAMP_REPORT_HEAT_SHARE", "0.4")
	t.Setenv("GREENSTAMP_REPORT_ASSURANCE", "Limited assurance")

	p, err := PolicyFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0.6, p.ElectricityShare)
	assert.Equal(t, 0.4, p.HeatShare)
	assert.Equal(t, "Limited assurance", p.Assurance)

	t.Setenv("GREENSTAMP_REPORT_HEAT_SHARE", "abc")
	_, err = PolicyFromEnv()
	assert.Error(t, err)
}
