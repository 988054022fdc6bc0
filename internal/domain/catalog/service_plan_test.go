package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPlan(t *testing.T) *ServicePlan {
	plan, err := NewServicePlan("Home Basic", PlanTypePPPoE, decimal.NewFromFloat(2500.00), "10Mbps/5Mbps")
	require.NoError(t, err)
	return plan
}

func TestNewServicePlan(t *testing.T) {
	plan := createTestPlan(t)

	assert.Equal(t, "Home Basic", plan.Name)
	assert.Equal(t, PlanTypePPPoE, plan.Type)
	assert.True(t, plan.IsActive)
	assert.Len(t, plan.GetDomainEvents(), 1)
}

func TestNewServicePlan_DefaultSpeed(t *testing.T) {
	plan, err := NewServicePlan("Hotspot Daily", PlanTypeHotspot, decimal.NewFromFloat(50), "")

	require.NoError(t, err)
	assert.Equal(t, "10Mbps/5Mbps", plan.Speed)
}

func TestNewServicePlan_Validation(t *testing.T) {
	tests := []struct {
		name     string
		planName string
		planType PlanType
		price    float64
	}{
		{"empty name", "", PlanTypePPPoE, 1000},
		{"blank name", "  ", PlanTypePPPoE, 1000},
		{"bad type", "Basic", PlanType("satellite"), 1000},
		{"negative price", "Basic", PlanTypePPPoE, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServicePlan(tt.planName, tt.planType, decimal.NewFromFloat(tt.price), "")
			assert.Error(t, err)
		})
	}
}

func TestServicePlan_Update(t *testing.T) {
	plan := createTestPlan(t)

	err := plan.Update("Home Plus", "20Mbps/10Mbps", "100GB", "Upgraded home plan")

	require.NoError(t, err)
	assert.Equal(t, "Home Plus", plan.Name)
	assert.Equal(t, "20Mbps/10Mbps", plan.Speed)
	assert.Equal(t, "100GB", plan.DataLimit)
}

func TestServicePlan_Update_KeepsSpeedWhenEmpty(t *testing.T) {
	plan := createTestPlan(t)

	require.NoError(t, plan.Update("Home Basic", "", "", ""))

	assert.Equal(t, "10Mbps/5Mbps", plan.Speed)
}

func TestServicePlan_ChangePrice(t *testing.T) {
	plan := createTestPlan(t)

	err := plan.ChangePrice(decimal.NewFromFloat(3000.00))

	require.NoError(t, err)
	assert.True(t, plan.Price.Equal(decimal.NewFromFloat(3000.00)))
	assert.Len(t, plan.GetDomainEvents(), 2)
}

func TestServicePlan_ChangePrice_RejectsNegative(t *testing.T) {
	plan := createTestPlan(t)

	assert.Error(t, plan.ChangePrice(decimal.NewFromFloat(-100)))
	assert.True(t, plan.Price.Equal(decimal.NewFromFloat(2500.00)))
}

func TestServicePlan_ActivateDeactivate(t *testing.T) {
	plan := createTestPlan(t)

	plan.Deactivate()
	assert.False(t, plan.IsActive)

	plan.Activate()
	assert.True(t, plan.IsActive)
}
