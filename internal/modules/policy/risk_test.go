package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAssessRisk_ReturningClientFarOut(t *testing.T) {
	history := new(MockHistory)
	history.On("HasPriorCompletedBooking", mock.Anything, int64(42)).Return(true, nil)
	history.On("CountCancellations", mock.Anything, int64(42)).Return(int64(0), nil)

	svc := NewService(testConfig(), history)

	a, err := svc.AssessRisk(context.Background(), testLead(), time.Now().Add(96*time.Hour), "10115")

	require.NoError(t, err)
	assert.Equal(t, RiskLow, a.Band)
	assert.False(t, a.RequiresDeposit)
	assert.Empty(t, a.Reasons)
}

func TestAssessRisk_NewClientShortNotice(t *testing.T) {
	history := new(MockHistory)
	history.On("HasPriorCompletedBooking", mock.Anything, int64(42)).Return(false, nil)
	history.On("CountCancellations", mock.Anything, int64(42)).Return(int64(0), nil)

	svc := NewService(testConfig(), history)

	a, err := svc.AssessRisk(context.Background(), testLead(), time.Now().Add(6*time.Hour), "10115")

	require.NoError(t, err)
	assert.Equal(t, RiskMedium, a.Band)
	assert.False(t, a.RequiresDeposit)
	assert.Equal(t, []string{"risk_medium"}, a.Reasons)
}

func TestAssessRisk_RepeatCancellerGoesHigh(t *testing.T) {
	history := new(MockHistory)
	history.On("HasPriorCompletedBooking", mock.Anything, int64(42)).Return(false, nil)
	history.On("CountCancellations", mock.Anything, int64(42)).Return(int64(3), nil)

	svc := NewService(testConfig(), history)

	a, err := svc.AssessRisk(context.Background(), testLead(), time.Now().Add(96*time.Hour), "10115")

	require.NoError(t, err)
	assert.Equal(t, RiskHigh, a.Band)
	assert.True(t, a.RequiresDeposit)
	assert.Equal(t, []string{"risk_high"}, a.Reasons)
}

func TestAssessRisk_HighRiskPostalPrefix(t *testing.T) {
	history := new(MockHistory)
	history.On("HasPriorCompletedBooking", mock.Anything, int64(42)).Return(false, nil)
	history.On("CountCancellations", mock.Anything, int64(42)).Return(int64(0), nil)

	cfg := testConfig()
	cfg.HighRiskPostalPrefixes = []string{"101"}
	svc := NewService(cfg, history)

	a, err := svc.AssessRisk(context.Background(), testLead(), time.Now().Add(96*time.Hour), "10115")

	require.NoError(t, err)
	assert.Equal(t, RiskMedium, a.Band)
}

func TestRiskBand_Ordering(t *testing.T) {
	assert.True(t, RiskLow < RiskMedium)
	assert.True(t, RiskMedium < RiskHigh)
	assert.Equal(t, "high", RiskHigh.String())
	assert.Equal(t, "medium", RiskMedium.String())
	assert.Equal(t, "low", RiskLow.String())
}
