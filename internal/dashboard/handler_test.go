package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
)

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 10, 17, 23, 59, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, loc), monthStart(now))
}

func TestStatsApply(t *testing.T) {
	var s Stats
	s.apply([]statusTotal{
		{Status: ordertotal.StatusReceived, Total: decimal.RequireFromString("81.30"), Count: 2},
		{Status: ordertotal.StatusPending, Total: decimal.RequireFromString("45.00"), Count: 1},
	})

	assert.EqualValues(t, 3, s.TotalOrders)
	assert.EqualValues(t, 1, s.PendingOrders)
	assert.Equal(t, "81.3", s.ReceivedRevenue.String())
	assert.Equal(t, "45", s.PendingAmount.String())
}

func TestStatsApplyEmpty(t *testing.T) {
	var s Stats
	s.apply(nil)

	assert.Zero(t, s.TotalOrders)
	assert.True(t, s.ReceivedRevenue.IsZero())
}
