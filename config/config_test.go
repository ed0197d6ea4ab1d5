package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	got := withDefaults(Config{})
	def := Default()

	assert.Equal(t, def.IntervalSec, got.IntervalSec)
	assert.Equal(t, def.HistoryCap, got.HistoryCap)
	assert.Equal(t, def.EventCap, got.EventCap)
	assert.Equal(t, def.DeepHangAfterSec, got.DeepHangAfterSec)
	assert.Equal(t, def.DumpHangAfterSec, got.DumpHangAfterSec)
	assert.Equal(t, def.DeepCooldownSec, got.DeepCooldownSec)
	assert.Equal(t, def.DumpCooldownSec, got.DumpCooldownSec)
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	got := withDefaults(Config{
		IntervalSec: 10,
		HistoryCap:  500,
		RecordDB:    "session.db",
		Debug:       true,
	})

	assert.Equal(t, 10, got.IntervalSec)
	assert.Equal(t, 500, got.HistoryCap)
	assert.Equal(t, "session.db", got.RecordDB)
	assert.True(t, got.Debug)
	// Unset fields still get defaults.
	assert.Equal(t, Default().EventCap, got.EventCap)
}

func TestWithDefaultsRejectsNegatives(t *testing.T) {
	got := withDefaults(Config{IntervalSec: -5, HistoryCap: -1})
	assert.Equal(t, Default().IntervalSec, got.IntervalSec)
	assert.Equal(t, Default().HistoryCap, got.HistoryCap)
}

func TestInterval(t *testing.T) {
	cfg := Config{IntervalSec: 7}
	assert.Equal(t, 7*time.Second, cfg.Interval())
}
