package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLayerResult_Record(t *testing.T) {
	r := NewLayerResult("pe-1", "cisco_iosxr", "bgp")

	r.Record(CommandResult{Command: "show bgp summary", Success: true, Output: "ok"})
	r.Record(CommandResult{Command: "show bgp neighbors", Success: false, Error: "timed out"})

	assert.Equal(t, 1, r.SuccessCount())
	assert.Equal(t, 1, r.FailureCount())
	assert.Equal(t, []string{"show bgp summary"}, r.CommandsExecuted)
	assert.Equal(t, []string{"show bgp neighbors"}, r.CommandsFailed)
	assert.Len(t, r.Data, 2)
}

func TestLayerResult_SuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		ok       int
		failed   int
		expected float64
	}{
		{"empty layer is zero not NaN", 0, 0, 0},
		{"all succeed", 4, 0, 100},
		{"all fail", 0, 4, 0},
		{"two thirds", 2, 1, 66.66666666666666},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLayerResult("pe-1", "cisco_iosxr", "health")
			for i := 0; i < tt.ok; i++ {
				r.CommandsExecuted = append(r.CommandsExecuted, "ok")
			}
			for i := 0; i < tt.failed; i++ {
				r.CommandsFailed = append(r.CommandsFailed, "bad")
			}

			rate := r.SuccessRate()
			assert.InDelta(t, tt.expected, rate, 0.0001)
			assert.GreaterOrEqual(t, rate, 0.0)
			assert.LessOrEqual(t, rate, 100.0)
		})
	}
}

func TestTotals(t *testing.T) {
	r := NewLayerResult("pe-1", "cisco_iosxr", "igp")
	r.Record(CommandResult{Command: "show isis adjacency", Success: true})
	r.Record(CommandResult{Command: "show isis interface", Success: false})

	var totals Totals
	totals.Add(r)

	assert.Equal(t, Totals{Commands: 2, Succeeded: 1, Failed: 1}, totals)

	totals.Merge(Totals{Commands: 3, Succeeded: 3})
	assert.Equal(t, Totals{Commands: 5, Succeeded: 4, Failed: 1}, totals)
}

func TestConnectionConfig_Identity(t *testing.T) {
	a := ConnectionConfig{Hostname: "pe-1", DeviceType: "cisco_iosxr", Username: "audit", Password: "x"}
	b := ConnectionConfig{Hostname: "pe-1", DeviceType: "cisco_iosxr", Username: "audit", Password: "y", Port: 2222}

	// Password and port do not participate in identity
	assert.Equal(t, a.Key(), b.Key())

	c := ConnectionConfig{Hostname: "pe-1", DeviceType: "cisco_iosxr", Username: "other"}
	assert.NotEqual(t, a.Key(), c.Key())

	assert.Equal(t, "pe-1/cisco_iosxr/audit", a.Key().String())
}

func TestConnectionConfig_Normalize(t *testing.T) {
	cfg := ConnectionConfig{Hostname: "pe-1"}.Normalize()

	assert.Equal(t, 22, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "pe-1:22", cfg.Address())

	custom := ConnectionConfig{Hostname: "pe-1", Port: 2022, Timeout: time.Second}.Normalize()
	assert.Equal(t, 2022, custom.Port)
	assert.Equal(t, time.Second, custom.Timeout)
}
