package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/pkg/config"
)

func TestRootCommandWiring(t *testing.T) {
	assert.Equal(t, "netaudit", rootCmd.Use)

	expected := []string{"collect", "layers", "version"}
	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %s not registered", name)
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestCollectCommandFlags(t *testing.T) {
	cmd := newCollectCmd()

	for _, flag := range []string{"layers", "max-connections", "output", "no-report"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag --%s not defined", flag)
	}

	// Inventory file is mandatory
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"fleet.csv"}))
}

func TestLayersCommand(t *testing.T) {
	cfg = config.GetDefaults()

	cmd := newLayersCmd()
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
}

func TestWriteReport(t *testing.T) {
	report := &domain.RunReport{
		StartedAt: time.Now(),
		Layers:    []string{"health"},
		Devices: map[string]*domain.DeviceReport{
			"pe-1": {Hostname: "pe-1", Platform: "cisco_iosxr"},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "run-report.json")
	require.NoError(t, writeReport(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domain.RunReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"health"}, decoded.Layers)
	assert.Contains(t, decoded.Devices, "pe-1")
}
