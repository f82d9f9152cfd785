// Package inventory loads the device list the orchestrator runs against.
// Two formats: CSV (hostname,platform,username,password,port) and YAML
// (a devices list).
package inventory

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
)

// yamlInventory is the YAML file shape
type yamlInventory struct {
	Devices []domain.Device `yaml:"devices"`
}

// Load reads devices from path, dispatching on the file extension. Devices
// without an explicit platform get defaultPlatform; when that is empty too,
// the device is rejected.
func Load(path, defaultPlatform string) ([]domain.Device, error) {
	var devices []domain.Device
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		devices, err = loadCSV(path)
	case ".yaml", ".yml":
		devices, err = loadYAML(path)
	default:
		return nil, &apperrors.InventoryError{Path: path,
			Err: fmt.Errorf("unsupported format %q (want .csv, .yaml or .yml)", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	return validate(path, devices, defaultPlatform)
}

func loadYAML(path string) ([]domain.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.InventoryError{Path: path, Err: err}
	}

	var inv yamlInventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, &apperrors.InventoryError{Path: path, Err: err}
	}

	return inv.Devices, nil
}

// csv column order; header row required
var csvColumns = []string{"hostname", "platform", "username", "password", "port"}

func loadCSV(path string) ([]domain.Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &apperrors.InventoryError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // port column is optional per row

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &apperrors.InventoryError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &apperrors.InventoryError{Path: path, Err: apperrors.ErrEmptyInventory}
	}

	header := records[0]
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), csvColumns[0]) {
		return nil, &apperrors.InventoryError{Path: path, Line: 1,
			Err: fmt.Errorf("missing header row (want %s)", strings.Join(csvColumns, ","))}
	}

	devices := make([]domain.Device, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		dev := domain.Device{}

		for col, value := range record {
			value = strings.TrimSpace(value)
			if col >= len(csvColumns) {
				break
			}
			switch csvColumns[col] {
			case "hostname":
				dev.Hostname = value
			case "platform":
				dev.Platform = value
			case "username":
				dev.Username = value
			case "password":
				dev.Password = value
			case "port":
				if value == "" {
					continue
				}
				port, convErr := strconv.Atoi(value)
				if convErr != nil {
					return nil, &apperrors.InventoryError{Path: path, Line: line,
						Err: fmt.Errorf("bad port %q", value)}
				}
				dev.Port = port
			}
		}

		devices = append(devices, dev)
	}

	return devices, nil
}

func validate(path string, devices []domain.Device, defaultPlatform string) ([]domain.Device, error) {
	if len(devices) == 0 {
		return nil, &apperrors.InventoryError{Path: path, Err: apperrors.ErrEmptyInventory}
	}

	seen := make(map[string]bool, len(devices))
	for i := range devices {
		dev := &devices[i]
		if dev.Hostname == "" {
			return nil, &apperrors.InventoryError{Path: path,
				Err: fmt.Errorf("device %d has no hostname", i+1)}
		}
		if dev.Platform == "" {
			dev.Platform = defaultPlatform
		}
		if dev.Platform == "" {
			return nil, &apperrors.InventoryError{Path: path,
				Err: fmt.Errorf("device %s has no platform", dev.Hostname)}
		}
		if seen[dev.Hostname] {
			return nil, &apperrors.InventoryError{Path: path,
				Err: fmt.Errorf("duplicate device %s", dev.Hostname)}
		}
		seen[dev.Hostname] = true

		if dev.Port == 0 {
			dev.Port = 22
		}
	}

	return devices, nil
}
