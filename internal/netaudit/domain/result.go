package domain

import "time"

// CommandResult holds the outcome of a single command execution. Once
// returned it belongs to the caller; nothing in the pool retains it.
type CommandResult struct {
	Command  string        `json:"command"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
}

// LayerResult is the per-(device, layer, run) collection record
type LayerResult struct {
	Hostname         string                   `json:"hostname"`
	Platform         string                   `json:"platform"`
	Layer            string                   `json:"layer"`
	Timestamp        time.Time                `json:"timestamp"`
	CommandsExecuted []string                 `json:"commands_executed"`
	CommandsFailed   []string                 `json:"commands_failed"`
	Data             map[string]CommandResult `json:"data"`
	// Parsed holds the parsing collaborator's structured view per command
	Parsed map[string]map[string]interface{} `json:"parsed,omitempty"`
	Facts  map[string]interface{}            `json:"facts,omitempty"`
}

// NewLayerResult creates an empty result for one device/layer pass
func NewLayerResult(hostname, platform, layer string) *LayerResult {
	return &LayerResult{
		Hostname:  hostname,
		Platform:  platform,
		Layer:     layer,
		Timestamp: time.Now(),
		Data:      make(map[string]CommandResult),
		Parsed:    make(map[string]map[string]interface{}),
		Facts:     make(map[string]interface{}),
	}
}

// Record files one command outcome into the result
func (r *LayerResult) Record(res CommandResult) {
	r.Data[res.Command] = res
	if res.Success {
		r.CommandsExecuted = append(r.CommandsExecuted, res.Command)
	} else {
		r.CommandsFailed = append(r.CommandsFailed, res.Command)
	}
}

// SuccessCount returns the number of commands that succeeded
func (r *LayerResult) SuccessCount() int {
	return len(r.CommandsExecuted)
}

// FailureCount returns the number of commands that failed
func (r *LayerResult) FailureCount() int {
	return len(r.CommandsFailed)
}

// SuccessRate returns success percentage in [0,100]. An empty layer is 0,
// never NaN.
func (r *LayerResult) SuccessRate() float64 {
	total := r.SuccessCount() + r.FailureCount()
	if total == 0 {
		return 0
	}
	return float64(r.SuccessCount()) / float64(total) * 100
}

// Totals aggregates command counts across layers or devices
type Totals struct {
	Commands  int `json:"commands"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Add folds one layer result into the totals
func (t *Totals) Add(r *LayerResult) {
	t.Commands += r.SuccessCount() + r.FailureCount()
	t.Succeeded += r.SuccessCount()
	t.Failed += r.FailureCount()
}

// Merge folds another totals value in
func (t *Totals) Merge(other Totals) {
	t.Commands += other.Commands
	t.Succeeded += other.Succeeded
	t.Failed += other.Failed
}

// DeviceReport is the per-device aggregate produced by the orchestrator
type DeviceReport struct {
	Hostname   string                  `json:"hostname"`
	Platform   string                  `json:"platform"`
	Down       bool                    `json:"down"`
	DownReason string                  `json:"down_reason,omitempty"`
	Layers     map[string]*LayerResult `json:"layers,omitempty"`
	Totals     Totals                  `json:"totals"`
	Elapsed    time.Duration           `json:"elapsed"`
}

// RunReport is the whole-run aggregate handed to reporting
type RunReport struct {
	StartedAt   time.Time                `json:"started_at"`
	Elapsed     time.Duration            `json:"elapsed"`
	Layers      []string                 `json:"layers"`
	Devices     map[string]*DeviceReport `json:"devices"`
	DownDevices []string                 `json:"down_devices,omitempty"`
	Totals      Totals                   `json:"totals"`
}
