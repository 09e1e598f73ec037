package decoy

import "encoding/json"

// Sequence is a fabricated nucleotide record.
type Sequence struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
	Organism string `json:"organism"`
	Length   int    `json:"length"`
	Type     string `json:"type"`
}

// UploadResult acknowledges a sequence upload.
type UploadResult struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// EquipmentStatus is the reported state of a lab instrument.
type EquipmentStatus struct {
	EquipmentID string  `json:"equipment_id"`
	Status      string  `json:"status"`
	Temperature float64 `json:"temperature"`
	LastUsed    string  `json:"last_used"`
}

// ControlResult acknowledges an equipment command.
type ControlResult struct {
	EquipmentID string          `json:"equipment_id"`
	Command     json.RawMessage `json:"command"`
	Status      string          `json:"status"`
	Result      string          `json:"result"`
}

// Experiment is one entry of the experiment listing.
type Experiment struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Researcher string `json:"researcher"`
	Status     string `json:"status"`
	Created    string `json:"created"`
}

// ExperimentData holds measurements for a single experiment.
type ExperimentData struct {
	ExperimentID string             `json:"experiment_id"`
	DataPoints   []float64          `json:"data_points"`
	Metadata     ExperimentMetadata `json:"metadata"`
}

type ExperimentMetadata struct {
	Samples       int `json:"samples"`
	DurationHours int `json:"duration_hours"`
}

// LoginResult is returned by the authentication endpoint.
type LoginResult struct {
	Status      string   `json:"status"`
	Token       string   `json:"token"`
	User        string   `json:"user"`
	Permissions []string `json:"permissions"`
}
