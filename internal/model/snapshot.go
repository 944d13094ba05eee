package model

import "time"

// Snapshot is the backup format written by export and read by import.
// Dates are kept as ISO strings so the file stays readable in both JSON and
// YAML.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Cultivars  []CultivarRecord `json:"cultivars" yaml:"cultivars"`
	CareLogs   []CareLogRecord  `json:"care_logs" yaml:"care_logs"`
}

type CultivarRecord struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	FlowerColor     string `json:"flower_color,omitempty" yaml:"flower_color,omitempty"`
	LeafDescription string `json:"leaf_description,omitempty" yaml:"leaf_description,omitempty"`
	AcquisitionDate string `json:"acquisition_date,omitempty" yaml:"acquisition_date,omitempty"`
	LightLevel      string `json:"light_level,omitempty" yaml:"light_level,omitempty"`
	SoilMix         string `json:"soil_mix,omitempty" yaml:"soil_mix,omitempty"`
	Notes           string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type CareLogRecord struct {
	ID          string `json:"id" yaml:"id"`
	CultivarID  string `json:"cultivar_id" yaml:"cultivar_id"`
	PerformedOn string `json:"performed_on" yaml:"performed_on"`
	Action      string `json:"action" yaml:"action"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
