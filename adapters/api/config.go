package api

import "time"

// APIDataSource describes a remote JSON document holding observations
type APIDataSource struct {
	URL        string            `json:"url"`
	DataPath   string            `json:"data_path"` // gjson path to the observation array
	Headers    map[string]string `json:"headers"`
	AuthMethod string            `json:"auth_method"` // "bearer", "api_key", or empty
	AuthToken  string            `json:"auth_token"`
	Timeout    time.Duration     `json:"timeout"`
}

// DefaultTimeout bounds a fetch when the source sets none.
const DefaultTimeout = 60 * time.Second
