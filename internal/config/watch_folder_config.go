package config

import "strings"

// APIConfig describes the endpoint notified after a file is ingested.
// An empty URL disables notification for the folder.
type APIConfig struct {
	URL    string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,httpmethod"`
}

// Enabled reports whether a notification target is configured.
func (a APIConfig) Enabled() bool {
	return strings.TrimSpace(a.URL) != ""
}

// HTTPMethod returns the upper-cased verb, defaulting to POST.
func (a APIConfig) HTTPMethod() string {
	if strings.TrimSpace(a.Method) == "" {
		return DefaultAPIMethod
	}
	return strings.ToUpper(strings.TrimSpace(a.Method))
}

// WatchFolderConfig pairs an input directory with its output directory.
type WatchFolderConfig struct {
	InPath  string    `json:"in_path" yaml:"in_path" validate:"required"`
	OutPath string    `json:"out_path" yaml:"out_path" validate:"required,nefield=InPath"`
	Source  string    `json:"source" yaml:"source" validate:"required,max=100"`
	API     APIConfig `json:"api,omitempty" yaml:"api,omitempty"`
}
