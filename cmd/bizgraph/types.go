package main

import "github.com/matsen/bizgraph/internal/palette"

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RenderResponse is printed by render when the drawing goes to a file.
type RenderResponse struct {
	Output  string `json:"output"`
	Format  string `json:"format"`
	Nodes   int    `json:"nodes"`
	Links   int    `json:"links"`
	Dropped int    `json:"dropped"`
	Ticks   int    `json:"ticks"`
}

// LegendResponse is the output of the legend command.
type LegendResponse struct {
	Entries []palette.Entry `json:"entries"`
}

// ConfigResponse is the output of the config command.
type ConfigResponse struct {
	Path         string  `json:"path"`
	DataURL      string  `json:"data_url,omitempty"`
	BaseURL      string  `json:"base_url,omitempty"`
	FullURL      string  `json:"full_url,omitempty"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Ticks        int     `json:"ticks"`
	TickRate     float64 `json:"tick_rate"`
	Seed         uint64  `json:"seed"`
	Addr         string  `json:"addr"`
	PollInterval string  `json:"poll_interval"`
	FetchRate    float64 `json:"fetch_rate"`
	FetchTimeout string  `json:"fetch_timeout"`
	GlyphWidth   float64 `json:"glyph_width"`
	Debug        bool    `json:"debug"`
}

// UpdateResponse is the output of config set.
type UpdateResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}
