package types

import "time"

// RunEvent is published on the report topic once a pipeline run completes.
type RunEvent struct {
	Run_id       string    `json:"run_id" validate:"required,uuid"`
	Mode         string    `json:"mode" validate:"required,oneof=raw report"`
	Year_start   int       `json:"year_start" validate:"required"`
	Year_end     int       `json:"year_end" validate:"required,gtefield=Year_start"`
	Files        []string  `json:"files"`
	Missed_years []int     `json:"missed_years"`
	Empty        bool      `json:"empty"`
	Raw_rows     int       `json:"raw_rows" validate:"gte=0"`
	Clean_rows   int       `json:"clean_rows" validate:"gte=0,ltefield=Raw_rows"`
	Table        string    `json:"table,omitempty"`
	Artifacts    []string  `json:"artifacts,omitempty"`
	Finished_at  time.Time `json:"finished_at" validate:"required"`
}
