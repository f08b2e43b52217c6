package dto

import "time"

// JobRunResponse is returned by the manual job triggers
type JobRunResponse struct {
	Job      string    `json:"job"`
	Started  time.Time `json:"started_at"`
	Finished time.Time `json:"finished_at"`
	Success  bool      `json:"success"`
	Result   any       `json:"result,omitempty"`
	Error    string    `json:"error,omitempty"`
}
