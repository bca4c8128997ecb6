package health

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Report is the serializable outcome of a preflight.
type Report struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Checks    []CheckReport `json:"checks,omitempty"`
}

// CheckReport is the serializable outcome of a single check.
type CheckReport struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewReport builds a report from outcomes, keeping their order.
func NewReport(outcomes []Outcome) Report {
	report := Report{
		Status:    Overall(outcomes).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make([]CheckReport, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		cr := CheckReport{
			Name:     o.Name,
			Status:   o.Status.String(),
			Message:  o.Message,
			Duration: o.Duration.Round(time.Microsecond).String(),
			Details:  o.Details,
		}
		if o.Err != nil {
			cr.Error = o.Err.Error()
		}
		report.Checks = append(report.Checks, cr)
	}
	return report
}

// Passed reports whether no check failed. Warnings pass.
func (r Report) Passed() bool {
	return r.Status != StatusFail.String()
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes one line per check followed by the overall status.
func (r Report) WriteText(w io.Writer) error {
	for _, c := range r.Checks {
		line := fmt.Sprintf("%-10s %-5s %s", c.Name, c.Status, c.Message)
		if c.Error != "" {
			line += ": " + c.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "overall: %s\n", r.Status)
	return err
}
