package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the wire format for report dates in JSON, CSV and query strings.
const DateLayout = "2006-01-02"

// Severity is the ordinal urgency classification of a case.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical}

// Rank returns the position of s in the severity ordering, or -1 if unknown.
func (s Severity) Rank() int { return slices.Index(Severities, s) }

// ParseSeverity matches a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	s = strings.TrimSpace(s)
	for _, v := range Severities {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Status is the investigation state of a case.
type Status string

const (
	StatusActive             Status = "Active"
	StatusResolved           Status = "Resolved"
	StatusUnderInvestigation Status = "Under Investigation"
)

// Statuses lists every status in catalog order.
var Statuses = []Status{StatusActive, StatusResolved, StatusUnderInvestigation}

// ParseStatus matches a status name case-insensitively. Underscores are
// accepted in place of spaces so "under_investigation" works in query strings.
func ParseStatus(s string) (Status, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	for _, v := range Statuses {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CaseRecord is one synthetic surveillance event.
type CaseRecord struct {
	CaseID          string
	ReportDate      time.Time // midnight UTC
	Region          string
	Latitude        float64
	Longitude       float64
	Species         string
	Syndrome        string
	Severity        Severity
	Status          Status
	AnimalsAffected int
}

// caseRecordJSON is the serialized form with the report date as YYYY-MM-DD.
type caseRecordJSON struct {
	CaseID          string   `json:"case_id"`
	ReportDate      string   `json:"report_date"`
	Region          string   `json:"region"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Species         string   `json:"species"`
	Syndrome        string   `json:"syndrome"`
	Severity        Severity `json:"severity"`
	Status          Status   `json:"status"`
	AnimalsAffected int      `json:"animals_affected"`
}

func (r CaseRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(caseRecordJSON{
		CaseID:          r.CaseID,
		ReportDate:      r.ReportDate.Format(DateLayout),
		Region:          r.Region,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Species:         r.Species,
		Syndrome:        r.Syndrome,
		Severity:        r.Severity,
		Status:          r.Status,
		AnimalsAffected: r.AnimalsAffected,
	})
}

func (r *CaseRecord) UnmarshalJSON(data []byte) error {
	var raw caseRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDate(raw.ReportDate)
	if err != nil {
		return err
	}
	*r = CaseRecord{
		CaseID:          raw.CaseID,
		ReportDate:      date,
		Region:          raw.Region,
		Latitude:        raw.Latitude,
		Longitude:       raw.Longitude,
		Species:         raw.Species,
		Syndrome:        raw.Syndrome,
		Severity:        raw.Severity,
		Status:          raw.Status,
		AnimalsAffected: raw.AnimalsAffected,
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// CivilDate drops the time of day, keeping the calendar date of t in its own
// location, and returns it as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}
