package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// ErrMalformedCSV is returned when a snapshot file does not follow the case
// export layout.
var ErrMalformedCSV = errors.New("malformed case csv")

// Header is the column layout of the case export.
var Header = []string{
	"case_id", "report_date", "region", "latitude", "longitude",
	"species", "syndrome", "severity", "status", "animals_affected",
}

// WriteCSV writes records with a header row. Dates are YYYY-MM-DD and
// coordinates carry four decimals.
func WriteCSV(w io.Writer, records []domain.CaseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.CaseID,
			r.ReportDate.Format(domain.DateLayout),
			r.Region,
			strconv.FormatFloat(r.Latitude, 'f', 4, 64),
			strconv.FormatFloat(r.Longitude, 'f', 4, 64),
			r.Species,
			r.Syndrome,
			string(r.Severity),
			string(r.Status),
			strconv.Itoa(r.AnimalsAffected),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.CaseID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses a case export. The header must match [Header] exactly;
// any malformed row fails the whole read with its line number.
func ReadCSV(r io.Reader) ([]domain.CaseRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformedCSV, head)
	}

	var records []domain.CaseRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (domain.CaseRecord, error) {
	date, err := domain.ParseDate(row[1])
	if err != nil {
		return domain.CaseRecord{}, err
	}
	lat, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return domain.CaseRecord{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return domain.CaseRecord{}, fmt.Errorf("longitude: %w", err)
	}
	severity, err := domain.ParseSeverity(row[7])
	if err != nil {
		return domain.CaseRecord{}, err
	}
	status, err := domain.ParseStatus(row[8])
	if err != nil {
		return domain.CaseRecord{}, err
	}
	affected, err := strconv.Atoi(row[9])
	if err != nil {
		return domain.CaseRecord{}, fmt.Errorf("animals_affected: %w", err)
	}
	if affected <= 0 {
		return domain.CaseRecord{}, fmt.Errorf("animals_affected must be positive, got %d", affected)
	}

	return domain.CaseRecord{
		CaseID:          row[0],
		ReportDate:      date,
		Region:          row[2],
		Latitude:        lat,
		Longitude:       lon,
		Species:         row[5],
		Syndrome:        row[6],
		Severity:        severity,
		Status:          status,
		AnimalsAffected: affected,
	}, nil
}
