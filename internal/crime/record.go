// Package crime defines the police-recorded crime record schema shared by every pipeline stage.
package crime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Column names as they appear in the published street-level crime files.
const (
	ColCrimeID   = "Crime ID"
	ColMonth     = "Month"
	ColReported  = "Reported by"
	ColForce     = "Falls within"
	ColLongitude = "Longitude"
	ColLatitude  = "Latitude"
	ColLocation  = "Location"
	ColLSOACode  = "LSOA code"
	ColLSOAName  = "LSOA name"
	ColCrimeType = "Crime type"
	ColOutcome   = "Last outcome category"
	ColContext   = "Context"
)

// coreColumns are decoded into typed Record fields instead of Record.Fields.
var coreColumns = map[string]bool{
	ColMonth:     true,
	ColForce:     true,
	ColLongitude: true,
	ColLatitude:  true,
	ColCrimeType: true,
	ColOutcome:   true,
}

// IsCoreColumn reports whether a header maps to a typed Record field.
func IsCoreColumn(name string) bool { return coreColumns[name] }

// Coord is a nullable coordinate.
type Coord struct {
	Value float64
	Valid bool
}

// Some returns a valid coordinate.
func Some(v float64) Coord { return Coord{Value: v, Valid: true} }

// Month is a calendar year-month. Raw keeps the source text until the cleaner parses it.
type Month struct {
	Year  int
	Month time.Month
	Raw   string
}

// Parsed reports whether the month has been decoded into Year/Month.
func (m Month) Parsed() bool { return m.Year != 0 && m.Month >= time.January && m.Month <= time.December }

// Key returns the canonical "YYYY-MM" form.
func (m Month) Key() string {
	if !m.Parsed() {
		return m.Raw
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) String() string { return m.Key() }

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseMonth decodes a "YYYY-MM" value.
func ParseMonth(s string) (Month, error) {
	m := monthPattern.FindStringSubmatch(s)
	if m == nil {
		return Month{Raw: s}, &FormatError{Value: s, Row: -1}
	}
	year, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	if year == 0 || mon < 1 || mon > 12 {
		return Month{Raw: s}, &FormatError{Value: s, Row: -1}
	}
	return Month{Year: year, Month: time.Month(mon), Raw: s}, nil
}

// Record is one crime incident.
type Record struct {
	Month     Month
	Force     string
	CrimeType string
	Longitude Coord
	Latitude  Coord
	// Outcome is empty when the source left the category blank.
	Outcome string
	// Fields holds every non-core column present for this row. A missing key is a null cell.
	Fields map[string]string
}

// Field returns a non-core column value and whether it was present.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a deep copy so filtered datasets never alias their source.
func (r Record) Clone() Record {
	c := r
	if r.Fields != nil {
		c.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			c.Fields[k] = v
		}
	}
	return c
}

// Dataset is an ordered collection of records plus the union of source columns.
type Dataset struct {
	Columns []string
	Records []Record
	// Cleaned is set by the cleaner. Columns it dropped are not expected again.
	Cleaned bool
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether name is part of the column set.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
		Cleaned: d.Cleaned,
	}
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Subset returns a new dataset with the same columns and copies of the selected records.
func (d *Dataset) Subset(keep func(Record) bool) *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...), Cleaned: d.Cleaned}
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r.Clone())
		}
	}
	return out
}
