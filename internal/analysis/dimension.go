package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Dimension is a categorical grouping key derived from a record.
type Dimension string

const (
	DimForce     Dimension = "force"
	DimCrimeType Dimension = "crime_type"
	DimOutcome   Dimension = "outcome"
	DimMonth     Dimension = "month"
	DimYear      Dimension = "year"
	DimMonthNum  Dimension = "month_num"

	// Derived dimensions label computed rows; they do not read from records.
	DimCellLon  Dimension = "cell_lon"
	DimCellLat  Dimension = "cell_lat"
	DimQuadrant Dimension = "quadrant"
)

// Value extracts the dimension's key from r.
func (d Dimension) Value(r crime.Record) string {
	switch d {
	case DimForce:
		return r.Force
	case DimCrimeType:
		return r.CrimeType
	case DimOutcome:
		return r.Outcome
	case DimMonth:
		return r.Month.Key()
	case DimYear:
		if !r.Month.Parsed() {
			return ""
		}
		return strconv.Itoa(r.Month.Year)
	case DimMonthNum:
		if !r.Month.Parsed() {
			return ""
		}
		return strconv.Itoa(int(r.Month.Month))
	default:
		return ""
	}
}

// Label is the human heading for the dimension.
func (d Dimension) Label() string {
	switch d {
	case DimForce:
		return "Police Force"
	case DimCrimeType:
		return "Crime Type"
	case DimOutcome:
		return "Last Outcome"
	case DimMonth:
		return "Month"
	case DimYear:
		return "Year"
	case DimMonthNum:
		return "Month of Year"
	case DimCellLon:
		return "Longitude"
	case DimCellLat:
		return "Latitude"
	case DimQuadrant:
		return "Quadrant"
	default:
		return string(d)
	}
}

// ParseDimension accepts the snake_case name or common CLI spellings.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "force", "falls_within":
		return DimForce, nil
	case "crime_type", "type":
		return DimCrimeType, nil
	case "outcome", "last_outcome_category":
		return DimOutcome, nil
	case "month":
		return DimMonth, nil
	case "year":
		return DimYear, nil
	case "month_num", "month_of_year":
		return DimMonthNum, nil
	default:
		return "", fmt.Errorf("unknown dimension %q (use force|crime-type|outcome|month|year|month-num)", s)
	}
}

func keyOf(r crime.Record, dims []Dimension) []string {
	keys := make([]string, len(dims))
	for i, d := range dims {
		keys[i] = d.Value(r)
	}
	return keys
}

// joinKey builds a map key from group values. The unit separator never appears in the data.
func joinKey(keys []string) string { return strings.Join(keys, "\x1f") }
