package crime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in      string
		year    int
		month   time.Month
		wantErr bool
	}{
		{"2023-05", 2023, time.May, false},
		{"2025-12", 2025, time.December, false},
		{"2023-13", 0, 0, true},
		{"2023-5", 0, 0, true},
		{"May 2023", 0, 0, true},
		{"", 0, 0, true},
		{"2023-05-01", 0, 0, true},
	}
	for _, c := range cases {
		m, err := ParseMonth(c.in)
		if c.wantErr {
			var fe *FormatError
			require.Error(t, err, c.in)
			require.True(t, errors.As(err, &fe), c.in)
			assert.Equal(t, c.in, fe.Value)
			assert.False(t, m.Parsed())
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.year, m.Year)
		assert.Equal(t, c.month, m.Month)
		assert.Equal(t, c.in, m.Key())
	}
}

func TestSubsetDoesNotAlias(t *testing.T) {
	ds := &Dataset{
		Columns: []string{ColForce, ColLocation},
		Records: []Record{
			{Force: "A", Fields: map[string]string{ColLocation: "On or near High St"}},
			{Force: "B"},
		},
	}
	sub := ds.Subset(func(r Record) bool { return r.Force == "A" })
	require.Equal(t, 1, sub.Len())
	sub.Records[0].Fields[ColLocation] = "changed"
	sub.Columns[0] = "changed"

	v, ok := ds.Records[0].Field(ColLocation)
	assert.True(t, ok)
	assert.Equal(t, "On or near High St", v)
	assert.Equal(t, ColForce, ds.Columns[0])
}

func TestErrorMessagesNameTheOffender(t *testing.T) {
	assert.Contains(t, (&ParseError{File: "a.csv", Line: 3, Err: errors.New("bad quote")}).Error(), "a.csv (line 3)")
	assert.Contains(t, (&FormatError{Value: "x", Row: 0}).Error(), "record 0")
	assert.Contains(t, (&EmptyInputError{Root: "/data", Extensions: []string{".csv"}}).Error(), "no .csv files")
	assert.Contains(t, (&MissingConfigurationError{Force: "Kent Police"}).Error(), "Kent Police")

	inner := errors.New("permission denied")
	ce := &ConfigurationError{Path: "/nope", Err: inner}
	assert.ErrorIs(t, ce, inner)
}
