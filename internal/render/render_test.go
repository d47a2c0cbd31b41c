package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
)

func sampleTable() *analysis.Table {
	return &analysis.Table{
		Name:       "rates",
		Dimensions: []analysis.Dimension{analysis.DimCrimeType, analysis.DimForce},
		Measures:   []string{"count", "rate_per_1000"},
		Rows: []analysis.Row{
			{Keys: []string{"Burglary", "A"}, Values: []float64{10, 2.5}},
			{Keys: []string{"Burglary", "B"}, Values: []float64{4, 1}},
			{Keys: []string{"Robbery", "A"}, Values: []float64{3, 0.75}},
		},
		Warnings: []string{"no population configured for force \"C\"; excluded from rates"},
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "oxford_hotspot_bicycle_theft.png", ImageName("oxford", "hotspot", "Bicycle theft"))
	assert.Equal(t, "oxford_priority.png", ImageName("Oxford", "priority", ""))
	assert.Equal(t, "oxford_seasonal_criminal_damage_and_arson.png", ImageName("oxford", "seasonal", "Criminal damage and arson"))
	assert.Equal(t, "x_violence_and_sexual_offences.png", ImageName("x", "", "Violence and  sexual offences"))
	assert.Equal(t, "a_b_publicorder.png", ImageName("a", "b", "Public/order"))
	assert.Equal(t, "chart.png", ImageName("", "", ""))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "md": FormatMarkdown, "CSV": FormatCSV, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, ".csv", FormatCSV.Ext())
}

func TestWrite_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plain(&buf, sampleTable()))
	out := buf.String()
	assert.Contains(t, out, "rates")
	assert.Contains(t, out, "Crime Type")
	assert.Contains(t, out, "rate_per_1000")
	assert.Contains(t, out, "0.7500")
	assert.Contains(t, out, "⚠ no population")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7) // title, header, rule, 3 rows, warning
}

func TestWrite_ColourKeepsColumnsAligned(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	var styled, plain bytes.Buffer
	require.NoError(t, Write(&styled, sampleTable(), FormatTable))
	require.NoError(t, Plain(&plain, sampleTable()))
	require.Contains(t, styled.String(), "\x1b[")

	ansi := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	assert.Equal(t, plain.String(), ansi.ReplaceAllString(styled.String(), ""))

	lines := strings.Split(plain.String(), "\n")
	assert.Equal(t, strings.Index(lines[1], "Police Force"), strings.Index(lines[3], "A  "))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatCSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "crime_type,force,count,rate_per_1000", lines[0])
	assert.Equal(t, "Burglary,A,10,2.5000", lines[1])
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatJSON))
	var got struct {
		Name     string           `json:"name"`
		Rows     []map[string]any `json:"rows"`
		Warnings []string         `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "rates", got.Name)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Robbery", got.Rows[2]["crime_type"])
	assert.Equal(t, 0.75, got.Rows[2]["rate_per_1000"])
	assert.Len(t, got.Warnings, 1)
}

func TestWrite_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatMarkdown))
	assert.Contains(t, buf.String(), "| Burglary | A | 10 | 2.5000 |")
}

func TestCharts(t *testing.T) {
	dir := t.TempDir()

	bars := filepath.Join(dir, ImageName("all", "rate", ""))
	require.NoError(t, GroupedBars(sampleTable(), "rate_per_1000", "Rates", bars))
	assertFile(t, bars)

	seasonal := &analysis.Table{
		Dimensions: []analysis.Dimension{analysis.DimForce, analysis.DimMonthNum},
		Measures:   []string{analysis.MeasureAvgCount},
		Rows: []analysis.Row{
			{Keys: []string{"A", "1"}, Values: []float64{3}},
			{Keys: []string{"A", "2"}, Values: []float64{5}},
			{Keys: []string{"B", "1"}, Values: []float64{2}},
		},
	}
	lines := filepath.Join(dir, "seasonal.png")
	require.NoError(t, SeasonalLines(seasonal, analysis.DimForce, analysis.MeasureAvgCount, "Seasonal", lines))
	assertFile(t, lines)

	m := analysis.PriorityMatrix{
		Points: []analysis.PriorityPoint{
			{Label: "Burglary", Volume: 10, Rate: 80},
			{Label: "Drugs", Volume: 8, Rate: 5},
			{Label: "Arson", Volume: 2, Rate: 60},
		},
		VolumeMedian: 8, RateMedian: 60,
	}
	scatter := filepath.Join(dir, "priority.png")
	require.NoError(t, PriorityScatter(m, "Priority", scatter))
	assertFile(t, scatter)

	g, err := analysis.Hotspot(nil, geo.Bounds{LonMin: 0, LonMax: 1, LatMin: 0, LatMax: 1}, 4, 4)
	require.NoError(t, err)
	g.Counts[5] = 3
	heat := filepath.Join(dir, "heat.png")
	require.NoError(t, Heatmap(g, "Hotspots", heat))
	assertFile(t, heat)

	assert.Error(t, GroupedBars(&analysis.Table{Dimensions: []analysis.Dimension{analysis.DimForce}}, "count", "x", bars))
	assert.Error(t, PriorityScatter(analysis.PriorityMatrix{}, "x", scatter))
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}
