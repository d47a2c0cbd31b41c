package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
)

const unsolved = "Investigation complete; no suspect identified"

func rec(force, crimeType, month, outcome string) crime.Record {
	m, _ := crime.ParseMonth(month)
	return crime.Record{Month: m, Force: force, CrimeType: crimeType, Outcome: outcome,
		Longitude: crime.Some(-1.25), Latitude: crime.Some(51.75)}
}

func repeat(n int, r crime.Record) []crime.Record {
	out := make([]crime.Record, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func dataset(groups ...[]crime.Record) *crime.Dataset {
	ds := &crime.Dataset{}
	for _, g := range groups {
		ds.Records = append(ds.Records, g...)
	}
	return ds
}

func TestCount_SumsToDatasetSize(t *testing.T) {
	ds := dataset(
		repeat(3, rec("A", "Burglary", "2023-01", "")),
		repeat(2, rec("B", "Burglary", "2023-01", "")),
		repeat(4, rec("A", "Robbery", "2023-02", "")),
	)
	for _, dims := range [][]Dimension{{DimForce}, {DimCrimeType}, {DimForce, DimCrimeType}, {DimYear, DimMonthNum}} {
		tbl := Count(ds, dims...)
		assert.Equal(t, float64(ds.Len()), tbl.Total(MeasureCount), "dims %v", dims)
	}

	byForce := Count(ds, DimForce)
	require.Len(t, byForce.Rows, 2)
	assert.Equal(t, []string{"A"}, byForce.Rows[0].Keys)
	assert.Equal(t, 7.0, byForce.Rows[0].Values[0])

	v, ok := Count(ds, DimForce, DimCrimeType).Lookup(MeasureCount, "B", "Burglary")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	assert.Empty(t, Count(&crime.Dataset{}, DimForce).Rows)
}

func TestTopNPerGroup_Union(t *testing.T) {
	ds := dataset(
		repeat(5, rec("X", "a", "2023-01", "")),
		repeat(3, rec("X", "b", "2023-01", "")),
		repeat(1, rec("X", "c", "2023-01", "")),
		repeat(1, rec("Y", "a", "2023-01", "")),
		repeat(9, rec("Y", "b", "2023-01", "")),
	)
	sel := TopNPerGroup(ds, DimForce, DimCrimeType, 2, TieFirstSeen)
	assert.ElementsMatch(t, []string{"a", "b"}, sel.Values)
	assert.Equal(t, []string{"b", "a"}, sel.Values, "most frequent overall first")
	assert.Equal(t, []string{"a", "b"}, sel.PerGroup["X"])
	assert.Equal(t, []string{"b", "a"}, sel.PerGroup["Y"])
	assert.Equal(t, []string{"X", "Y"}, sel.Groups)
	assert.False(t, sel.Contains("c"))
}

func TestTopNPerGroup_TieBreak(t *testing.T) {
	ds := dataset(
		repeat(2, rec("X", "zeta", "2023-01", "")),
		repeat(2, rec("X", "alpha", "2023-01", "")),
		repeat(2, rec("X", "mid", "2023-01", "")),
	)
	first := TopNPerGroup(ds, DimForce, DimCrimeType, 1, TieFirstSeen)
	assert.Equal(t, []string{"zeta"}, first.Values)
	lex := TopNPerGroup(ds, DimForce, DimCrimeType, 1, TieLexical)
	assert.Equal(t, []string{"alpha"}, lex.Values)

	_, err := ParseTieBreak("random")
	assert.Error(t, err)
	tb, err := ParseTieBreak("")
	require.NoError(t, err)
	assert.Equal(t, TieFirstSeen, tb)
}

func TestProfile(t *testing.T) {
	ds := dataset(
		repeat(5, rec("X", "a", "2023-01", "")),
		repeat(3, rec("X", "b", "2023-01", "")),
		repeat(1, rec("X", "c", "2023-01", "")),
		repeat(9, rec("Y", "b", "2023-01", "")),
		repeat(1, rec("Y", "a", "2023-01", "")),
	)
	tbl, sel := Profile(ds, 2, TieFirstSeen)
	assert.Equal(t, []string{"b", "a"}, sel.Values)
	assert.Equal(t, 18.0, tbl.Total(MeasureCount), "c excluded")
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, []string{"b", "X"}, tbl.Rows[0].Keys)
	assert.Equal(t, []string{"b", "Y"}, tbl.Rows[1].Keys)
	assert.Equal(t, []string{"a", "X"}, tbl.Rows[2].Keys)
}

func TestRate_PerCapita(t *testing.T) {
	ds := dataset(
		repeat(10, rec("A", "Burglary", "2023-01", "")),
		repeat(20, rec("B", "Burglary", "2023-01", "")),
	)
	pop := Population{"A": 1000, "B": 2000}
	out, err := Rate(Count(ds, DimForce), pop, RateOptions{Scale: 1000, Divisor: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{MeasureCount, MeasurePopulation, "rate_per_1000"}, out.Measures)
	a, _ := out.Lookup("rate_per_1000", "A")
	b, _ := out.Lookup("rate_per_1000", "B")
	assert.InDelta(t, 10.0, a, 1e-9)
	assert.InDelta(t, 10.0, b, 1e-9)
	assert.Empty(t, out.Warnings)
}

func TestRate_DoublingCountDoublesRate(t *testing.T) {
	pop := Population{"A": 5000}
	one, err := AnnualRate(dataset(repeat(7, rec("A", "Burglary", "2023-01", ""))), pop, 1000, 2, false, DimCrimeType)
	require.NoError(t, err)
	two, err := AnnualRate(dataset(repeat(14, rec("A", "Burglary", "2023-01", ""))), pop, 1000, 2, false, DimCrimeType)
	require.NoError(t, err)
	r1, _ := one.Lookup("rate_per_1000", "A", "Burglary")
	r2, _ := two.Lookup("rate_per_1000", "A", "Burglary")
	assert.InDelta(t, 0.7, r1, 1e-9)
	assert.InDelta(t, 2*r1, r2, 1e-9)
	for _, v := range two.Column("rate_per_1000") {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestRate_MissingPopulation(t *testing.T) {
	ds := dataset(
		repeat(2, rec("A", "Burglary", "2023-01", "")),
		repeat(3, rec("Kent Police", "Burglary", "2023-01", "")),
	)
	out, err := Rate(Count(ds, DimForce), Population{"A": 100}, RateOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.Distinct(DimForce))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Kent Police")

	_, err = Rate(Count(ds, DimForce), Population{"A": 100}, RateOptions{Strict: true})
	var mc *crime.MissingConfigurationError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "Kent Police", mc.Force)
	assert.Equal(t, err.Error()+"; excluded from rates", out.Warnings[0])

	_, err = Rate(Count(ds, DimCrimeType), Population{"A": 100}, RateOptions{})
	assert.Error(t, err, "no force dimension")
}

func TestPopulationLookupFoldsCase(t *testing.T) {
	pop := Population{"thames valley police": 2340000}
	n, ok := pop.Lookup("Thames Valley Police")
	assert.True(t, ok)
	assert.Equal(t, 2340000, n)
	_, ok = pop.Lookup("Kent Police")
	assert.False(t, ok)
}

func TestSeasonal_MeanOverObservedYears(t *testing.T) {
	ds := dataset(
		repeat(4, rec("A", "Burglary", "2022-01", "")),
		repeat(6, rec("A", "Burglary", "2023-01", "")),
		repeat(3, rec("A", "Burglary", "2023-02", "")),
		repeat(5, rec("A", "Robbery", "2022-12", "")),
	)
	tbl := Seasonal(ds, DimForce, DimCrimeType)
	assert.Equal(t, []Dimension{DimForce, DimCrimeType, DimMonthNum}, tbl.Dimensions)

	jan, ok := tbl.Lookup(MeasureAvgCount, "A", "Burglary", "1")
	require.True(t, ok)
	assert.Equal(t, 5.0, jan)
	feb, _ := tbl.Lookup(MeasureAvgCount, "A", "Burglary", "2")
	assert.Equal(t, 3.0, feb, "February only observed in 2023")
	years, _ := tbl.Lookup(MeasureYears, "A", "Burglary", "1")
	assert.Equal(t, 2.0, years)

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"A", "Burglary", "1"}, tbl.Rows[0].Keys)
	assert.Equal(t, []string{"A", "Burglary", "2"}, tbl.Rows[1].Keys)
	assert.Equal(t, []string{"A", "Robbery", "12"}, tbl.Rows[2].Keys)

	rated, err := SeasonalRate(ds, Population{"A": 100000}, 100000, false)
	require.NoError(t, err)
	r, _ := rated.Lookup("rate_per_100000", "A", "Burglary", "1")
	assert.InDelta(t, 5.0, r, 1e-9)
}

func TestOutcomeRate(t *testing.T) {
	ds := dataset(
		repeat(3, rec("A", "Burglary", "2023-01", unsolved)),
		repeat(1, rec("A", "Burglary", "2023-01", "Under investigation")),
		repeat(2, rec("B", "Robbery", "2023-01", "Local resolution")),
	)
	tbl := OutcomeRate(ds, OutcomeOptions{Outcome: unsolved}, DimForce, DimCrimeType)
	require.Len(t, tbl.Rows, 2)
	v, _ := tbl.Lookup(MeasureUnsolvedRate, "A", "Burglary")
	assert.InDelta(t, 75.0, v, 1e-9)
	v, _ = tbl.Lookup(MeasureUnsolvedRate, "B", "Robbery")
	assert.Equal(t, 0.0, v)

	expanded := OutcomeRate(ds, OutcomeOptions{Outcome: unsolved, Expand: true}, DimForce, DimCrimeType)
	require.Len(t, expanded.Rows, 4)
	total, ok := expanded.Lookup(MeasureTotal, "B", "Burglary")
	require.True(t, ok)
	assert.Equal(t, 0.0, total)
	rate, _ := expanded.Lookup(MeasureUnsolvedRate, "B", "Burglary")
	assert.Equal(t, 0.0, rate)
	for _, r := range expanded.Column(MeasureUnsolvedRate) {
		assert.False(t, math.IsNaN(r))
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 100.0)
	}
}

func TestPriorityQuadrants(t *testing.T) {
	ds := dataset(
		repeat(10, rec("A", "Burglary", "2023-01", unsolved)), // high volume, high rate
		repeat(8, rec("A", "Drugs", "2023-01", "Local resolution")),
		repeat(2, rec("A", "Arson", "2023-01", unsolved)),
		repeat(1, rec("A", "Fraud", "2023-01", "Local resolution")),
	)
	m, err := CrimePriority(ds, unsolved)
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.VolumeMedian)
	assert.Equal(t, 50.0, m.RateMedian)

	got := map[string]Quadrant{}
	for _, p := range m.Points {
		got[p.Label] = m.Quadrant(p)
	}
	assert.Equal(t, ChronicProblems, got["Burglary"])
	assert.Equal(t, EffectiveProcess, got["Drugs"])
	assert.Equal(t, NicheChallenges, got["Arson"])
	assert.Equal(t, WellManaged, got["Fraud"])
	assert.Equal(t, "CHRONIC PROBLEMS", ChronicProblems.String())
	assert.Equal(t, "Effective Process", got["Drugs"].String())
	assert.Equal(t, "Well-Managed", got["Fraud"].String())

	// Labels depend only on which side of each median a point falls.
	split := PriorityMatrix{VolumeMedian: 5, RateMedian: 50}
	assert.Equal(t, "Effective Process", split.Quadrant(PriorityPoint{Volume: 10, Rate: 0}).String())
	assert.Equal(t, "Well-Managed", split.Quadrant(PriorityPoint{Volume: 1, Rate: 0}).String())
	assert.Equal(t, "Niche Challenges", split.Quadrant(PriorityPoint{Volume: 1, Rate: 90}).String())
	assert.Equal(t, "CHRONIC PROBLEMS", split.Quadrant(PriorityPoint{Volume: 10, Rate: 90}).String())

	tbl := m.Table(DimCrimeType, MeasureTotal, MeasureUnsolvedRate)
	assert.Len(t, tbl.Rows, 4)
	assert.Len(t, tbl.Warnings, 2)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestHotspotGrid(t *testing.T) {
	b := geo.Bounds{LonMin: 0, LonMax: 2, LatMin: 0, LatMax: 2}
	at := func(lon, lat float64) crime.Record {
		return crime.Record{Longitude: crime.Some(lon), Latitude: crime.Some(lat)}
	}
	ds := &crime.Dataset{Records: []crime.Record{
		at(0.5, 0.5), at(0.6, 0.4), at(1.5, 1.5), at(2, 2), at(3, 3), {},
	}}
	g, err := Hotspot(ds, b, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Total)
	assert.Equal(t, 1, g.Outside)
	assert.Equal(t, 2.0, g.Z(0, 0))
	assert.Equal(t, 2.0, g.Z(1, 1), "edge point lands in last cell")
	assert.Equal(t, 0.0, g.Z(1, 0))
	assert.Equal(t, 0.5, g.X(0))
	assert.Equal(t, 1.5, g.Y(1))

	lon, lat, v := g.Peak()
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 0.5, lon)
	assert.Equal(t, 0.5, lat)

	s := g.Smooth(0.5)
	var sum float64
	for _, c := range s.Counts {
		sum += c
	}
	assert.Greater(t, sum, 0.0)
	assert.LessOrEqual(t, sum, 4.0+1e-9)
	assert.Equal(t, 2.0, g.Z(0, 0), "smoothing leaves the source grid alone")

	tbl := g.Table()
	assert.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Warnings, 1)

	_, err = Hotspot(ds, b, 0, 2)
	assert.Error(t, err)
}

func TestTheftTypes(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"Bicycle theft", "Shoplifting", "Theft from the person", "Other theft",
		"Burglary", "Robbery", "Vehicle crime",
	}, TheftTypes)
}

func TestMarkdown(t *testing.T) {
	tbl := Count(dataset(repeat(2, rec("A|B", "Burglary", "2023-01", ""))), DimForce)
	tbl.Warnings = []string{"sample note"}
	md := tbl.Markdown()
	assert.True(t, strings.HasPrefix(md, "[SUMMARY TABLE]"))
	assert.Contains(t, md, "| Police Force | count |")
	assert.Contains(t, md, "| A/B | 2 |")
	assert.Contains(t, md, "[NOTES]\n- sample note")
}

func TestDimensionValues(t *testing.T) {
	r := rec("A", "Burglary", "2023-07", "x")
	assert.Equal(t, "2023", DimYear.Value(r))
	assert.Equal(t, "7", DimMonthNum.Value(r))
	assert.Equal(t, "2023-07", DimMonth.Value(r))
	assert.Equal(t, time.July, r.Month.Month)

	d, err := ParseDimension("crime-type")
	require.NoError(t, err)
	assert.Equal(t, DimCrimeType, d)
	_, err = ParseDimension("colour")
	assert.Error(t, err)
}
