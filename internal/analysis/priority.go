package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Quadrant classifies a point against the volume and rate medians.
type Quadrant int

const (
	// WellManaged is low volume, low rate.
	WellManaged Quadrant = iota
	// EffectiveProcess is high volume, low rate.
	EffectiveProcess
	// NicheChallenges is low volume, high rate.
	NicheChallenges
	// ChronicProblems is high volume, high rate.
	ChronicProblems
)

func (q Quadrant) String() string {
	switch q {
	case ChronicProblems:
		return "CHRONIC PROBLEMS"
	case NicheChallenges:
		return "Niche Challenges"
	case EffectiveProcess:
		return "Effective Process"
	default:
		return "Well-Managed"
	}
}

// PriorityPoint is one category on the volume/rate plane.
type PriorityPoint struct {
	Label  string
	Volume float64
	Rate   float64
}

// PriorityMatrix splits points into quadrants at the medians of each axis.
type PriorityMatrix struct {
	Points       []PriorityPoint
	VolumeMedian float64
	RateMedian   float64
}

// Quadrant places p. Values strictly above a median count as high.
func (m PriorityMatrix) Quadrant(p PriorityPoint) Quadrant {
	highVol := p.Volume > m.VolumeMedian
	highRate := p.Rate > m.RateMedian
	switch {
	case highVol && highRate:
		return ChronicProblems
	case highRate:
		return NicheChallenges
	case highVol:
		return EffectiveProcess
	default:
		return WellManaged
	}
}

// Table lists every point with its quadrant label as a trailing key.
func (m PriorityMatrix) Table(label Dimension, volume, rate string) *Table {
	t := &Table{
		Name:       "priority matrix",
		Dimensions: []Dimension{label, DimQuadrant},
		Measures:   []string{volume, rate},
		Warnings: []string{
			fmt.Sprintf("median %s = %s", volume, FormatValue(m.VolumeMedian)),
			fmt.Sprintf("median %s = %s", rate, FormatValue(m.RateMedian)),
		},
	}
	for _, p := range m.Points {
		t.Rows = append(t.Rows, Row{Keys: []string{p.Label, m.Quadrant(p).String()}, Values: []float64{p.Volume, p.Rate}})
	}
	return t
}

// Priority builds a matrix from two measures of a one-row-per-label table.
func Priority(t *Table, label Dimension, volume, rate string) (PriorityMatrix, error) {
	li := t.DimIndex(label)
	vi, ri := t.MeasureIndex(volume), t.MeasureIndex(rate)
	if li < 0 || vi < 0 || ri < 0 {
		return PriorityMatrix{}, fmt.Errorf("priority: table %q lacks %s/%s/%s", t.Name, label, volume, rate)
	}
	m := PriorityMatrix{}
	vols := make([]float64, 0, len(t.Rows))
	rates := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		p := PriorityPoint{Label: r.Keys[li], Volume: r.Values[vi], Rate: r.Values[ri]}
		m.Points = append(m.Points, p)
		vols = append(vols, p.Volume)
		rates = append(rates, p.Rate)
	}
	m.VolumeMedian, m.RateMedian = Median(vols), Median(rates)
	if math.IsNaN(m.VolumeMedian) {
		m.VolumeMedian = 0
	}
	if math.IsNaN(m.RateMedian) {
		m.RateMedian = 0
	}
	return m, nil
}

// CrimePriority plots each crime type's volume against its unsolved rate.
func CrimePriority(ds *crime.Dataset, unsolved string) (PriorityMatrix, error) {
	t := OutcomeRate(ds, OutcomeOptions{Outcome: unsolved}, DimCrimeType)
	return Priority(t, DimCrimeType, MeasureTotal, MeasureUnsolvedRate)
}
