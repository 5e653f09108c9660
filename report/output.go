// Package report writes audit and placement results to an output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/catroom/audit"
	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/placement"
)

// PlacementRow is one placed item as written to placements.csv.
type PlacementRow struct {
	ID           string  `csv:"id"`
	Kind         string  `csv:"kind"`
	Mount        string  `csv:"mount"`
	X            float64 `csv:"x"`
	Y            float64 `csv:"y"`
	Z            float64 `csv:"z"`
	Width        float64 `csv:"width"`
	Depth        float64 `csv:"depth"`
	Height       float64 `csv:"height"`
	ScreenLeft   float64 `csv:"screen_left"`
	ScreenBottom float64 `csv:"screen_bottom"`
	ScreenWidth  float64 `csv:"screen_width"`
	ScreenHeight float64 `csv:"screen_height"`
	ZIndex       int     `csv:"z_index"`
}

// NewPlacementRow flattens a layout into a CSV row.
func NewPlacementRow(l placement.Layout) PlacementRow {
	it := l.Item
	return PlacementRow{
		ID:           it.ID.String(),
		Kind:         it.Spec.Kind,
		Mount:        it.Spec.Mount.String(),
		X:            it.Position.X,
		Y:            it.Position.Y,
		Z:            it.Position.Z,
		Width:        it.Spec.Width,
		Depth:        it.Spec.Depth,
		Height:       it.Spec.Height,
		ScreenLeft:   l.Left,
		ScreenBottom: l.Bottom,
		ScreenWidth:  l.Width,
		ScreenHeight: l.Height,
		ZIndex:       l.ZIndex,
	}
}

// ViolationRow is one failed audit check as written to violations.csv.
type ViolationRow struct {
	Check  string  `csv:"check"`
	Z      float64 `csv:"z"`
	Detail string  `csv:"detail"`
}

// csvFile is an output file that writes its header once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func writeRows[T any](c *csvFile, records []T) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return fmt.Errorf("writing %s: %w", c.name, err)
		}
		c.headerWritten = true
		return nil
	}
	if len(records) == 0 {
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, c.f); err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles report output. A nil manager discards everything.
type OutputManager struct {
	dir        string
	projection *csvFile
	placements *csvFile
	violations *csvFile
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, target := range []struct {
		file **csvFile
		name string
	}{
		{&om.projection, "projection.csv"},
		{&om.placements, "placements.csv"},
		{&om.violations, "violations.csv"},
	} {
		f, err := os.Create(filepath.Join(dir, target.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", target.name, err)
		}
		*target.file = &csvFile{name: target.name, f: f}
	}
	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteProjection writes sampled depths to projection.csv.
func (om *OutputManager) WriteProjection(samples []audit.Sample) error {
	if om == nil {
		return nil
	}
	return writeRows(om.projection, samples)
}

// WritePlacements writes item layouts to placements.csv.
func (om *OutputManager) WritePlacements(layouts []placement.Layout) error {
	if om == nil {
		return nil
	}
	rows := make([]PlacementRow, len(layouts))
	for i, l := range layouts {
		rows[i] = NewPlacementRow(l)
	}
	return writeRows(om.placements, rows)
}

// WriteViolations writes failed checks to violations.csv.
func (om *OutputManager) WriteViolations(violations []audit.Violation) error {
	if om == nil {
		return nil
	}
	rows := make([]ViolationRow, len(violations))
	for i, v := range violations {
		rows[i] = ViolationRow{Check: v.Check, Z: v.Z, Detail: v.Detail}
	}
	return writeRows(om.violations, rows)
}

// WriteReport writes everything an audit run produced.
func (om *OutputManager) WriteReport(r audit.Report) error {
	if err := om.WriteProjection(r.Samples); err != nil {
		return err
	}
	return om.WriteViolations(r.Violations)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.projection, om.placements, om.violations} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
