package sheets

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
)

var sampleRegions = []string{"North", "South", "East", "West"}
var sampleProducts = []string{"Widget", "Gadget", "Gizmo"}

// SampleSource serves deterministic demo data when no credentials are configured.
type SampleSource struct {
	rows int
}

var _ portsrepo.SheetSource = (*SampleSource)(nil)

// NewSampleSource returns a source producing a fixed 30-row table.
func NewSampleSource() *SampleSource {
	return &SampleSource{rows: 30}
}

// SheetTitles reports a single "Sample" tab.
func (s *SampleSource) SheetTitles(_ context.Context, _ string) ([]string, error) {
	return []string{"Sample"}, nil
}

// ReadRange ignores the range bounds and returns the full sample table
// (Date, Sales, Region, Product, Units).
func (s *SampleSource) ReadRange(_ context.Context, _ string, _ string) ([][]string, error) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make([][]string, 0, s.rows+1)
	out = append(out, []string{"Date", "Sales", "Region", "Product", "Units"})
	for i := 0; i < s.rows; i++ {
		out = append(out, []string{
			start.AddDate(0, 0, i).Format("2006-01-02"),
			fmt.Sprintf("%d", 1000+(i*137)%4000),
			sampleRegions[i%len(sampleRegions)],
			sampleProducts[(i/2)%len(sampleProducts)],
			fmt.Sprintf("%d", 10+(i*7)%90),
		})
	}
	return out, nil
}
