package verify

import (
	"fmt"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveChart renders a bar chart of rows/s for both paths to path. The
// format follows the file extension (.png, .svg, .pdf, ...).
func (r *Report) SaveChart(path string) error {
	if r.Throughput == nil {
		return errors.NewValueError("verify.SaveChart", "report has no throughput")
	}
	tp := r.Throughput

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s on %q (%d rows)", r.Model, tp.Sample, tp.Rows)
	p.Y.Label.Text = "rows/s"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values{tp.Original.RowsPerSecond, tp.Converted.RowsPerSecond}, vg.Points(40))
	if err != nil {
		return errors.Wrap(err, "failed to build throughput chart")
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX("original.transform", fmt.Sprintf("affine.apply (%.1fx)", tp.Speedup))

	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save chart %s", path)
	}
	return nil
}
