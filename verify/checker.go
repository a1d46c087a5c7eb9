// Package verify checks that a converted affine transform reproduces the
// PCA model it was built from, and measures the throughput of both paths.
package verify

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/pcaffine/affine"
	"github.com/YuminosukeSato/pcaffine/decomposition"
	"github.com/YuminosukeSato/pcaffine/internal/synth"
	"github.com/YuminosukeSato/pcaffine/metrics"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/YuminosukeSato/pcaffine/pkg/log"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultTolerance is the absolute tolerance used when none is given.
	DefaultTolerance = 1e-5

	// DefaultRelativeTolerance matches numpy.testing.assert_allclose.
	DefaultRelativeTolerance = 1e-7

	// RandomSampleName names the sample added by WithBenchmarkRows.
	RandomSampleName = "random"
)

// Sample is a named batch of input rows.
type Sample struct {
	Name string
	X    mat.Matrix
}

// Checker applies a PCA model and its converted transform to the same
// samples and asserts element-wise closeness:
//
//	|Y1 - Y2| <= atol + rtol*|Y2|
//
// where Y1 comes from the model and Y2 from the transform.
type Checker struct {
	atol      float64
	rtol      float64
	benchRows int
	seed      uint64
	logger    log.Logger
}

// NewChecker creates a Checker with default tolerances and no benchmark sample.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		atol:   DefaultTolerance,
		rtol:   DefaultRelativeTolerance,
		seed:   42,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify is NewChecker(WithTolerance(tolerance)).Verify(pca, t, samples).
func Verify(pca decomposition.PCAModel, t *affine.Transform, samples []Sample, tolerance float64) (*Report, error) {
	return NewChecker(WithTolerance(tolerance)).Verify(pca, t, samples)
}

// Verify runs both paths on every sample in order. It stops at the first
// sample that is not close and returns an EquivalenceError together with the
// report of the samples checked so far, including the failing one.
//
// Timing is recorded for every sample and never changes the verdict.
func (c *Checker) Verify(pca decomposition.PCAModel, t *affine.Transform, samples []Sample) (*Report, error) {
	const op = "verify.Verify"

	if pca == nil || t == nil {
		return nil, errors.NewValueError(op, "model and transform are required")
	}
	if err := pca.Validate(); err != nil {
		return nil, err
	}
	if err := t.CheckFitted("affine.Transform", "Verify"); err != nil {
		return nil, err
	}
	if c.atol < 0 || c.rtol < 0 {
		return nil, errors.NewValidationError("tolerance", "must be non-negative", min(c.atol, c.rtol))
	}
	if pca.NFeatures() != t.DIn() {
		return nil, errors.NewDimensionError(op, t.DIn(), pca.NFeatures(), 1)
	}
	if pca.NComponents() != t.DOut() {
		return nil, errors.NewDimensionError(op, t.DOut(), pca.NComponents(), 1)
	}

	samples = append([]Sample(nil), samples...)
	for i := range samples {
		if samples[i].Name == "" {
			samples[i].Name = fmt.Sprintf("sample[%d]", i)
		}
		if samples[i].X == nil {
			return nil, errors.NewValueError(op, fmt.Sprintf("sample %q has no data", samples[i].Name))
		}
		if _, cols := samples[i].X.Dims(); cols != t.DIn() {
			return nil, errors.Wrapf(errors.NewDimensionError(op, t.DIn(), cols, 1), "sample %q", samples[i].Name)
		}
	}
	if c.benchRows > 0 {
		samples = append(samples, Sample{Name: RandomSampleName, X: synth.RandomNormal(c.benchRows, t.DIn(), c.seed)})
	}
	if len(samples) == 0 {
		return nil, errors.NewValueError(op, "no samples to verify")
	}

	logger := c.logger.With(
		log.ComponentKey, "verify",
		log.ModelNameKey, pca.String(),
		log.ToleranceKey, c.atol,
		log.RelativeToleranceKey, c.rtol,
	)

	report := &Report{
		Model:             pca.String(),
		DIn:               t.DIn(),
		DOut:              t.DOut(),
		Tolerance:         c.atol,
		RelativeTolerance: c.rtol,
	}

	for _, s := range samples {
		res, dev, err := c.check(pca, t, s)
		if err != nil {
			logger.Error("sample could not be projected", log.SampleKey, s.Name, log.ErrAttrKey, err)
			return report, err
		}
		report.Samples = append(report.Samples, *res)

		if !dev.Close() {
			err := errors.NewEquivalenceError(s.Name, dev.Max, dev.Row, dev.Col, c.atol)
			logger.Error("sample is not equivalent",
				log.SampleKey, s.Name,
				log.MaxAbsDeviationKey, dev.Max,
				log.ErrorCodeKey, log.ErrorNotEquivalent,
				log.ErrAttrKey, err,
			)
			return report, err
		}
		logger.Info("sample verified",
			log.SampleKey, s.Name,
			log.SamplesKey, res.Rows,
			log.MaxAbsDeviationKey, res.MaxAbsDeviation,
			log.MeanAbsDeviationKey, res.MeanAbsDeviation,
		)
	}

	report.Throughput = throughput(report.Samples)
	logger.Info("throughput measured",
		log.SampleKey, report.Throughput.Sample,
		log.SamplesKey, report.Throughput.Rows,
		log.SpeedupKey, report.Throughput.Speedup,
	)
	return report, nil
}

// check runs both paths on one sample and compares the outputs.
func (c *Checker) check(pca decomposition.PCAModel, t *affine.Transform, s Sample) (*SampleResult, *metrics.Deviation, error) {
	rows, _ := s.X.Dims()
	if rows == 0 {
		return nil, nil, errors.NewValueError("verify.Verify", fmt.Sprintf("sample %q has no rows", s.Name))
	}

	var y1, y2 mat.Matrix
	original, err := timed("PCA.Transform", func() (err error) {
		y1, err = pca.Transform(s.X)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	converted, err := timed("affine.Apply", func() error {
		y, err := t.Apply(s.X)
		y2 = y
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	dev, err := metrics.Compare(y1, y2, c.atol, c.rtol)
	if err != nil {
		return nil, nil, err
	}

	return &SampleResult{
		Name:             s.Name,
		Rows:             rows,
		MaxAbsDeviation:  dev.Max,
		MeanAbsDeviation: dev.Mean,
		Original:         newTiming(rows, original),
		Converted:        newTiming(rows, converted),
	}, dev, nil
}

// timed measures fn and turns a panic inside it into an error.
func timed(op string, fn func() error) (time.Duration, error) {
	start := time.Now()
	err := errors.SafeExecute(op, fn)
	return time.Since(start), err
}
