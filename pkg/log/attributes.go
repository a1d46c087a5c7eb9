// Package log defines standard attribute keys for conversion and verification runs.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "perf.rows_per_second") so log lines from the converter, the checker and
// the command can be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model being converted or applied.
	// Examples: "PCA", "PCA(whiten)", "affine.Transform"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "convert", "transform", "apply", "verify"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "convert", "verify", "cmd"
	ComponentKey = "ml.component"

	// WhitenKey records whether the source model applies whitening.
	WhitenKey = "model.whiten"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the batch.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the batch.
	FeaturesKey = "data.features"

	// DInKey is the input dimension of a transform.
	DInKey = "data.d_in"

	// DOutKey is the output dimension of a transform.
	DOutKey = "data.d_out"

	// DataTypeKey specifies the element type of the data being processed.
	// Examples: "float64", "float32"
	DataTypeKey = "data.type"
)

// Verification Context
const (
	// SampleKey names the sample set being verified.
	// Examples: "train", "test", "random"
	SampleKey = "verify.sample"

	// MaxAbsDeviationKey records the largest element-wise |Y1 - Y2|.
	MaxAbsDeviationKey = "verify.max_abs_deviation"

	// MeanAbsDeviationKey records the mean element-wise |Y1 - Y2|.
	MeanAbsDeviationKey = "verify.mean_abs_deviation"

	// ToleranceKey records the absolute tolerance in effect.
	ToleranceKey = "verify.tolerance"

	// RelativeToleranceKey records the relative tolerance in effect.
	RelativeToleranceKey = "verify.relative_tolerance"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the execution time in seconds.
	DurationSecondsKey = "perf.duration_seconds"

	// RowsPerSecondKey records throughput of a projection path.
	RowsPerSecondKey = "perf.rows_per_second"

	// SpeedupKey records original/converted wall-clock ratio.
	SpeedupKey = "perf.speedup"

	// PathKey names the projection path being timed: "original" or "converted".
	PathKey = "perf.path"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute value constants.
const (
	OperationConvert   = "convert"
	OperationTransform = "transform"
	OperationApply     = "apply"
	OperationVerify    = "verify"

	PathOriginal  = "original"
	PathConverted = "converted"

	ErrorInvalidModel      = "INVALID_MODEL"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorNotEquivalent     = "NOT_EQUIVALENT"
)
