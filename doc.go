// Package pcaffine converts a fitted PCA model into a single float32 affine
// transform and verifies that the two agree.
//
// A PCA projects x as (x - mean)·components^T, optionally dividing each
// output by the square root of its explained variance (whitening). The same
// map can be written as one affine operation
//
//	y = x·A^T + b
//
// with A the (scaled) components and b = -(mean·A^T). Engines that execute
// affine transforms over large float32 batches can then apply the model with
// a single GEMM.
//
// # Quick Start
//
//	pca, err := decomposition.LoadSKLearnPCAFile("pca.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	transform, err := convert.FromPCA(pca)
//	if err != nil {
//	    log.Fatal(err) // InvalidModelError
//	}
//
//	report, err := verify.NewChecker(
//	    verify.WithTolerance(1e-5),
//	    verify.WithBenchmarkRows(1_000_000),
//	).Verify(pca, transform, []verify.Sample{{Name: "test", X: Xtest}})
//	if err != nil {
//	    log.Fatal(err) // EquivalenceError
//	}
//	fmt.Println(report)
//
// # Packages
//
//   - decomposition: PCA models (Unwhitened, Whitened), reference transform, sklearn JSON loader
//   - affine: the float32 affine transform and its batched application
//   - convert: PCA to affine conversion
//   - verify: equivalence checking, throughput report and chart
//   - metrics: element-wise deviation metrics
//   - core/model: shared Transformer interface and fitted state
//   - core/tensor: float32 matrix implementing gonum's mat.Matrix
//   - core/parallel: parallel helpers for element-wise passes
//   - pkg/errors: error types, warnings and panic recovery
//   - pkg/log: structured logging (zerolog, slog)
//
// # Command
//
// examples/pca_migration runs the whole flow on synthetic data or on a PCA
// exported from scikit-learn:
//
//	go run ./examples/pca_migration -model pca.json -chart throughput.png
package pcaffine
