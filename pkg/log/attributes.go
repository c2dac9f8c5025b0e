// Package log defines standard attribute keys for linear model operations.
//
// Using these keys keeps field names consistent across packages, which makes
// log output filterable: every fit reports "design.rows", every comparison
// reports "compare.f", and so on. The keys follow a hierarchical naming
// convention ("design.rows", "model.rank") grouped by concern.

package log

// Operation context.
// These attributes identify the component and operation being performed.
const (
	// ComponentKey identifies the package performing the operation.
	// Examples: "design", "formula", "linear", "anova", "contrast", "sweep"
	ComponentKey = "glm.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "parse", "build", "fit", "compare", "evaluate", "sweep"
	OperationKey = "glm.operation"
)

// Dataset and design matrix shape.
const (
	// RowsKey is the number of observations (rows) in a design matrix.
	RowsKey = "design.rows"

	// ColsKey is the number of columns in a design matrix.
	ColsKey = "design.cols"

	// TermsKey is the number of model terms in a specification.
	TermsKey = "design.terms"

	// FormulaKey is the formula string a specification was parsed from.
	FormulaKey = "design.formula"

	// ResponseKey names the response column of a model.
	ResponseKey = "data.response"

	// ColumnsKey is the number of columns in a dataset.
	ColumnsKey = "data.columns"
)

// Fit diagnostics.
// These attributes capture the numerical state of a fitted model.
const (
	// RankKey is the numerical rank of the design matrix.
	RankKey = "model.rank"

	// ConditionKey is the condition number of the design matrix.
	ConditionKey = "model.condition_number"

	// RSSKey is the residual sum of squares of a fit.
	RSSKey = "model.rss"

	// DFResidualKey is the residual degrees of freedom of a fit.
	DFResidualKey = "model.df_residual"
)

// Model comparison.
const (
	// FStatKey is the F statistic of a nested model comparison.
	FStatKey = "compare.f"

	// PValueKey is the p-value of a comparison or contrast.
	PValueKey = "compare.p"

	// DFNumKey is the numerator degrees of freedom of an F test.
	DFNumKey = "compare.df_num"

	// DFDenKey is the denominator degrees of freedom of an F test.
	DFDenKey = "compare.df_den"
)

// Contrast evaluation.
const (
	// EstimateKey is the point estimate of a contrast.
	EstimateKey = "contrast.estimate"

	// StdErrKey is the standard error of a contrast estimate.
	StdErrKey = "contrast.se"

	// AdjustmentKey names the multiple-comparison policy applied to a family.
	// Examples: "none", "bonferroni", "holm", "tukey", "scheffe"
	AdjustmentKey = "contrast.adjustment"

	// FamilySizeKey is the number of comparisons in a family.
	FamilySizeKey = "contrast.family_size"
)

// Parameter sweeps.
const (
	// SweepIDKey is the unique identifier of a sweep run.
	SweepIDKey = "sweep.id"

	// SweepSizeKey is the number of model specifications in a sweep.
	SweepSizeKey = "sweep.size"

	// SweepWorkersKey is the number of concurrent workers in a sweep.
	SweepWorkersKey = "sweep.workers"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error and warning context.
const (
	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "RankDeficientError", "InvalidComparisonError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values for common operations.
const (
	OperationParse    = "parse"
	OperationBuild    = "build"
	OperationFit      = "fit"
	OperationCompare  = "compare"
	OperationEvaluate = "evaluate"
	OperationSweep    = "sweep"
)
