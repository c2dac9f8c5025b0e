// Package errors provides the error handling and warning system for the
// library. Fatal conditions (unresolvable contrasts, rank-deficient designs,
// incomparable models) are reported through structured error types that carry
// the offending quantities, while recoverable numerical conditions are routed
// through a pluggable warning handler so that callers can decide whether to
// log, collect, or ignore them.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("GLM-Warning: %v\n", w)
	}
	// zerolog hook, injected lazily to avoid a circular import with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a library-wide warning handler. It controls how
// non-fatal conditions such as IllConditionedWarning are reported.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs the zerolog warning sink (set by pkg/log to
// avoid a circular import).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. If a zerolog sink is installed it receives the
// warning as a structured event, otherwise the plain handler is used.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// IllConditionedWarning is emitted when a design matrix is technically full
// rank but numerically fragile, so coefficient estimates may be unstable.
type IllConditionedWarning struct {
	Op        string
	Condition float64
	Threshold float64
}

func (w *IllConditionedWarning) Error() string {
	return fmt.Sprintf("%s: design matrix is ill conditioned (condition number %.4g exceeds %.4g); coefficient estimates may be numerically unstable", w.Op, w.Condition, w.Threshold)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *IllConditionedWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Float64("condition_number", w.Condition).
		Float64("threshold", w.Threshold).
		Str("type", "IllConditionedWarning")
}

// NewIllConditionedWarning creates a new IllConditionedWarning.
func NewIllConditionedWarning(op string, condition, threshold float64) *IllConditionedWarning {
	return &IllConditionedWarning{Op: op, Condition: condition, Threshold: threshold}
}

// UnbalancedGroupsWarning is emitted when a procedure that assumes equal
// group sizes is applied to unequal ones, for example Tukey's HSD falling
// back to the Tukey-Kramer approximation.
type UnbalancedGroupsWarning struct {
	Op      string
	Sizes   []int
	Message string
}

func (w *UnbalancedGroupsWarning) Error() string {
	return fmt.Sprintf("%s: unequal group sizes %v: %s", w.Op, w.Sizes, w.Message)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *UnbalancedGroupsWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Ints("group_sizes", w.Sizes).
		Str("message", w.Message).
		Str("type", "UnbalancedGroupsWarning")
}

// NewUnbalancedGroupsWarning creates a new UnbalancedGroupsWarning.
func NewUnbalancedGroupsWarning(op string, sizes []int, message string) *UnbalancedGroupsWarning {
	return &UnbalancedGroupsWarning{Op: op, Sizes: sizes, Message: message}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// MissingContrastError reports a categorical factor for which no contrast
// coding can be resolved, for example a factor with fewer than two observed
// levels or a custom coding whose shape does not match the factor.
type MissingContrastError struct {
	Factor string
	Reason string
}

func (e *MissingContrastError) Error() string {
	return fmt.Sprintf("glm: factor '%s': no usable contrast coding: %s", e.Factor, e.Reason)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *MissingContrastError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("factor", e.Factor).
		Str("reason", e.Reason).
		Str("type", "MissingContrastError")
}

// NewMissingContrastError creates a new MissingContrastError with a stack trace.
func NewMissingContrastError(factor, reason string) error {
	err := &MissingContrastError{Factor: factor, Reason: reason}
	return errors.WithStack(err)
}

// RankDeficientError reports a design matrix whose columns are linearly
// dependent. The solver refuses to pick an arbitrary solution, so the caller
// must drop or re-code the offending terms.
type RankDeficientError struct {
	Op   string
	Rank int
	Cols int
}

func (e *RankDeficientError) Error() string {
	return fmt.Sprintf("glm: %s: design matrix is rank deficient (rank %d < %d columns); drop or re-code aliased terms", e.Op, e.Rank, e.Cols)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *RankDeficientError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("rank", e.Rank).
		Int("columns", e.Cols).
		Str("type", "RankDeficientError")
}

// NewRankDeficientError creates a new RankDeficientError with a stack trace.
func NewRankDeficientError(op string, rank, cols int) error {
	err := &RankDeficientError{Op: op, Rank: rank, Cols: cols}
	return errors.WithStack(err)
}

// InvalidComparisonError reports a model comparison whose inputs do not form
// a valid nested pair, for example models fit to different responses or a
// "restricted" model that is not a column subspace of the general one.
type InvalidComparisonError struct {
	Op     string
	Reason string
}

func (e *InvalidComparisonError) Error() string {
	return fmt.Sprintf("glm: %s: models are not comparable: %s", e.Op, e.Reason)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *InvalidComparisonError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "InvalidComparisonError")
}

// NewInvalidComparisonError creates a new InvalidComparisonError with a stack trace.
func NewInvalidComparisonError(op, reason string) error {
	err := &InvalidComparisonError{Op: op, Reason: reason}
	return errors.WithStack(err)
}

// DimensionError reports an input whose dimensions differ from what the
// operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("glm: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// MissingDataError reports a missing value in a column referenced by a model
// term. Rows are zero-indexed.
type MissingDataError struct {
	Column string
	Row    int
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("glm: column '%s': missing value at row %d", e.Column, e.Row)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *MissingDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Int("row", e.Row).
		Str("type", "MissingDataError")
}

// NewMissingDataError creates a new MissingDataError with a stack trace.
func NewMissingDataError(column string, row int) error {
	err := &MissingDataError{Column: column, Row: row}
	return errors.WithStack(err)
}

// ValidationError reports a parameter that failed validation. It is more
// specific than ValueError about which parameter is at fault.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("glm: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("glm: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general error raised by a model operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("glm: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("glm: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a new ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives no observations.
	ErrEmptyData = New("empty data")
)
