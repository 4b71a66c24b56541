package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies errors that stop a run or a stage.
type FailureKind string

const (
	FailureConfiguration FailureKind = "configuration"
	FailureConnectivity  FailureKind = "connectivity"
	FailureStorage       FailureKind = "storage"
	FailureTransaction   FailureKind = "transaction"
	FailureReportSink    FailureKind = "report_sink"
)

// Failure is a typed error carrying its kind and the stage it belongs to.
type Failure struct {
	Kind  FailureKind
	Stage string
	Op    string
	Err   error
}

// NewFailure wraps err with a kind and operation name.
func NewFailure(kind FailureKind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

func (f *Failure) Error() string {
	msg := string(f.Kind) + " failure"
	if f.Stage != "" {
		msg += " in stage " + f.Stage
	}
	if f.Op != "" {
		msg += fmt.Sprintf(" (%s)", f.Op)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// InStage returns a copy of the failure bound to the given stage name.
func (f *Failure) InStage(stage string) *Failure {
	cp := *f
	cp.Stage = stage
	return &cp
}

// KindOf reports the kind of the first Failure in err's chain, or "" when none.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
