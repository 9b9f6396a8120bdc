// Package store persists analysis results: one directory per run holding the
// SARIF log and the gate verdict.
package store

import (
	"context"
	"errors"

	"github.com/chris-regnier/jinspect/internal/sarif"
)

var (
	// ErrNotFound is returned when a run or its verdict does not exist.
	ErrNotFound = errors.New("result not found")
	// ErrInvalidID is returned for ids that would escape the store directory.
	ErrInvalidID = errors.New("invalid result id")
)

// Gate decisions.
const (
	DecisionMerge  = "merge"
	DecisionReview = "review"
	DecisionReject = "reject"
)

type Verdict struct {
	Decision         string                 `json:"decision"`
	Reason           string                 `json:"reason"`
	RelevantFindings []sarif.Result         `json:"relevant_findings,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Store interface {
	WriteSARIF(ctx context.Context, doc *sarif.Log) (string, error)
	WriteVerdict(ctx context.Context, id string, verdict *Verdict) error
	ReadSARIF(ctx context.Context, id string) (*sarif.Log, error)
	ReadVerdict(ctx context.Context, id string) (*Verdict, error)
	// List returns run ids, newest first.
	List(ctx context.Context) ([]string, error)
}
