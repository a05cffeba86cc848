package errors

import "errors"

var (
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrInvalidCandidateInput  = errors.New("invalid candidate input")
	ErrCandidateReferenced    = errors.New("candidate is referenced by ballots")
	ErrInvalidImportFile      = errors.New("invalid import file")
	ErrUnknownQualifiedTarget = errors.New("qualified set references unknown candidate")
)
