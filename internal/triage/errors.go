package triage

import "errors"

// ErrorKind names a class of triage failure.
type ErrorKind string

const (
	KindEmptyInput    ErrorKind = "EmptyInputError"
	KindNoCorpus      ErrorKind = "NoCorpusError"
	KindVectorization ErrorKind = "VectorizationError"
	KindRuleEngine    ErrorKind = "RuleEngineError"
	KindUnknown       ErrorKind = "UnknownError"
)

var (
	// ErrEmptyInput is returned for blank conversations, blank issues or too few documents.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoCorpus is returned when there is no historical corpus to compare against.
	ErrNoCorpus = errors.New("no historical corpus")
	// ErrVectorization is returned when the input batch yields no vocabulary.
	ErrVectorization = errors.New("vectorization failed")
	// ErrRuleEngine signals an invalid rule table. It indicates a configuration defect.
	ErrRuleEngine = errors.New("rule engine misconfigured")
)

// KindOf classifies err into one of the triage error kinds.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrNoCorpus):
		return KindNoCorpus
	case errors.Is(err, ErrVectorization):
		return KindVectorization
	case errors.Is(err, ErrRuleEngine):
		return KindRuleEngine
	default:
		return KindUnknown
	}
}
