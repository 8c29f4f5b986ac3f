package model

// MaxCommandLength bounds the command name accepted for dispatch, in bytes.
const MaxCommandLength = 100

type OutcomeKind int

const (
	OutcomePlainText OutcomeKind = iota
	OutcomeHandled
	OutcomeUnrecognized
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePlainText:
		return "plain_text"
	case OutcomeHandled:
		return "handled"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type RejectReason string

const RejectTooLong RejectReason = "too_long"

// Outcome describes how one inbound text was routed.
type Outcome struct {
	Kind    OutcomeKind
	Command string       // set for Handled and Unrecognized
	Reason  RejectReason // set for Rejected
	// Response is the last response a handler chose to return, if any.
	Response Response
}

func PlainText() Outcome { return Outcome{Kind: OutcomePlainText} }

func Handled(name string, resp Response) Outcome {
	return Outcome{Kind: OutcomeHandled, Command: name, Response: resp}
}

func Unrecognized(name string) Outcome {
	return Outcome{Kind: OutcomeUnrecognized, Command: name}
}

func Rejected(reason RejectReason) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}
