package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the fulfillment state shared by orders, batches and order items.
//
// The numeric order is the tie-breaking ordinal used by Rollup, not a
// severity scale:
//
//	Submitted < Accepted < InProduction < Suspended < Cancelled <
//	Completed < Failed < Terminated < Downloaded
//
// The textual values are the ordering protocol vocabulary and are persisted
// verbatim.
type Status int

const (
	// Unknown catches uninitialized values. It never appears in storage.
	Unknown Status = iota
	Submitted
	Accepted
	InProduction
	Suspended
	Cancelled
	Completed
	Failed
	Terminated
	Downloaded
)

var statusNames = map[Status]string{
	Submitted:    "Submitted",
	Accepted:     "Accepted",
	InProduction: "InProduction",
	Suspended:    "Suspended",
	Cancelled:    "Cancelled",
	Completed:    "Completed",
	Failed:       "Failed",
	Terminated:   "Terminated",
	Downloaded:   "Downloaded",
}

// ParseStatus maps a persisted status name back to its Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsTerminal reports whether the status can only be left through an
// explicit retry.
func (s Status) IsTerminal() bool {
	switch s { //nolint:exhaustive // only terminal values are listed
	case Completed, Failed, Terminated, Downloaded, Cancelled:
		return true
	default:
		return false
	}
}

// Rollup derives a parent status from the statuses of its children:
//
//  1. any Failed child makes the parent Failed;
//  2. children sharing one status give the parent that status;
//  3. otherwise the least advanced (lowest ordinal) child status wins.
//
// The boolean is false when there are no children, in which case the parent
// status must be left untouched.
func Rollup(children []Status) (Status, bool) {
	if len(children) == 0 {
		return Unknown, false
	}

	lowest := children[0]
	for _, s := range children {
		if s == Failed {
			return Failed, true
		}
		if s < lowest {
			lowest = s
		}
	}
	return lowest, true
}
