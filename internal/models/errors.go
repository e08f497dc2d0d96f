package models

import (
	"fmt"
)

// ErrorKind classifies failures by the scope they abort
type ErrorKind int

const (
	// KindConfig aborts the run before any scanning
	KindConfig ErrorKind = iota + 1
	// KindCredential aborts one account
	KindCredential
	// KindListing aborts one region
	KindListing
	// KindMetricQuery is recovered locally and folded into Inactive
	KindMetricQuery
	// KindDeletion is recorded in a DeletionOutcome
	KindDeletion
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCredential:
		return "credential"
	case KindListing:
		return "listing"
	case KindMetricQuery:
		return "metric query"
	case KindDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its kind and the scope it happened in
type Error struct {
	Kind    ErrorKind
	Account string
	Region  string
	Err     error
}

func (e *Error) Error() string {
	scope := ""
	switch {
	case e.Account != "" && e.Region != "":
		scope = fmt.Sprintf(" [account %s, region %s]", e.Account, e.Region)
	case e.Account != "":
		scope = fmt.Sprintf(" [account %s]", e.Account)
	case e.Region != "":
		scope = fmt.Sprintf(" [region %s]", e.Region)
	}
	return fmt.Sprintf("%s error%s: %v", e.Kind, scope, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError wraps a configuration failure
func NewConfigError(err error) error {
	return &Error{Kind: KindConfig, Err: err}
}

// NewCredentialError wraps a role assumption or expiry failure for an account
func NewCredentialError(account string, err error) error {
	return &Error{Kind: KindCredential, Account: account, Err: err}
}

// NewListingError wraps an inventory failure for a region
func NewListingError(account, region string, err error) error {
	return &Error{Kind: KindListing, Account: account, Region: region, Err: err}
}

// IsKind reports whether err, or any error it wraps or joins, has the given kind
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return IsKind(u.Unwrap(), kind)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if IsKind(inner, kind) {
				return true
			}
		}
	}
	return false
}

// NewMetricQueryError wraps a failed metric query before it is logged
func NewMetricQueryError(err error) error {
	return &Error{Kind: KindMetricQuery, Err: err}
}

// NewDeletionError wraps a failed delete call
func NewDeletionError(account, region string, err error) error {
	return &Error{Kind: KindDeletion, Account: account, Region: region, Err: err}
}
