package models

import (
	"sort"
	"time"
)

// AccountConfig is one [[aws.accounts]] entry of the config file
type AccountConfig struct {
	RoleARN string   `toml:"iam_role"`
	Regions []string `toml:"regions"`
	VpcIDs  []string `toml:"vpc_ids"`
}

// Credentials is an immutable snapshot of temporary credentials for one account
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ExpiresAt       time.Time
}

// Expired reports whether the credentials must no longer be used
func (c Credentials) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// VPCFilter restricts results to a set of VPC IDs. An empty filter allows every VPC.
type VPCFilter map[string]struct{}

// NewVPCFilter builds a filter from a list of VPC IDs, ignoring blanks
func NewVPCFilter(ids []string) VPCFilter {
	f := make(VPCFilter, len(ids))
	for _, id := range ids {
		if id != "" {
			f[id] = struct{}{}
		}
	}
	return f
}

// Enabled reports whether the filter restricts anything
func (f VPCFilter) Enabled() bool {
	return len(f) > 0
}

// Allows reports whether a resource in the given VPC passes the filter
func (f VPCFilter) Allows(vpcID string) bool {
	if !f.Enabled() {
		return true
	}
	_, ok := f[vpcID]
	return ok
}

// IDs returns the filter members in sorted order
func (f VPCFilter) IDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AccountContext is everything a scan needs for one account.
// Credentials are nil when the ambient default credential chain is used.
type AccountContext struct {
	AccountID   string
	Alias       string
	RoleARN     string
	Credentials *Credentials
	Regions     []string
	VPCFilter   VPCFilter
}

// Label returns a display name for logs and report headers
func (a *AccountContext) Label() string {
	switch {
	case a.Alias != "" && a.AccountID != "":
		return a.Alias + " (" + a.AccountID + ")"
	case a.AccountID != "":
		return a.AccountID
	default:
		return "default"
	}
}

// Release discards the credential snapshot once the account pipeline is done
func (a *AccountContext) Release() {
	a.Credentials = nil
}

// AccountResult collects everything one account pipeline produced
type AccountResult struct {
	Account  AccountContext
	Scanned  bool // false when credentials could not be checked out
	Records  []ResourceRecord
	Outcomes []DeletionOutcome
	Err      error
}
