// Package github provides the forge client used to create and maintain
// the pull requests backing a stack.
package github

import "fmt"

// PRState is the lifecycle state of a pull request.
type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
	PRStateDraft  PRState = "DRAFT"
)

// prStateFrom maps the forge's (state, isDraft, merged) triple onto PRState.
func prStateFrom(state string, draft, merged bool) PRState {
	switch {
	case merged || state == "MERGED":
		return PRStateMerged
	case state == "CLOSED":
		return PRStateClosed
	case draft:
		return PRStateDraft
	default:
		return PRStateOpen
	}
}

// IsClosed reports whether the PR can no longer be updated in place.
func (s PRState) IsClosed() bool {
	switch s {
	case PRStateClosed, PRStateMerged:
		return true
	case PRStateOpen, PRStateDraft:
		return false
	}
	return false
}

// String implements fmt.Stringer.
func (s PRState) String() string {
	return string(s)
}

// PullRequestInfo contains the fields of a pull request the stack cares
// about. A plain struct so callers are not coupled to the go-github types.
type PullRequestInfo struct {
	Number  int
	NodeID  string
	HTMLURL string
	Title   string
	Body    string
	State   PRState
	Base    string
	Head    string
	HeadSHA string
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// UpdatePROptions contains options for updating a pull request. Nil fields
// are left unchanged.
type UpdatePROptions struct {
	Title *string
	Body  *string
	Base  *string
}

// BaseUpdate retargets one PR onto a new base branch.
type BaseUpdate struct {
	PRNumber int
	Base     string
}

func (u BaseUpdate) String() string {
	return fmt.Sprintf("#%d -> %s", u.PRNumber, u.Base)
}

// BodyUpdate rewrites one PR body.
type BodyUpdate struct {
	PRNumber int
	Body     string
}
