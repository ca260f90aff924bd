// Package errors provides sentinel errors and custom error types for the laminar application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates the command was not run inside a git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrDirtyWorkTree indicates uncommitted changes in the working tree
	ErrDirtyWorkTree = errors.New("uncommitted changes in working tree")

	// ErrNonLinearHistory indicates a merge commit inside the stack range
	ErrNonLinearHistory = errors.New("non-linear history")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrValidation indicates input the forge or laminar itself rejects; never retried
	ErrValidation = errors.New("validation failed")

	// ErrConnectivity indicates a remote or forge API failure
	ErrConnectivity = errors.New("connectivity failure")

	// ErrCorruptMetadata indicates commit metadata that could not be recovered
	ErrCorruptMetadata = errors.New("corrupt commit metadata")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// NonLinearHistoryError reports a merge commit found while walking the stack range.
type NonLinearHistoryError struct {
	SHA string
}

func (e *NonLinearHistoryError) Error() string {
	return fmt.Sprintf("merge commits are not supported in a stack: %s", e.SHA)
}

// Is returns true if the target error is ErrNonLinearHistory
func (e *NonLinearHistoryError) Is(target error) bool {
	return target == ErrNonLinearHistory
}

// NewNonLinearHistoryError creates a new NonLinearHistoryError
func NewNonLinearHistoryError(sha string) *NonLinearHistoryError {
	return &NonLinearHistoryError{SHA: sha}
}

// ValidationError represents input rejected by laminar or the forge.
// Validation errors are never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is returns true if the target error is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConnectivityError wraps a remote or forge API failure together with
// remediation text shown to the user.
type ConnectivityError struct {
	Op          string
	Remediation string
	Err         error
}

func (e *ConnectivityError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Remediation != "" {
		msg += "\n" + e.Remediation
	}
	return msg
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrConnectivity
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// NewConnectivityError creates a new ConnectivityError
func NewConnectivityError(op, remediation string, err error) *ConnectivityError {
	return &ConnectivityError{Op: op, Remediation: remediation, Err: err}
}

// CorruptMetadataError reports commit metadata that could not be parsed
// even after attempting first-object recovery.
type CorruptMetadataError struct {
	SHA     string
	Content string
}

func (e *CorruptMetadataError) Error() string {
	return fmt.Sprintf("metadata for commit %s is corrupt and could not be recovered", e.SHA)
}

// Is returns true if the target error is ErrCorruptMetadata
func (e *CorruptMetadataError) Is(target error) bool {
	return target == ErrCorruptMetadata
}

// NewCorruptMetadataError creates a new CorruptMetadataError
func NewCorruptMetadataError(sha, content string) *CorruptMetadataError {
	return &CorruptMetadataError{SHA: sha, Content: content}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
