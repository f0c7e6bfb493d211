// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holoviews/hvpack/internal/build"
	"github.com/holoviews/hvpack/internal/issue"
	"github.com/holoviews/hvpack/internal/stage"
	"github.com/holoviews/hvpack/internal/version"
	"github.com/holoviews/hvpack/pkg/descriptor"
	"github.com/holoviews/hvpack/pkg/types"
)

// ServiceError carries an issue catalog ID alongside the failure so the CLI
// layer can print the matching help text. Create it with newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, StyledMessage: styledMessage}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to its issue catalog entry and exit code.
// An issue ID already attached through a ServiceError wins over the
// sentinel-based classification.
func classifyError(err error) (issue.Id, types.ExitCode) {
	var (
		id   issue.Id
		code = types.ExitFailure
	)
	switch {
	case errors.Is(err, stage.ErrMissingDirectory):
		id, code = issue.PseudoPackageMissingId, types.ExitPseudoPackage
	case errors.Is(err, stage.ErrEmptyDirectory):
		id, code = issue.PseudoPackageEmptyId, types.ExitPseudoPackage
	case errors.Is(err, version.ErrVersionMismatch):
		id, code = issue.VersionMismatchId, types.ExitVersionMismatch
	case errors.Is(err, descriptor.ErrInvalidDescriptor):
		id = issue.DescriptorInvalidId
	case errors.Is(err, build.ErrMissingPackage):
		id = issue.BuildFailedId
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.IssueID != 0 {
		id = svcErr.IssueID
	}
	return id, code
}

// failCommand prints err with its catalog help and returns the ExitError
// that carries the exit code back to Execute.
func (a *App) failCommand(cmd *cobra.Command, err error, verbose bool) error {
	id, code := classifyError(err)

	msg := fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.StyledMessage != "" {
		msg = svcErr.StyledMessage
	}
	renderServiceError(a.stderr, newServiceError(err, id, msg), a.issueStyle)

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: code, Err: err}
}

// renderServiceError prints the styled message, then the catalog entry.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if entry := issue.Get(svcErr.IssueID); entry != nil {
		if style == "" {
			style = "dark"
		}
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			fmt.Fprintf(stderr, "%s render help for issue %d: %v\n", WarningStyle.Render("!"), svcErr.IssueID, renderErr)
			writePlainIssue(stderr, entry)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// writePlainIssue prints the raw Markdown of entry and its documentation
// links when the glamour renderer is unavailable.
func writePlainIssue(w io.Writer, entry *issue.Issue) {
	fmt.Fprintln(w, strings.TrimSpace(string(entry.MarkdownMsg())))
	for _, link := range entry.DocLinks() {
		fmt.Fprintf(w, "See also: %s\n", link)
	}
}

// formatErrorForDisplay uses ActionableError.Format when available so
// suggestions are shown; verbose adds the cause chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
