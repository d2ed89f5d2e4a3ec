package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Journera/glutil/core/awsconf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/smithy-go"
)

// ErrorKind classifies configuration errors.
type ErrorKind string

const (
	KindProfileNotFound ErrorKind = "ProfileNotFound"
	KindAccessDenied    ErrorKind = "AccessDenied"
	KindEntityNotFound  ErrorKind = "EntityNotFound"
)

// ConfigError is raised when a partitioner or cleaner cannot be set up: the
// profile is unknown, access is denied, or the database/table does not exist.
type ConfigError struct {
	Kind     ErrorKind
	Database string
	Table    string
	Profile  string
	Message  string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Hint returns an actionable suggestion for the user.
func (e *ConfigError) Hint() string {
	switch e.Kind {
	case KindProfileNotFound:
		return fmt.Sprintf("Confirm that %s is a locally configured aws profile.", e.Profile)
	case KindAccessDenied:
		if e.Profile != "" {
			return fmt.Sprintf("Confirm that %s has the glue:GetTable and glue:GetTables permissions.", e.Profile)
		}
		return "Did you mean to run this with a profile specified?"
	case KindEntityNotFound:
		if e.Table != "" {
			return fmt.Sprintf("Confirm %s.%s exists, and you have the ability to access it.", e.Database, e.Table)
		}
		return fmt.Sprintf("Confirm %s exists, and you have the ability to access it.", e.Database)
	}
	return ""
}

// Classify turns setup-time errors into a *ConfigError when they are
// recognized. Other errors are returned unchanged.
func Classify(err error, database, table, profile string) error {
	if err == nil {
		return nil
	}
	ce := &ConfigError{Database: database, Table: table, Profile: profile, Err: err}

	var denied *types.AccessDeniedException
	var notFound *types.EntityNotFoundException
	switch {
	case errors.Is(err, awsconf.ErrProfileNotFound):
		ce.Kind = KindProfileNotFound
		ce.Message = fmt.Sprintf("aws profile %q not found", profile)
	case errors.As(err, &denied) || hasCode(err, "AccessDeniedException"):
		ce.Kind = KindAccessDenied
		ce.Message = "you do not have permission to read the catalog"
	case errors.As(err, &notFound) || hasCode(err, "EntityNotFoundException"):
		ce.Kind = KindEntityNotFound
		if table != "" {
			ce.Message = fmt.Sprintf("no table %s.%s found", database, table)
		} else {
			ce.Message = fmt.Sprintf("no database %s found", database)
		}
	default:
		return err
	}
	return ce
}

// IsNotFound reports whether err is a Glue EntityNotFoundException.
func IsNotFound(err error) bool {
	var notFound *types.EntityNotFoundException
	return errors.As(err, &notFound) || hasCode(err, "EntityNotFoundException")
}

func hasCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

// IncompleteError is returned by a chunked mutation that stopped after Sent
// items had been handed to the catalog.
type IncompleteError struct {
	Sent int
	Err  error
}

func (e *IncompleteError) Error() string {
	return e.Err.Error()
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

// SentBefore returns how many items err reports as sent, or zero when err
// carries no count.
func SentBefore(err error) int {
	var ie *IncompleteError
	if errors.As(err, &ie) {
		return ie.Sent
	}
	return 0
}

// ItemError is a per-item failure reported by a batched catalog call.
// Values identify a partition; Table identifies a table.
type ItemError struct {
	Values  []string `json:"values,omitempty"`
	Table   string   `json:"table,omitempty"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// Subject renders what the error is about.
func (e ItemError) Subject() string {
	if e.Table != "" {
		return e.Table
	}
	return "[" + strings.Join(e.Values, ", ") + "]"
}

// ItemErrorFrom builds an ItemError from a returned error.
func ItemErrorFrom(values []string, err error) ItemError {
	ie := ItemError{Values: values, Code: "Unknown", Message: err.Error()}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ie.Code = apiErr.ErrorCode()
		ie.Message = apiErr.ErrorMessage()
	}
	return ie
}

// PartitionErrors converts the per-item errors of a batch partition call.
func PartitionErrors(errs []types.PartitionError) []ItemError {
	out := make([]ItemError, 0, len(errs))
	for _, e := range errs {
		ie := ItemError{Values: e.PartitionValues}
		if e.ErrorDetail != nil {
			ie.Code = aws.ToString(e.ErrorDetail.ErrorCode)
			ie.Message = aws.ToString(e.ErrorDetail.ErrorMessage)
		}
		out = append(out, ie)
	}
	return out
}

// TableErrors converts the per-item errors of a batch table call.
func TableErrors(errs []types.TableError) []ItemError {
	out := make([]ItemError, 0, len(errs))
	for _, e := range errs {
		ie := ItemError{Table: aws.ToString(e.TableName)}
		if e.ErrorDetail != nil {
			ie.Code = aws.ToString(e.ErrorDetail.ErrorCode)
			ie.Message = aws.ToString(e.ErrorDetail.ErrorMessage)
		}
		out = append(out, ie)
	}
	return out
}
