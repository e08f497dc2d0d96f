package aws

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/younsl/idlelb/internal/models"
)

// ErrorCode returns the AWS API error code wrapped in err, or "" for non-API errors
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// tagExpired turns a call that failed on expired credentials into a
// credential error and leaves every other error alone
func tagExpired(err error) error {
	if errors.Is(err, ErrCredentialsExpired) {
		return models.NewCredentialError("", err)
	}
	return err
}
