package awsutil

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

// ErrAWS is a stand-in for SDK errors in tests.
type ErrAWS struct {
	CodeF    string
	MessageF string
	OrigErrF error
}

var _ awserr.Error = ErrAWS{}

func (e ErrAWS) Error() string {
	return fmt.Sprintf("%s: %s", e.CodeF, e.MessageF)
}

func (e ErrAWS) Code() string {
	return e.CodeF
}

func (e ErrAWS) Message() string {
	return e.MessageF
}

func (e ErrAWS) OrigErr() error {
	return e.OrigErrF
}

// ErrCode returns the AWS error code of err, or "" when err did not come from the SDK.
func ErrCode(err error) string {
	if e, ok := err.(awserr.Error); ok {
		return e.Code()
	}
	return ""
}
