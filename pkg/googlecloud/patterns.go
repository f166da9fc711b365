package googlecloud

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsUnavailableError reports connectivity failures: the service is down,
// the call timed out or the transport gave up.
func IsUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch grpcCode(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return false
}

// IsRejectedError reports errors where Datastore received a write and refused
// it (validation, quota, permissions).
func IsRejectedError(err error) bool {
	switch grpcCode(err) {
	case codes.InvalidArgument, codes.ResourceExhausted, codes.PermissionDenied,
		codes.FailedPrecondition, codes.AlreadyExists, codes.Unauthenticated:
		return true
	}
	return false
}

func grpcCode(err error) codes.Code {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus().Code()
	}
	return status.Code(err)
}
