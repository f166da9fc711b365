package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

func TestClassifyDatastoreWrites(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		rejected bool
		down     bool
	}{
		{name: "quota", err: status.Error(codes.ResourceExhausted, "quota exceeded"), rejected: true},
		{name: "invalid", err: status.Error(codes.InvalidArgument, "entity too big"), rejected: true},
		{name: "unavailable", err: status.Error(codes.Unavailable, "connection reset"), down: true},
		{name: "cancelled call", err: status.Error(codes.Canceled, "context canceled")},
		{name: "internal", err: status.Error(codes.Internal, "backend error")},
		{name: "aborted", err: status.Error(codes.Aborted, "contention")},
		{name: "cancelled context", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrap(classifyDatastore, "button_presses.insert", true, tt.err)
			assert.Equal(t, tt.rejected, errors.Is(err, domain.ErrWriteRejected))
			assert.Equal(t, tt.down, errors.Is(err, domain.ErrStoreUnavailable))
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}
