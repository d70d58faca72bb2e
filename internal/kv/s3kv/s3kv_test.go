package s3kv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Endpoint: "http://localhost:9000", Bucket: "boards"}, ""},
		{"missing endpoint", Config{Bucket: "boards"}, "endpoint is required"},
		{"bad endpoint", Config{Endpoint: "http://[::1", Bucket: "boards"}, "invalid S3 endpoint"},
		{"missing bucket", Config{Endpoint: "http://localhost:9000"}, "bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ObjectKey(t *testing.T) {
	assert.Equal(t, "kanban-board-v1.json", Config{}.objectKey("kanban-board-v1"))
	assert.Equal(t, "team/a/kanban-board-v1.json", Config{Prefix: "team/a/"}.objectKey("kanban-board-v1"))
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{
		Endpoint:     "http://localhost:9000",
		Bucket:       "boards",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, s.client)
	assert.NoError(t, s.Close())

	_, err = New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("connection refused")))
}
