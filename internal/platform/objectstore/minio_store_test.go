package objectstore

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"input key", "input/9f1c2d3e-0000-0000-0000-000000000000", "input/9f1c2d3e-0000-0000-0000-000000000000", false},
		{"output key", "output/9f1c2d3e-0000-0000-0000-000000000000", "output/9f1c2d3e-0000-0000-0000-000000000000", false},
		{"trims whitespace", "  input/abc  ", "input/abc", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"traversal", "input/../secrets", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := objectName(tc.key)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMapMinioError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapMinioError(missing, "get object"), ErrNotFound)

	noBucket := minio.ErrorResponse{Code: "NoSuchBucket", Message: "The specified bucket does not exist."}
	assert.ErrorIs(t, mapMinioError(noBucket, "get object"), ErrNotFound)

	// Errors without a service response code are network-level failures.
	network := errors.New("dial tcp: connection refused")
	assert.ErrorIs(t, mapMinioError(network, "put object"), ErrUnavailable)

	// Other service codes pass through with the operation attached.
	denied := minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied."}
	err := mapMinioError(denied, "put object")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "put object")
}
