package resolver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayerARN(t *testing.T) {
	t.Run("versioned layer ARN", func(t *testing.T) {
		parsed, err := ParseLayerARN("arn:aws:lambda:us-east-1:553768241277:layer:qriostrace-nodejs18x:24")
		require.NoError(t, err)

		assert.Equal(t, "us-east-1", parsed.Region)
		assert.Equal(t, "553768241277", parsed.Account)
		assert.Equal(t, "qriostrace-nodejs18x", parsed.Name)
		assert.Equal(t, int64(24), parsed.Version)
	})

	t.Run("rejects malformed ARNs", func(t *testing.T) {
		for _, arn := range []string{
			"",
			"qriostrace-nodejs18x",
			"arn:aws:lambda:us-east-1:553768241277:layer:qriostrace-nodejs18x", // sin version
			"arn:aws:lambda:us-east-1:553768241277:function:mi-funcion:1",
			"arn:aws:s3:::mi-bucket",
		} {
			_, err := ParseLayerARN(arn)
			assert.Error(t, err, arn)
		}
	})

	t.Run("rejects non-numeric version", func(t *testing.T) {
		_, err := ParseLayerARN("arn:aws:lambda:us-east-1:553768241277:layer:qriostrace-nodejs18x:latest")
		assert.ErrorContains(t, err, "non-numeric")
	})
}

func TestParseCreatedDate(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		s := "2025-11-14T12:00:00Z"
		ts := parseCreatedDate(&s)
		require.NotNil(t, ts)
		assert.Equal(t, 2025, ts.Year())
	})

	t.Run("lambda iso8601 without colon in zone", func(t *testing.T) {
		// Formato real que devuelve ListLayerVersions.
		s := "2025-11-14T12:00:00.000+0000"
		ts := parseCreatedDate(&s)
		require.NotNil(t, ts)
		assert.Equal(t, time.November, ts.Month())
	})

	t.Run("nil and garbage", func(t *testing.T) {
		assert.Nil(t, parseCreatedDate(nil))
		s := "ayer a la tarde"
		assert.Nil(t, parseCreatedDate(&s))
	})
}

func TestLayerStatusUpToDate(t *testing.T) {
	assert.True(t, LayerStatus{PinnedVersion: 24, LatestVersion: 24}.UpToDate())
	assert.False(t, LayerStatus{PinnedVersion: 23, LatestVersion: 24}.UpToDate())
	assert.False(t, LayerStatus{PinnedVersion: 24, LatestVersion: 24, Err: errors.New("x")}.UpToDate())
}
