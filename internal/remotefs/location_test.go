package remotefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation_Schemes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		scheme string
		host   string
		path   string
		local  bool
	}{
		{"hdfs://host/out", "hdfs", "host", "/out", false},
		{"hdfs://nn:8020/out/", "hdfs", "nn:8020", "/out", false},
		{"HDFS://host", "hdfs", "host", "/", false},
		{"s3://bucket/prefix/a", "s3", "bucket", "/prefix/a", false},
		{"file:///tmp/out", "file", "", "/tmp/out", true},
		{"/tmp/out/", "", "", "/tmp/out", true},
		{"relative/dir", "", "", "relative/dir", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			loc, err := ParseLocation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, loc.Scheme)
			assert.Equal(t, tt.host, loc.Host)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.local, loc.IsLocal())
		})
	}
}

func TestParseLocation_Empty(t *testing.T) {
	t.Parallel()

	_, err := ParseLocation("  ")
	require.ErrorIs(t, err, ErrEmptyLocation)
}

func TestParseLocation_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseLocation("://nohost")
	require.Error(t, err)
}

func TestLocation_JoinAndString(t *testing.T) {
	t.Parallel()

	loc := MustParseLocation("hdfs://host/out")

	assert.Equal(t, "hdfs://host/out/data/sub", loc.Join("data").Join("sub").String())
	assert.Equal(t, "hdfs://host/out", loc.String(), "Join must not mutate the receiver")
	assert.Equal(t, "out", loc.Base())
	assert.Equal(t, "hdfs://host/", loc.Dir().String())
}

func TestLocation_StringLocal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/tmp/out", MustParseLocation("/tmp/out").String())
	assert.Equal(t, "file:///tmp/out", MustParseLocation("file:///tmp/out").String())
}

func TestLocation_Key(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "prefix/a.txt", MustParseLocation("s3://bucket/prefix/a.txt").Key())
	assert.Empty(t, MustParseLocation("s3://bucket").Key())
}
