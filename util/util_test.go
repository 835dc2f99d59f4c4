package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512B", FormatBytes(512))
	require.Equal(t, "1.5KiB", FormatBytes(1536))
	require.Equal(t, "2.0MiB", FormatBytes(2*MiB))
	require.Equal(t, "1.0GiB", FormatBytes(GiB))
}

func TestPlural(t *testing.T) {
	require.Equal(t, "1 dish", Plural(1, "dish", "dishes"))
	require.Equal(t, "0 dishes", Plural(0, "dish", "dishes"))
	require.Equal(t, "3 dishes", Plural(3, "dish", "dishes"))
}
