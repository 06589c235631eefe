package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	cases := map[string]ByteSize{
		"0":       0,
		"1024":    1 * KiB,
		"64Ki":    64 * KiB,
		"64KiB":   64 * KiB,
		"4MB":     4 * MB,
		"1.5Gi":   ByteSize(1.5 * float64(GiB)),
		"2T":      2 * TB,
		" 512 b ": 512,
	}
	for input, want := range cases {
		got, err := ParseByteSize(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestParseByteSizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "Ki", "12Qi", "1.5", "-3Mi", "1..2Ki"} {
		_, err := ParseByteSize(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("128Ki")))
	assert.Equal(t, 128*KiB, b)

	assert.Error(t, b.UnmarshalText([]byte("huge")))
}

func TestStringPicksBinaryUnit(t *testing.T) {
	assert.Equal(t, "512B", ByteSize(512).String())
	assert.Equal(t, "64.00KiB", (64 * KiB).String())
	assert.Equal(t, "1.50MiB", ByteSize(1.5*float64(MiB)).String())
	assert.Equal(t, "2.00GiB", (2 * GiB).String())
}
