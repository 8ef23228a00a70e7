package b2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePartSize(t *testing.T) {
	assert.Equal(t, int64(100), effectivePartSize(0, 100, 5))
	assert.Equal(t, int64(50), effectivePartSize(50, 100, 5))
	assert.Equal(t, int64(5), effectivePartSize(1, 100, 5))
}

func TestEffectiveCutoff(t *testing.T) {
	assert.Equal(t, int64(100), effectiveCutoff(0, 100, 5))
	assert.Equal(t, int64(200), effectiveCutoff(200, 100, 5))
	assert.Equal(t, int64(5), effectiveCutoff(1, 100, 5))
}

func TestUseChunkedUpload(t *testing.T) {
	tests := []struct {
		name        string
		totalLength int64
		cutoff      int64
		partSize    int64
		want        bool
	}{
		{"well under cutoff", 10, 100, 100, false},
		{"exactly one part at cutoff", 100, 100, 100, false},
		{"over cutoff but still one part", 150, 100, 200, false},
		{"clears cutoff and part size", 250, 100, 100, true},
		{"zero length", 0, 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, useChunkedUpload(tt.totalLength, tt.cutoff, tt.partSize))
		})
	}
}

func TestPlanPartsCoversWithoutOverlap(t *testing.T) {
	const total, partSize = 2500, 1000

	parts, err := planParts(total, partSize)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	var pos int64
	for i, p := range parts {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, pos, p.Position)
		pos += p.Length
	}
	assert.Equal(t, int64(total), pos)
	assert.Equal(t, int64(500), parts[2].Length, "last part should be the short remainder")
	for _, p := range parts[:len(parts)-1] {
		assert.Equal(t, int64(partSize), p.Length)
	}
}

func TestPlanPartsExactMultiple(t *testing.T) {
	parts, err := planParts(2000, 1000)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, int64(1000), parts[0].Length)
	assert.Equal(t, int64(1000), parts[1].Length)
}

func TestPlanPartsRejectsNonPositive(t *testing.T) {
	_, err := planParts(0, 100)
	assert.Error(t, err)
	_, err = planParts(100, 0)
	assert.Error(t, err)
}

func TestPlanRangeParts(t *testing.T) {
	parts, err := planRangeParts(1500, 1000)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, int64(0), parts[0].Position)
	assert.Equal(t, int64(1000), parts[1].Position)
	assert.Equal(t, int64(500), parts[1].Length)
}
