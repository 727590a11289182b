package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDRange_Size(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(5), IDRange{Start: 1, End: 5}.Size())
	require.Equal(t, int64(1), IDRange{Start: 7, End: 7}.Size())
	require.Equal(t, int64(0), IDRange{Start: 8, End: 7}.Size())
	require.True(t, IDRange{Start: 8, End: 7}.Empty())
	require.False(t, IDRange{Start: 7, End: 7}.Empty())
}

func TestIDRange_Rest(t *testing.T) {
	t.Parallel()

	r := IDRange{Start: 1, End: 4}
	rest := r.Rest()
	require.Equal(t, IDRange{Start: 2, End: 4}, rest)
	require.Equal(t, int64(3), rest.Size())

	single := IDRange{Start: 9, End: 9}
	require.True(t, single.Rest().Empty())
}

func TestIDRange_Contains(t *testing.T) {
	t.Parallel()

	r := IDRange{Start: 6, End: 10}
	require.True(t, r.Contains(6))
	require.True(t, r.Contains(10))
	require.False(t, r.Contains(5))
	require.False(t, r.Contains(11))
}

func TestIDRange_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       IDRange
		size    int64
		wantErr bool
	}{
		{name: "exact", r: IDRange{Start: 1, End: 5}, size: 5},
		{name: "second batch", r: IDRange{Start: 6, End: 10}, size: 5},
		{name: "short", r: IDRange{Start: 1, End: 4}, size: 5, wantErr: true},
		{name: "starts at zero", r: IDRange{Start: 0, End: 4}, size: 5, wantErr: true},
		{name: "empty", r: IDRange{Start: 5, End: 4}, size: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate(tt.size)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRange)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIDRange_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[6, 10]", IDRange{Start: 6, End: 10}.String())
}
