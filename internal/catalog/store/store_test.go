package store_test

import (
	"testing"

	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"Histo", "%Histo%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\dir`, `%c:\\dir%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			require.Equal(t, tt.want, store.LikePattern(tt.term))
		})
	}
}
