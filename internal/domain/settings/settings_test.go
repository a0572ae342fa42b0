package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, SingletonID, s.ID)
	assert.Equal(t, "#1D4ED8", s.HeaderBgColor)
	assert.Zero(t, s.Version)
	assert.Empty(t, s.Banners)
}

func TestRemoveBanner(t *testing.T) {
	tests := []struct {
		name    string
		banners []string
		url     string
		want    []string
	}{
		{
			name:    "removes matching",
			banners: []string{"a", "b", "c"},
			url:     "b",
			want:    []string{"a", "c"},
		},
		{
			name:    "unknown url is a no-op",
			banners: []string{"a", "b"},
			url:     "z",
			want:    []string{"a", "b"},
		},
		{
			name:    "empty list",
			banners: nil,
			url:     "a",
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveBanner(tt.banners, tt.url))
		})
	}
}
