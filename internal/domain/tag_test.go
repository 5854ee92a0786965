package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

func TestSanitizeTagName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{" Foo ", "Foo", false},
		{"Deep,Work", "DeepWork", false},
		{"  ,Read,  ", "Read", false},
		{"日本語", "日本語", false},
		{strings.Repeat("a", 60), strings.Repeat("a", 60), false},
		{strings.Repeat("a", 61), "", true},
		{"", "", true},
		{" , ", "", true},
		{"bad\x00name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeTagName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeTagName_CountsRunes(t *testing.T) {
	name := strings.Repeat("é", 60)
	got, err := SanitizeTagName(name)
	require.NoError(t, err)
	assert.Equal(t, name, got)
}

func TestSanitizeTagName_ComposesNFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	got, err := SanitizeTagName(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", got)
}

func TestNormalizeHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc", "#AABBCC", false},
		{"#abc", "#AABBCC", false},
		{"a1b2c3", "#A1B2C3", false},
		{"#A1b2C3", "#A1B2C3", false},
		{" #fff ", "#FFFFFF", false},
		{"zzz", "", true},
		{"#abcd", "", true},
		{"##abc", "", true},
		{"", "", true},
		{"rgb(0,0,0)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeHexColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultTags(t *testing.T) {
	require.Len(t, DefaultTags, 3)
	assert.Equal(t, DefaultTag{Name: "Study", Priority: 10}, DefaultTags[0])
	assert.Equal(t, DefaultTag{Name: "Sleep", Priority: 8}, DefaultTags[1])
	assert.Equal(t, DefaultTag{Name: "Hobby", Priority: 5}, DefaultTags[2])
}

func TestNormalizeUsername(t *testing.T) {
	got, err := NormalizeUsername("  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	for _, bad := range []string{"", "ab", "has space", strings.Repeat("x", 65)} {
		_, err := NormalizeUsername(bad)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, bad)
	}
}
