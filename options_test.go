package inksplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsValid(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		want   string
	}{
		{"canvas", func(o *Options) { o.CanvasWidth = 0 }, "canvas"},
		{"resolution", func(o *Options) { o.Resolution = -1 }, "resolution"},
		{"print size", func(o *Options) { o.PrintHeight = -2 }, "print size"},
		{"threshold", func(o *Options) { o.UnderbaseThreshold = 1.5 }, "underbase threshold"},
		{"font size", func(o *Options) { o.FontSize = 0 }, "font size"},
		{"registration", func(o *Options) { o.RegistrationSize = -0.1 }, "registration size"},
		{"match palette", func(o *Options) { o.ColorMatch, o.MatchPalette = true, " " }, "palette name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := DefaultOptions()
			tt.modify(&opt)
			err := opt.Validate()
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	opt := DefaultOptions()
	opt.Resolution = 0
	opt.FontSize = 0
	err := opt.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolution")
	assert.Contains(t, err.Error(), "font size")
}

func TestParseLocation(t *testing.T) {
	for in, want := range map[string]Location{"left": Left, "Right": Right, "center": Center, " centre ": Center} {
		l, err := ParseLocation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, l)
		// String round-trips.
		back, err := ParseLocation(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, back)
	}
	_, err := ParseLocation("back")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
