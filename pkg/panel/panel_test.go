package panel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewSize(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		wantW int
		wantH int
	}{
		{"landscape from wide native", Spec{Width: 800, Height: 480}, 800, 480},
		{"landscape from tall native", Spec{Width: 480, Height: 800}, 800, 480},
		{"portrait from wide native", Spec{Width: 800, Height: 480, Orientation: Portrait}, 480, 800},
		{"portrait from tall native", Spec{Width: 480, Height: 800, Orientation: Portrait}, 480, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.spec.ViewSize()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestOverscanClamped(t *testing.T) {
	o := Overscan{Left: -4, Right: 3, Top: 0, Bottom: -1}.Clamped()
	assert.Equal(t, Overscan{Left: 0, Right: 3, Top: 0, Bottom: 0}, o)
}

func TestParseEnums(t *testing.T) {
	o, err := ParseOrientation("Portrait")
	require.NoError(t, err)
	assert.Equal(t, Portrait, o)

	o, err = ParseOrientation("")
	require.NoError(t, err)
	assert.Equal(t, Landscape, o)

	_, err = ParseOrientation("sideways")
	assert.Error(t, err)

	s, err := ParseScaling("cover")
	require.NoError(t, err)
	assert.Equal(t, Cover, s)

	s, err = ParseScaling("smart-cover")
	require.NoError(t, err)
	assert.Equal(t, SmartCover, s)

	f, err := ParseOutputFormat("packed4bpp")
	require.NoError(t, err)
	assert.Equal(t, Packed4bpp, f)

	f, err = ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
}

func TestGetProfile(t *testing.T) {
	p, err := GetProfile(" Waveshare-7in3E ")
	require.NoError(t, err)
	assert.Equal(t, 800, p.Capabilities.Width)
	assert.Equal(t, Packed4bpp, p.Capabilities.Output)
	assert.Len(t, p.Palette(), 6)

	_, err = GetProfile("kindle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestProfilesHaveValidPalettes(t *testing.T) {
	for name, p := range ListProfiles() {
		assert.Len(t, p.Palette(), len(p.Capabilities.Colors), "profile %s has unparsable colours", name)
		if p.Capabilities.Output == Packed4bpp {
			assert.LessOrEqual(t, len(p.Capabilities.Colors), 16, "profile %s", name)
		}
	}
}

func TestProfileNamesSorted(t *testing.T) {
	names := ProfileNames()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
