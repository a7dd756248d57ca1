package assets

import (
	"bytes"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedBlueNoise(t *testing.T) {
	c := New()
	m, err := c.BlueNoise()
	require.NoError(t, err)
	assert.Equal(t, 256, m.Width)
	assert.Equal(t, 256, m.Height)
	assert.Len(t, m.Pix, 256*256)

	// every threshold level is represented
	seen := make(map[byte]bool)
	for _, v := range m.Pix {
		seen[v] = true
	}
	assert.Len(t, seen, 256)
}

func TestMaskTiles(t *testing.T) {
	m := &Mask{Width: 2, Height: 2, Pix: []byte{1, 2, 3, 4}}
	assert.Equal(t, byte(1), m.At(0, 0))
	assert.Equal(t, byte(2), m.At(3, 0))
	assert.Equal(t, byte(3), m.At(0, 5))
	assert.Equal(t, byte(4), m.At(7, 9))
}

func TestDecodedOnce(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	masks := make([]*Mask, 8)
	for i := range masks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := c.BlueNoise()
			assert.NoError(t, err)
			masks[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range masks[1:] {
		assert.Same(t, masks[0], m)
	}

	f1, err := c.Font()
	require.NoError(t, err)
	f2, err := c.Font()
	require.NoError(t, err)
	assert.Same(t, f1, f2)
}

func TestInjectedAssets(t *testing.T) {
	m := &Mask{Width: 1, Height: 1, Pix: []byte{128}}
	c := New(WithMask(m))
	got, err := c.BlueNoise()
	require.NoError(t, err)
	assert.Same(t, m, got)

	bad := New(WithFont([]byte("not a font")), WithBlueNoisePNG([]byte("not a png")))
	_, err = bad.Font()
	assert.Error(t, err)
	_, err = bad.BlueNoise()
	assert.Error(t, err)
}

func TestBlueNoisePNGOverride(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(gray.Pix, []byte{0, 50, 100, 150, 200, 250})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gray))

	m, err := New(WithBlueNoisePNG(buf.Bytes())).BlueNoise()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, byte(250), m.At(2, 1))
	assert.Equal(t, byte(150), m.At(3, 1))
}
