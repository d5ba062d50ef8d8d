package storage

import (
	"bytes"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, card ResultCard, x, y int) color.NRGBA {
	t.Helper()
	img := imaging.Clone(RenderCard(card))
	return img.NRGBAAt(x, y)
}

func TestRenderCard(t *testing.T) {
	card := ResultCard{Score: 75, Correct: 3, Total: 4}
	img := RenderCard(card)
	assert.Equal(t, cardWidth, img.Bounds().Dx())
	assert.Equal(t, cardHeight, img.Bounds().Dy())

	// полоса заполнена на 75%: начало цветное, конец пустой дорожки
	assert.Equal(t, ScoreColor(75), at(t, card, cardPadding+1, 90))
	assert.Equal(t, trackColor, at(t, card, cardWidth-cardPadding-2, 90))

	// первые клетки верные, последняя нет
	assert.Equal(t, correctColor, at(t, card, cardPadding+1, 181))
	last := cardPadding + 3*(60+6) + 1
	assert.Equal(t, wrongColor, at(t, card, last, 181))
}

func TestRenderCard_EmptyTest(t *testing.T) {
	card := ResultCard{}
	assert.Equal(t, trackColor, at(t, card, cardPadding+1, 90))
	assert.Equal(t, cardBackground, at(t, card, cardPadding+1, 181))
}

func TestEncodeCard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCard(&buf, ResultCard{Score: 100, Correct: 2, Total: 2}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestStorage_SaveCard(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	path, err := s.SaveCard(uuid.New(), uuid.New(), ResultCard{Score: 40, Correct: 2, Total: 5})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	thumb, err := imaging.Open(s.GetThumbnailPath(path))
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
}
