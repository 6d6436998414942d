package util

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) *bytes.Reader {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestGetSafeContentType_SniffsRealType(t *testing.T) {
	req := require.New(t)
	reader := pngFixture(t, 16, 16)

	ct, err := GetSafeContentType(reader)
	req.NoError(err)
	req.Equal("image/png", ct)

	// 读取位置已复位，内容还能完整读出
	pos, err := reader.Seek(0, 1)
	req.NoError(err)
	req.Zero(pos)
}

func TestGetSafeContentType_NonImage(t *testing.T) {
	req := require.New(t)

	ct, err := GetSafeContentType(strings.NewReader("#!/bin/sh\necho hi\n"))
	req.NoError(err)
	req.False(strings.HasPrefix(ct, "image/"))
}

func TestNormalizeAvatar_SquareJPEGOutput(t *testing.T) {
	req := require.New(t)

	// 长方形输入也会被裁成方形
	buf, size, err := NormalizeAvatar(pngFixture(t, 800, 300))
	req.NoError(err)
	req.Equal(int64(buf.Len()), size)

	out, err := imaging.Decode(buf)
	req.NoError(err)
	req.Equal(avatarSize, out.Bounds().Dx())
	req.Equal(avatarSize, out.Bounds().Dy())
}

func TestNormalizeAvatar_RejectsGarbage(t *testing.T) {
	req := require.New(t)

	_, _, err := NormalizeAvatar(strings.NewReader("not an image"))
	req.Error(err)
}
