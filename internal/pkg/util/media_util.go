package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
)

const avatarSize = 512

// GetSafeContentType 读取文件头嗅探真实类型，读取位置复位后返回
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := reader.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// NormalizeAvatar 解码图片并裁剪成方形头像，统一输出 JPEG
func NormalizeAvatar(reader io.Reader) (*bytes.Buffer, int64, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("图片解码失败: %w", err)
	}

	thumb := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, 0, fmt.Errorf("图片编码失败: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}
