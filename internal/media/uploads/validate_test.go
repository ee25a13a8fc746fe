package uploads

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansionapp/mansion-server/internal/domain"
)

// pngBytes encodes a small solid-color PNG for test uploads.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// mp4Bytes returns bytes that start with a recognized MP4 signature.
func mp4Bytes() []byte {
	header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}
	return append(header, bytes.Repeat([]byte{0x01}, 64)...)
}

func TestExt(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "jpg"},
		{"PHOTO.JPG", "jpg"},
		{"clip.MP4", "mp4"},
		{"archive.tar.gz", "gz"},
		{"noextension", ""},
		{"", ""},
		{".hidden", "hidden"},
		{"dir/photo.png", "png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Ext(tt.filename), "Ext(%q)", tt.filename)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ext      string
		wantType domain.MediaType
		wantOK   bool
	}{
		{"jpg", domain.MediaImage, true},
		{"jpeg", domain.MediaImage, true},
		{"png", domain.MediaImage, true},
		{"gif", domain.MediaImage, true},
		{"webp", domain.MediaImage, true},
		{"mp4", domain.MediaVideo, true},
		{"webm", domain.MediaVideo, true},
		{"mov", domain.MediaVideo, true},
		{"exe", "", false},
		{"svg", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		mediaType, ok := Classify(tt.ext)
		assert.Equal(t, tt.wantOK, ok, "Classify(%q)", tt.ext)
		assert.Equal(t, tt.wantType, mediaType, "Classify(%q)", tt.ext)
	}
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(bytes.NewReader(pngBytes(t, 8, 8))))
}

func TestValidateImageRejectsGarbage(t *testing.T) {
	assert.Error(t, ValidateImage(bytes.NewReader([]byte("this is not an image"))))
}

func TestValidateImageRejectsTruncated(t *testing.T) {
	data := pngBytes(t, 64, 64)
	assert.Error(t, ValidateImage(bytes.NewReader(data[:len(data)/2])))
}

func TestValidateVideo(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"mp4 short ftyp", mp4Bytes(), false},
		{"mp4 long ftyp", append([]byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}, 0x00), false},
		{"webm ebml", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, false},
		{"renamed text file", []byte("definitely not a video file"), true},
		{"empty", nil, true},
		{"short but matching", []byte{0x1A, 0x45, 0xDF, 0xA3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideo(bytes.NewReader(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
