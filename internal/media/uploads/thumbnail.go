package uploads

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// thumbnailMaxDim bounds both thumbnail dimensions. Aspect ratio is
// preserved and images already within bounds are not upscaled.
const thumbnailMaxDim = 400

// thumbnailSuffix is the fixed derived-name convention: the thumbnail of
// "uploads/images/x.png" lives at "uploads/images/x_thumb.jpg".
// Thumbnails are always JPEG regardless of the source format.
const thumbnailSuffix = "_thumb.jpg"

// ThumbnailPath returns the derived thumbnail path for an original image
// path.
func ThumbnailPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + thumbnailSuffix
}

// GenerateThumbnail decodes the image at imagePath and writes a
// bounded-dimension JPEG thumbnail alongside it under the derived name.
func GenerateThumbnail(imagePath string) error {
	src, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	thumb := fitWithin(img, thumbnailMaxDim)

	out, err := os.Create(ThumbnailPath(imagePath))
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		out.Close()
		os.Remove(out.Name())
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Close()
}

// fitWithin scales an image down so both dimensions fit within maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged.
func fitWithin(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if srcW <= maxDim && srcH <= maxDim {
		return img
	}

	var dstW, dstH int
	if srcW >= srcH {
		dstW = maxDim
		dstH = max(srcH*maxDim/srcW, 1)
	} else {
		dstH = maxDim
		dstW = max(srcW*maxDim/srcH, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
