package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	return img
}

// PNGBytes returns a small valid PNG.
func PNGBytes() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEGBytes returns a small valid JPEG.
func JPEGBytes() []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sampleImage(), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// GIFBytes returns a small valid GIF, which listings do not accept.
func GIFBytes() []byte {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, sampleImage(), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func PNGFile(name string) domain.ImageFile {
	return domain.ImageFile{Filename: name, ContentType: "image/png", Data: PNGBytes()}
}

func JPEGFile(name string) domain.ImageFile {
	return domain.ImageFile{Filename: name, ContentType: "image/jpeg", Data: JPEGBytes()}
}

func GIFFile(name string) domain.ImageFile {
	return domain.ImageFile{Filename: name, ContentType: "image/gif", Data: GIFBytes()}
}
