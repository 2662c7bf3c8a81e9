package wgpurender

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/orbview/orbview"
)

// maxTextureEdge bounds uploaded textures; larger source images are
// scaled down.
const maxTextureEdge = 1024

// Texture is a sampled 2D texture resident on the GPU.
type Texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *Texture) Destroy() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// LoadTexture reads a PNG or BMP image file and uploads it. Oversized
// images are scaled down to the texture edge limit.
func LoadTexture(dev *Device, path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &orbview.ResourceCreationError{Resource: "texture " + path, Err: err}
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err = png.Decode(f)
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		err = fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &orbview.ResourceCreationError{Resource: "texture " + path, Err: err}
	}

	rgba := toRGBA(img)
	return newTextureFromRGBA(dev, rgba, filepath.Base(path))
}

// NewSolidTexture uploads a 1x1 texture of the given color.
func NewSolidTexture(dev *Device, color [4]uint8) (*Texture, error) {
	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(rgba.Pix, color[:])
	return newTextureFromRGBA(dev, rgba, "solid")
}

// toRGBA converts and, when oversized, rescales the image into an RGBA
// surface ready for upload.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxTextureEdge || h > maxTextureEdge {
		scale := float64(maxTextureEdge) / float64(max(w, h))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, b, draw.Src, nil)
	return rgba
}

func newTextureFromRGBA(dev *Device, rgba *image.RGBA, label string) (*Texture, error) {
	size := wgpu.Extent3D{
		Width:              uint32(rgba.Bounds().Dx()),
		Height:             uint32(rgba.Bounds().Dy()),
		DepthOrArrayLayers: 1,
	}
	tex, err := dev.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, &orbview.ResourceCreationError{Resource: "texture " + label, Err: err}
	}

	err = dev.queue.WriteTexture(
		tex.AsImageCopy(),
		rgba.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * size.Width,
			RowsPerImage: size.Height,
		},
		&size,
	)
	if err != nil {
		tex.Release()
		return nil, &orbview.ResourceCreationError{Resource: "texture " + label, Err: err}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, &orbview.ResourceCreationError{Resource: "texture " + label, Err: err}
	}
	return &Texture{tex: tex, view: view}, nil
}
