package overlay

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"TailorGolang/pkg/sizing"
)

// RenderLandmarks draws the detected pose on top of the source frame: one dot
// per landmark, the hip width segment and the nose-to-foot span the
// measurements are read from.
func RenderLandmarks(img image.Image, landmarks sizing.LandmarkSet) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{0, 255, 0, 255}  // every landmark
	red := color.NRGBA{255, 0, 0, 255}    // measurement anchors
	gold := color.NRGBA{255, 204, 0, 255} // hip width
	blue := color.NRGBA{0, 170, 255, 255} // body span

	dot := int(math.Max(2, 0.005*float64(minInt(w, h))))
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h))))

	for _, lm := range landmarks {
		px, py := toPixels(lm, w, h)
		fillDot(nrgba, px, py, dot, green)
	}

	if !landmarks.HasRequiredLandmarks() {
		return nrgba
	}

	leftHip := landmarks[sizing.LandmarkLeftHip]
	rightHip := landmarks[sizing.LandmarkRightHip]
	lx, ly := toPixels(leftHip, w, h)
	rx, ry := toPixels(rightHip, w, h)
	hipY := (ly + ry) / 2
	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, hipY+s, lx, rx, gold)
	}

	nx, ny := toPixels(landmarks[sizing.LandmarkNose], w, h)
	footY := landmarks[sizing.LandmarkLeftAnkle].Y
	for _, idx := range []int{sizing.LandmarkRightAnkle, sizing.LandmarkLeftFootIndex, sizing.LandmarkRightFootIndex} {
		footY = math.Max(footY, landmarks[idx].Y)
	}
	fy := int(clamp(footY, 0, 1)*float64(h) + 0.5)
	for s := 0; s < stroke; s++ {
		drawVLine(nrgba, nx+s, ny, fy, blue)
	}

	for _, idx := range sizing.RequiredLandmarks() {
		px, py := toPixels(landmarks[idx], w, h)
		fillDot(nrgba, px, py, dot+2, red)
	}

	return nrgba
}

// EncodeJPEG serializes an overlay for upload.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func toPixels(lm sizing.Landmark, w, h int) (int, int) {
	px := int(clamp(lm.X, 0, 1)*float64(w) + 0.5)
	py := int(clamp(lm.Y, 0, 1)*float64(h) + 0.5)
	return px, py
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func fillDot(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for y := cy - r; y <= cy+r; y++ {
		drawHLine(img, y, cx-r, cx+r+1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
