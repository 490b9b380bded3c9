// internal/driver/epson/raster.go
package epson

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"epos-bridge/pkg/driver"
)

// bayer4 is the 4x4 ordered-dither threshold matrix scaled to 0..255
var bayer4 = [4][4]int{
	{8, 136, 40, 168},
	{200, 72, 232, 104},
	{56, 184, 24, 152},
	{248, 120, 216, 88},
}

const defaultThreshold = 128

// cropAndFit takes the (x, y, width, height) region of img and scales it
// down to maxWidth dots when it is wider than the paper
func cropAndFit(img image.Image, x, y, width, height, maxWidth int) (*image.Gray, error) {
	region := image.Rect(x, y, x+width, y+height).Add(img.Bounds().Min)
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("print area (%d,%d %dx%d) lies outside the image", x, y, width, height)
	}

	outW, outH := region.Dx(), region.Dy()
	if maxWidth > 0 && outW > maxWidth {
		outH = outH * maxWidth / outW
		outW = maxWidth
		if outH == 0 {
			outH = 1
		}
	}

	gray := image.NewGray(image.Rect(0, 0, outW, outH))
	// transparent pixels print as paper
	draw.Draw(gray, gray.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, region, draw.Over, nil)
	return gray, nil
}

// adjustBrightness applies a gamma correction; the default sentinel and
// 1.0 leave the image unchanged
func adjustBrightness(gray *image.Gray, brightness float64) {
	if brightness == driver.BrightnessDefault || brightness == 1.0 || brightness <= 0 {
		return
	}
	var lut [256]uint8
	for i := range lut {
		v := float64(i) / 255
		lut[i] = uint8(clamp(255*math.Pow(v, 1/brightness), 0, 255))
	}
	for i, p := range gray.Pix {
		gray.Pix[i] = lut[p]
	}
}

// monochrome converts a grayscale image into packed 1-bit rows, MSB first,
// where a set bit prints a dot
func monochrome(gray *image.Gray, halftone driver.Halftone) ([]byte, int, int) {
	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	rowBytes := (width + 7) / 8
	raster := make([]byte, rowBytes*height)

	setDot := func(x, y int) {
		raster[y*rowBytes+x/8] |= 1 << (7 - uint(x%8))
	}

	switch halftone {
	case driver.HalftoneErrorDiffusion:
		errs := make([]int, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				v := int(gray.Pix[y*gray.Stride+x]) + errs[i]
				out := 255
				if v < defaultThreshold {
					out = 0
					setDot(x, y)
				}
				diffuse(errs, width, height, x, y, v-out)
			}
		}
	case driver.HalftoneThreshold:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if int(gray.Pix[y*gray.Stride+x]) < defaultThreshold {
					setDot(x, y)
				}
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if int(gray.Pix[y*gray.Stride+x]) < bayer4[y%4][x%4] {
					setDot(x, y)
				}
			}
		}
	}

	return raster, rowBytes, height
}

// diffuse spreads quantisation error with Floyd-Steinberg weights
func diffuse(errs []int, width, height, x, y, e int) {
	add := func(dx, dy, w int) {
		nx, ny := x+dx, y+dy
		if nx < 0 || nx >= width || ny >= height {
			return
		}
		errs[ny*width+nx] += e * w / 16
	}
	add(1, 0, 7)
	add(-1, 1, 3)
	add(0, 1, 5)
	add(1, 1, 1)
}

// maxRasterRows is the largest row count GS v 0 accepts (yL + yH*256)
const maxRasterRows = 4095

// rasterCommands builds GS v 0 for packed raster rows, one command per
// band of at most maxRasterRows rows
func rasterCommands(raster []byte, rowBytes, height int) [][]byte {
	var cmds [][]byte
	for top := 0; top < height; top += maxRasterRows {
		rows := min(maxRasterRows, height-top)
		cmd := withParam(ESC_POS_COMMANDS.RASTER_IMAGE,
			byte(rowBytes), byte(rowBytes>>8),
			byte(rows), byte(rows>>8),
		)
		cmds = append(cmds, append(cmd, raster[top*rowBytes:(top+rows)*rowBytes]...))
	}
	return cmds
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
