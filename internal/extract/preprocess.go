package extract

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Preprocessor cleans up a rendered page before recognition: deskew,
// greyscale, light denoise, sharpen, brightness/contrast, normalize,
// binarize. Each call works on its own buffers; instances are safe to
// share across pages.
type Preprocessor struct {
	maxAngleDeg  float64
	angleStepDeg float64
}

// NewPreprocessor creates a preprocessor sweeping deskew candidates in
// [-maxAngleDeg, +maxAngleDeg] at the given step.
func NewPreprocessor(maxAngleDeg, angleStepDeg float64) *Preprocessor {
	if maxAngleDeg <= 0 {
		maxAngleDeg = 2.0
	}
	if angleStepDeg <= 0 {
		angleStepDeg = 0.5
	}
	return &Preprocessor{maxAngleDeg: maxAngleDeg, angleStepDeg: angleStepDeg}
}

// Process runs the full chain and returns a binarized page
func (p *Preprocessor) Process(img image.Image) image.Image {
	gray := toGray(img)
	gray = p.deskew(gray)
	gray = medianDenoise(gray)
	gray = sharpen(gray)
	gray = adjustBrightnessContrast(gray, 10, 1.15)
	gray = normalize(gray)
	return binarize(gray)
}

// deskew tries each candidate rotation and keeps the angle whose
// downsampled row-average intensities have the highest variance around
// mid-grey: aligned text rows alternate dark and light bands, skewed
// text smears them toward the mean.
func (p *Preprocessor) deskew(gray *image.Gray) *image.Gray {
	small := downsample(gray, 4)

	bestAngle := 0.0
	bestScore := rowVariance(small)
	for angle := -p.maxAngleDeg; angle <= p.maxAngleDeg+1e-9; angle += p.angleStepDeg {
		if math.Abs(angle) < 1e-9 {
			continue
		}
		score := rowVariance(rotate(small, angle))
		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	if bestAngle == 0 {
		return gray
	}
	return rotate(gray, bestAngle)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

func downsample(gray *image.Gray, factor int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	small := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), gray, b, xdraw.Src, nil)
	return small
}

// rotate rotates about the image center, filling exposed corners white
func rotate(gray *image.Gray, deg float64) *image.Gray {
	b := gray.Bounds()
	dst := image.NewGray(b)
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}

	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2

	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	xdraw.ApproxBiLinear.Transform(dst, m, gray, b, xdraw.Over, nil)
	return dst
}

// rowVariance measures the variance of per-row mean intensity around the
// mid-grey point, on a 0-1 scale.
func rowVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	variance := 0.0
	for y := 0; y < h; y++ {
		sum := 0
		for x := 0; x < w; x++ {
			sum += int(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
		mean := float64(sum) / float64(w) / 255.0
		d := mean - 0.5
		variance += d * d
	}
	return variance / float64(h)
}

// medianDenoise applies a 3x3 median filter, dropping salt-and-pepper
// scanner noise without eroding glyph edges the way a box blur would.
func medianDenoise(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	copy(dst.Pix, gray.Pix)

	var window [9]byte
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[k] = gray.Pix[(y+dy)*gray.Stride+(x+dx)]
					k++
				}
			}
			dst.Pix[y*dst.Stride+x] = median9(window)
		}
	}
	return dst
}

// median9 finds the median of 9 bytes via insertion sort; the array is
// tiny enough that this beats sort.Slice by a wide margin.
func median9(w [9]byte) byte {
	for i := 1; i < 9; i++ {
		v := w[i]
		j := i - 1
		for j >= 0 && w[j] > v {
			w[j+1] = w[j]
			j--
		}
		w[j+1] = v
	}
	return w[4]
}

// sharpen applies the standard 3x3 unsharp kernel
func sharpen(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	copy(dst.Pix, gray.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := int(gray.Pix[y*gray.Stride+x])
			sum := 5*center -
				int(gray.Pix[(y-1)*gray.Stride+x]) -
				int(gray.Pix[(y+1)*gray.Stride+x]) -
				int(gray.Pix[y*gray.Stride+x-1]) -
				int(gray.Pix[y*gray.Stride+x+1])
			dst.Pix[y*dst.Stride+x] = clampByte(sum)
		}
	}
	return dst
}

func adjustBrightnessContrast(gray *image.Gray, brightness int, contrast float64) *image.Gray {
	dst := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		adjusted := (float64(v)-128)*contrast + 128 + float64(brightness)
		dst.Pix[i] = clampByte(int(adjusted))
	}
	return dst
}

// normalize stretches the intensity histogram to the full 0-255 range
func normalize(gray *image.Gray) *image.Gray {
	lo, hi := byte(0xff), byte(0)
	for _, v := range gray.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return gray
	}

	dst := image.NewGray(gray.Bounds())
	scale := 255.0 / float64(hi-lo)
	for i, v := range gray.Pix {
		dst.Pix[i] = clampByte(int(float64(v-lo) * scale))
	}
	return dst
}

// binarize thresholds with Otsu's method, splitting foreground ink from
// paper background by maximizing between-class variance.
func binarize(gray *image.Gray) *image.Gray {
	var hist [256]int
	for _, v := range gray.Pix {
		hist[v]++
	}
	total := len(gray.Pix)

	sum := 0.0
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	sumB, wB := 0.0, 0
	bestVar, threshold := 0.0, 127
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}

	dst := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if int(v) > threshold {
			dst.Pix[i] = 0xff
		}
	}
	return dst
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
