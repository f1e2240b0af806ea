package extract

import (
	"image"
	"image/color"
	"testing"
)

func TestMedian9(t *testing.T) {
	tests := []struct {
		window [9]byte
		want   byte
	}{
		{[9]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, 5},
		{[9]byte{9, 8, 7, 6, 5, 4, 3, 2, 1}, 5},
		{[9]byte{0, 0, 0, 0, 255, 0, 0, 0, 0}, 0},
		{[9]byte{10, 10, 10, 10, 10, 10, 10, 10, 10}, 10},
	}
	for _, tt := range tests {
		if got := median9(tt.window); got != tt.want {
			t.Errorf("median9(%v) = %d, want %d", tt.window, got, tt.want)
		}
	}
}

func TestRowVariancePrefersAlignedStripes(t *testing.T) {
	aligned := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		v := byte(0xff)
		if (y/4)%2 == 0 {
			v = 0
		}
		for x := 0; x < 40; x++ {
			aligned.SetGray(x, y, color.Gray{Y: v})
		}
	}

	uniform := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range uniform.Pix {
		uniform.Pix[i] = 128
	}

	if rowVariance(aligned) <= rowVariance(uniform) {
		t.Errorf("aligned stripes scored %v, uniform %v; want aligned higher",
			rowVariance(aligned), rowVariance(uniform))
	}
}

func TestProcessBinarizes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			src.SetGray(x, y, color.Gray{Y: byte(x * 8)})
		}
	}

	out := NewPreprocessor(2.0, 0.5).Process(src)

	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("Process returned %T, want *image.Gray", out)
	}
	for i, v := range gray.Pix {
		if v != 0 && v != 0xff {
			t.Fatalf("pixel %d = %d, want fully binarized output", i, v)
		}
	}
}

func TestNormalizeStretchesRange(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	src.Pix = []byte{100, 110, 120, 130}

	out := normalize(src)

	if out.Pix[0] != 0 {
		t.Errorf("lowest intensity = %d, want 0", out.Pix[0])
	}
	if out.Pix[3] != 255 {
		t.Errorf("highest intensity = %d, want 255", out.Pix[3])
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   int
		want byte
	}{{-5, 0}, {0, 0}, {128, 128}, {255, 255}, {300, 255}}
	for _, tt := range tests {
		if got := clampByte(tt.in); got != tt.want {
			t.Errorf("clampByte(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
