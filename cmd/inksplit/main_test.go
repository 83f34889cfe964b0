package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/setanarut/inksplit/palette"
	"github.com/setanarut/inksplit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMatch(t *testing.T) {
	out, err := run(t, "match", "--palette", "cmyk", "0.05", "0.95", "0.93")
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "Cyan", fields[0])
	assert.Equal(t, "#00ffff", fields[1])

	out, err = run(t, "match", "-p", "cmyk", "--hex", "#00ffff")
	require.NoError(t, err)
	assert.Equal(t, "Cyan\t#00ffff\t0.0000\n", out)
}

func TestMatchErrors(t *testing.T) {
	_, err := run(t, "match", "--palette", "cmyk", "2", "0", "0")
	assert.ErrorIs(t, err, palette.ErrInvalidColor)

	_, err = run(t, "match", "--palette", "no-such-palette", "0.5", "0.5", "0.5")
	assert.ErrorIs(t, err, palette.ErrNotFound)

	_, err = run(t, "match", "0.5", "0.5")
	assert.Error(t, err)

	_, err = run(t, "match", "--hex", "zz")
	assert.Error(t, err)
}

func TestPalettes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Shop_Inks.gpl"), []byte("GIMP Palette\n0 0 0 Black\n"), 0o644))

	out, err := run(t, "--palette-dir", dir, "palettes")
	require.NoError(t, err)
	names := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, names, "web")
	assert.Contains(t, names, "cmyk")
	assert.Contains(t, names, "shop-inks")
}

func TestSeparateExport(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := range 20 {
		for x := range 40 {
			c := color.NRGBA{A: 255}
			if x < 20 {
				c.R = 255
			}
			img.SetNRGBA(x, y, c)
		}
	}
	input := filepath.Join(dir, "art.png")
	require.NoError(t, utils.SaveImage(img, input))

	gpl := filepath.Join(dir, "inks.gpl")
	require.NoError(t, os.WriteFile(gpl, []byte("GIMP Palette\nName: Inks\n0 0 0\tBlack\n255 0 0\tRed\n255 255 255\tWhite\n"), 0o644))

	films := filepath.Join(dir, "films")
	preview := filepath.Join(dir, "preview.png")
	out, err := run(t, "separate", input,
		"--palette", gpl,
		"--canvas-width", "20", "--canvas-height", "20", "--canvas-margin", "3",
		"--dpi", "10", "--location", "center", "--print-width", "0",
		"--font-size", "8", "--registration-size", "1",
		"--export", "--format", "png", "--out", films, "--preview", preview,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(films, "art_UB.png"),
		filepath.Join(films, "art_Black.png"),
		filepath.Join(films, "art_Red.png"),
	}, strings.Split(strings.TrimSpace(out), "\n"))
	for _, p := range []string{"art_UB.png", "art_Black.png", "art_Red.png"} {
		assert.FileExists(t, filepath.Join(films, p))
	}

	pv, err := utils.ReadImage(preview)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), pv.Bounds())
}

func TestSeparateFlagErrors(t *testing.T) {
	_, err := run(t, "separate", "missing.png", "--location", "sleeve")
	assert.Error(t, err)

	_, err = run(t, "separate", "missing.png", "--format", "svg")
	assert.Error(t, err)

	_, err = run(t, "separate", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
