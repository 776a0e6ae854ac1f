// Package preview renders a posed skeleton as a stick figure for quick
// visual checks of a converted clip. Diagnostic aid only; nothing in the
// conversion contract depends on it.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

const supersample = 2

var (
	boneColor  = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	jointColor = color.NRGBA{R: 255, G: 170, B: 40, A: 255}
)

// Render draws the skeleton pose at the given frame, front view (world X
// right, world Z up), into a square image.
func Render(g *scene.Graph, frame, size int) (*image.NRGBA, error) {
	if g.Skeleton == nil || len(g.Skeleton.Bones) == 0 {
		return nil, fmt.Errorf("preview: no skeleton to render")
	}

	world := make([]mgl64.Vec3, len(g.Skeleton.Bones))
	for i := range g.Skeleton.Bones {
		world[i] = scene.BoneWorldTranslation(g, i, frame)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, w := range world {
		minX = math.Min(minX, w.X())
		maxX = math.Max(maxX, w.X())
		minZ = math.Min(minZ, w.Z())
		maxZ = math.Max(maxZ, w.Z())
	}
	span := math.Max(maxX-minX, maxZ-minZ)
	if span < 1e-9 {
		span = 1
	}

	big := size * supersample
	img := image.NewNRGBA(image.Rect(0, 0, big, big))
	margin := 0.1 * float64(big)
	scaleF := (float64(big) - 2*margin) / span
	cx := (minX + maxX) / 2
	cz := (minZ + maxZ) / 2

	project := func(w mgl64.Vec3) (float64, float64) {
		x := float64(big)/2 + (w.X()-cx)*scaleF
		y := float64(big)/2 - (w.Z()-cz)*scaleF
		return x, y
	}

	for i, b := range g.Skeleton.Bones {
		if b.Parent < 0 {
			continue
		}
		x0, y0 := project(world[b.Parent])
		x1, y1 := project(world[i])
		drawLine(img, x0, y0, x1, y1, boneColor)
	}
	for _, w := range world {
		x, y := project(w)
		drawDot(img, x, y, supersample, jointColor)
	}

	return downsample(img, size), nil
}

// Save renders the pose and writes it as WebP.
func Save(g *scene.Graph, frame, size int, path string) error {
	img, err := Render(g, frame, size)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return nil
}

func drawLine(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetNRGBA(int(x0+dx*t+0.5), int(y0+dy*t+0.5), c)
	}
}

func drawDot(img *image.NRGBA, x, y float64, r int, c color.NRGBA) {
	xi, yi := int(x+0.5), int(y+0.5)
	for oy := -r; oy <= r; oy++ {
		for ox := -r; ox <= r; ox++ {
			if ox*ox+oy*oy <= r*r {
				img.SetNRGBA(xi+ox, yi+oy, c)
			}
		}
	}
}

// downsample reduces the supersampled buffer with premultiplied-alpha-aware
// CatmullRom filtering, so transparent edges do not pick up dark halos.
func downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	draw.Draw(out, out.Bounds(), dst, image.Point{}, draw.Src)
	return out
}
