package preview

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"bvhgav/internal/gav"
)

func animation() *gav.Animation {
	return &gav.Animation{
		RootPositions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 1, 0}},
		JointRotations: [][]mgl32.Quat{{
			mgl32.QuatIdent(),
			{W: 0, V: mgl32.Vec3{0, 0, 1}},
			{W: 0, V: mgl32.Vec3{float32(math.NaN()), 0, 0}},
		}},
	}
}

func TestRender(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "clip"
	img, err := Render(animation(), opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatalf("empty image: %v", img.Bounds())
	}

	opts.Supersample = 1
	full, err := Render(animation(), opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if d := full.Bounds().Dx() - img.Bounds().Dx(); d < -1 || d > 1 {
		t.Fatalf("supersampled size mismatch: %v vs %v", img.Bounds(), full.Bounds())
	}
}

func TestRenderErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.Joint = 3
	if _, err := Render(animation(), opts); err == nil {
		t.Fatalf("expected error for missing joint")
	}
	empty := &gav.Animation{JointRotations: [][]mgl32.Quat{{}}}
	if _, err := Render(empty, DefaultOptions()); err == nil {
		t.Fatalf("expected error for empty animation")
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, img, "webp"); err != nil {
		t.Fatalf("webp Encode failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) || !bytes.Contains(buf.Bytes()[:16], []byte("WEBP")) {
		t.Fatalf("not a webp stream")
	}

	buf.Reset()
	if err := Encode(&buf, img, "PNG"); err != nil {
		t.Fatalf("png Encode failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("not a png stream")
	}

	if err := Encode(&buf, img, "gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
}

func TestSave(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	path := filepath.Join(t.TempDir(), "nested", "preview.webp")
	if err := Save(path, img); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("preview not written: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "preview.bmp")
	if err := Save(bad, img); err == nil {
		t.Fatalf("expected error for bmp")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Fatalf("failed save should not leave a file")
	}
}
