package keyframe

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"bvhgav/internal/bvh"
	"bvhgav/internal/channel"
	"bvhgav/internal/curve"
	"bvhgav/internal/skeleton"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearVec(a [3]float64, b [3]float64) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func TestEulerToQuatSingleAxis(t *testing.T) {
	q := EulerToQuat(channel.OrderXYZ, [3]float64{90, 0, 0})
	h := math.Sqrt(0.5)
	if !near(q.Real, h) || !near(q.Imag, h) || !near(q.Jmag, 0) || !near(q.Kmag, 0) {
		t.Fatalf("Rx(90) mismatch: %v", q)
	}
	q = EulerToQuat(channel.OrderZXY, [3]float64{0, 0, 180})
	if !near(q.Real, 0) || !near(q.Kmag, 1) {
		t.Fatalf("Rz(180) mismatch: %v", q)
	}
	if !near(quat.Abs(EulerToQuat(channel.OrderZXY, [3]float64{13, -77, 141})), 1) {
		t.Fatalf("composition is not unit length")
	}
}

func TestEulerToQuatOrder(t *testing.T) {
	// XYZ applies Ry before Rx to a vector: z -> x -> x.
	got := Rotate(EulerToQuat(channel.OrderXYZ, [3]float64{90, 90, 0}), [3]float64{0, 0, 1})
	if !nearVec(got, [3]float64{1, 0, 0}) {
		t.Fatalf("XYZ rotation mismatch: %v", got)
	}

	// ZXY is Rz*Rx*Ry: y is untouched by Ry, Rx takes it to z, Rz keeps z.
	got = Rotate(EulerToQuat(channel.OrderZXY, [3]float64{90, 0, 90}), [3]float64{0, 1, 0})
	if !nearVec(got, [3]float64{0, 0, 1}) {
		t.Fatalf("ZXY rotation mismatch: %v", got)
	}

	x := EulerToQuat(channel.OrderXYZ, [3]float64{30, 0, 0})
	y := EulerToQuat(channel.OrderXYZ, [3]float64{0, 40, 0})
	z := EulerToQuat(channel.OrderXYZ, [3]float64{0, 0, 50})
	want := quat.Mul(quat.Mul(z, x), y)
	q := EulerToQuat(channel.OrderZXY, [3]float64{30, 40, 50})
	if !near(q.Real, want.Real) || !near(q.Imag, want.Imag) || !near(q.Jmag, want.Jmag) || !near(q.Kmag, want.Kmag) {
		t.Fatalf("ZXY product mismatch: got %v want %v", q, want)
	}
}

func fixture() (*bvh.Document, *skeleton.Hierarchy) {
	doc := &bvh.Document{
		Joints: []bvh.JointRecord{
			{
				Name:     "Hips",
				Parent:   -1,
				Children: []int{1},
				Offset:   [3]float64{0, 0, 0},
				Channels: []bvh.ChannelKind{bvh.PositionX, bvh.PositionY, bvh.PositionZ, bvh.RotationZ, bvh.RotationX, bvh.RotationY},
			},
			{
				Name:          "Spine",
				Parent:        0,
				Offset:        [3]float64{0, 1, 0},
				ChannelOffset: 6,
				EndSite:       &[3]float64{0, 1, 0},
				Channels:      []bvh.ChannelKind{bvh.RotationX, bvh.RotationY, bvh.RotationZ},
			},
		},
		Frames:    3,
		FrameTime: 0.25,
		Motion: [][]float64{
			{1, 2, 3, 0, 0, 0, 0, 0, 0},
			{4, 5, 6, 90, 0, 0, 0, 0, 0},
			{7, 8, 9, 0, 0, 0, 0, 0, 90},
		},
	}
	h, err := skeleton.Build(doc.Joints)
	if err != nil {
		panic(err)
	}
	return doc, h
}

func TestBuild(t *testing.T) {
	doc, h := fixture()
	kf, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if kf.Count != 3 || kf.FrameTime != 0.25 {
		t.Fatalf("header mismatch: %d %v", kf.Count, kf.FrameTime)
	}
	if !reflect.DeepEqual(kf.Joints, []string{"Hips", "Spine"}) {
		t.Fatalf("joint order mismatch: %v", kf.Joints)
	}
	if !reflect.DeepEqual(kf.Nodes, []int{0, 1}) {
		t.Fatalf("node order mismatch: %v", kf.Nodes)
	}
	if kf.Translations[1] != nil {
		t.Fatalf("Spine has no position channels")
	}
	if got := kf.Translations[0][1]; got != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Fatalf("Hips translation mismatch: %v", got)
	}
	if len(kf.Rotations[1]) != 3 {
		t.Fatalf("rotation count mismatch")
	}
	if q := kf.Rotations[0][1]; !near(q.Kmag, math.Sqrt(0.5)) {
		t.Fatalf("Hips Zrotation frame 1 mismatch: %v", q)
	}
	if kf.Timestamp(2) != 0.5 {
		t.Fatalf("timestamp mismatch: %v", kf.Timestamp(2))
	}
	if got := kf.RootTranslations(); got[2] != (r3.Vec{X: 7, Y: 8, Z: 9}) {
		t.Fatalf("root translations mismatch: %v", got)
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	doc, h := fixture()
	serial, err := Build(doc, h, Options{Workers: 1})
	if err != nil {
		t.Fatalf("serial Build failed: %v", err)
	}
	parallel, err := Build(doc, h, Options{Workers: 4})
	if err != nil {
		t.Fatalf("parallel Build failed: %v", err)
	}
	if !reflect.DeepEqual(serial, parallel) {
		t.Fatalf("parallel result differs from serial")
	}
}

func TestBuildErrors(t *testing.T) {
	doc, h := fixture()
	doc.Joints[1].Channels = []bvh.ChannelKind{bvh.RotationZ, bvh.RotationY, bvh.RotationX}
	_, err := Build(doc, h, Options{Workers: 2})
	if !errors.Is(err, channel.ErrUnsupportedRotationOrder) {
		t.Fatalf("expected ErrUnsupportedRotationOrder, got %v", err)
	}
	var orderErr *channel.UnsupportedRotationOrderError
	if !errors.As(err, &orderErr) || len(orderErr.Observed) != 3 {
		t.Fatalf("expected typed error with observed order, got %v", err)
	}

	doc, h = fixture()
	doc.Motion[2] = doc.Motion[2][:6]
	if _, err := Build(doc, h, Options{}); !errors.Is(err, channel.ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
}

func TestRootWithoutPositions(t *testing.T) {
	doc, h := fixture()
	doc.Joints[0].Channels = doc.Joints[0].Channels[3:]
	doc.Joints[0].Offset = [3]float64{0, 9, 0}
	doc.Joints[1].ChannelOffset = 3
	for i, row := range doc.Motion {
		doc.Motion[i] = row[3:]
	}
	h, err := skeleton.Build(doc.Joints)
	if err != nil {
		t.Fatalf("skeleton.Build failed: %v", err)
	}
	kf, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, v := range kf.RootTranslations() {
		if v != (r3.Vec{Y: 9}) {
			t.Fatalf("frame %d root translation mismatch: %v", i, v)
		}
	}
}

func TestTracks(t *testing.T) {
	doc, h := fixture()
	kf, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	tracks, err := Tracks(h, kf)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("track count mismatch: %d", len(tracks))
	}
	if tracks[1].Target.String() != "Hips/Spine" {
		t.Fatalf("target mismatch: %s", tracks[1].Target)
	}
	if tracks[0].Translation == nil || tracks[1].Translation != nil {
		t.Fatalf("translation curves mismatch")
	}
	if tracks[0].Translation.Keys[2].Time != 0.5 {
		t.Fatalf("key time mismatch: %v", tracks[0].Translation.Keys[2].Time)
	}

	pose := Pose(tracks, 0.3)
	if pose["Hips"] != kf.Rotations[0][1] {
		t.Fatalf("pose mismatch: %v", pose["Hips"])
	}
	if pose["Hips/Spine"] != kf.Rotations[1][1] {
		t.Fatalf("Spine pose mismatch: %v", pose["Hips/Spine"])
	}
}

// twoHands has a joint named Hand under each arm, with different motion.
func twoHands() (*bvh.Document, *skeleton.Hierarchy) {
	rot := []bvh.ChannelKind{bvh.RotationX, bvh.RotationY, bvh.RotationZ}
	doc := &bvh.Document{
		Joints: []bvh.JointRecord{
			{Name: "Hips", Parent: -1, Children: []int{1, 3}, Channels: rot},
			{Name: "LeftArm", Parent: 0, Children: []int{2}, Offset: [3]float64{-1, 0, 0}, Channels: rot, ChannelOffset: 3},
			{Name: "Hand", Parent: 1, Offset: [3]float64{-1, 0, 0}, Channels: rot, ChannelOffset: 6},
			{Name: "RightArm", Parent: 0, Children: []int{4}, Offset: [3]float64{1, 0, 0}, Channels: rot, ChannelOffset: 9},
			{Name: "Hand", Parent: 3, Offset: [3]float64{1, 0, 0}, Channels: rot, ChannelOffset: 12},
		},
		Frames:    2,
		FrameTime: 0.5,
		Motion: [][]float64{
			{0, 0, 0, 0, 0, 0, 90, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 90, 0, 0, 0, 0, 0, 0, 0, 0},
		},
	}
	h, err := skeleton.Build(doc.Joints)
	if err != nil {
		panic(err)
	}
	return doc, h
}

func TestRepeatedNamesStayApart(t *testing.T) {
	doc, h := twoHands()
	kf, err := Build(doc, h, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(kf.Joints, []string{"Hips", "LeftArm", "Hand", "RightArm", "Hand"}) {
		t.Fatalf("joint order mismatch: %v", kf.Joints)
	}
	if q := kf.Rotations[2][0]; !near(q.Imag, math.Sqrt(0.5)) {
		t.Fatalf("left Hand rotation mismatch: %v", q)
	}
	if q := kf.Rotations[4][0]; q != (quat.Number{Real: 1}) {
		t.Fatalf("right Hand rotation mismatch: %v", q)
	}

	tracks, err := Tracks(h, kf)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if tracks[2].Target.String() != "Hips/LeftArm/Hand" || tracks[4].Target.String() != "Hips/RightArm/Hand" {
		t.Fatalf("hand targets mismatch: %s %s", tracks[2].Target, tracks[4].Target)
	}
	pose := Pose(tracks, 0)
	if len(pose) != 5 {
		t.Fatalf("pose should hold every joint: %v", pose)
	}
	if pose["Hips/RightArm/Hand"] != (quat.Number{Real: 1}) {
		t.Fatalf("right Hand pose mismatch: %v", pose["Hips/RightArm/Hand"])
	}
}

func TestTracksErrors(t *testing.T) {
	doc, h := fixture()
	kf, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	renamed := *kf
	renamed.Joints = []string{"Hips", "Tail"}
	if _, err := Tracks(h, &renamed); !errors.Is(err, ErrUnresolvedTarget) {
		t.Fatalf("expected ErrUnresolvedTarget, got %v", err)
	}

	doc.Frames = 1
	doc.Motion = doc.Motion[:1]
	single, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := Tracks(h, single); !errors.Is(err, curve.ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}
}

func TestWorldPositions(t *testing.T) {
	doc, h := fixture()
	kf, err := Build(doc, h, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Frame 1: Hips at (4,5,6) turned 90 degrees about Z, so the Spine offset (0,1,0) points to -X.
	positions := WorldPositions(h, kf, 1)
	got := [3]float64{positions[1].X, positions[1].Y, positions[1].Z}
	if !nearVec(got, [3]float64{3, 5, 6}) {
		t.Fatalf("Spine position mismatch: %v", got)
	}
	end := EndSitePosition(h, kf, positions, 1, 1)
	if !nearVec([3]float64{end.X, end.Y, end.Z}, [3]float64{2, 5, 6}) {
		t.Fatalf("end site mismatch: %v", end)
	}

	// Frame 2: Spine turned about Z moves only its end site.
	positions = WorldPositions(h, kf, 2)
	end = EndSitePosition(h, kf, positions, 1, 2)
	if !nearVec([3]float64{end.X, end.Y, end.Z}, [3]float64{6, 9, 9}) {
		t.Fatalf("end site frame 2 mismatch: %v", end)
	}
}
