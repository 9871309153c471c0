package anim

import (
	"math"
	"testing"

	animmath "github.com/Faultbox/midgard-anim/pkg/math"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func poseAtY(y float32) JointPose {
	p := IdentityPose()
	p.Translation.Y = y
	return p
}

func TestIdentityPose(t *testing.T) {
	p := IdentityPose()
	if p.Translation != (animmath.Vec3{}) {
		t.Errorf("translation = %v, want zero", p.Translation)
	}
	if p.Rotation != animmath.QuatIdentity() {
		t.Errorf("rotation = %v, want identity", p.Rotation)
	}
	if p.Scale != animmath.Vec3One() {
		t.Errorf("scale = %v, want one", p.Scale)
	}
}

func TestSortKeyframesStable(t *testing.T) {
	track := JointTrack{
		JointName: "root",
		Keyframes: []Keyframe{
			{Time: 1, Pose: poseAtY(3)},
			{Time: 0, Pose: poseAtY(1)},
			{Time: 1, Pose: poseAtY(4)},
			{Time: 0.5, Pose: poseAtY(2)},
		},
	}
	SortKeyframes(&track)

	want := []float32{1, 2, 3, 4}
	for i, k := range track.Keyframes {
		if k.Pose.Translation.Y != want[i] {
			t.Errorf("key %d: y = %v, want %v", i, k.Pose.Translation.Y, want[i])
		}
	}
}

func TestClipFindTrackAndLastKey(t *testing.T) {
	clip := &Clip{
		Name: "walk",
		Tracks: []JointTrack{
			{JointName: "hip", Keyframes: []Keyframe{{Time: 0}, {Time: 0.75}}},
			{JointName: "knee", Keyframes: []Keyframe{{Time: 0}, {Time: 1.25}}},
			{JointName: "empty"},
		},
	}

	if tr := clip.FindTrack("knee"); tr == nil || tr.JointName != "knee" {
		t.Fatalf("FindTrack(knee) = %v", tr)
	}
	if tr := clip.FindTrack("missing"); tr != nil {
		t.Errorf("FindTrack(missing) = %v, want nil", tr)
	}
	if got := clip.LastKeyTime(); got != 1.25 {
		t.Errorf("LastKeyTime = %v, want 1.25", got)
	}
}

func TestDefaultClipIsValid(t *testing.T) {
	clip := DefaultClip()
	if errs := ValidateClip(clip); len(errs) != 0 {
		t.Fatalf("default clip has errors: %v", errs)
	}
	pose, ok := SampleClip(clip, "root", 0.5)
	if !ok {
		t.Fatal("default clip does not animate root")
	}
	if !near(float64(pose.Translation.Y), 0.5, 1e-6) {
		t.Errorf("root y at 0.5s = %v, want 0.5", pose.Translation.Y)
	}
}

func TestPoseSetAndFind(t *testing.T) {
	var pose Pose
	pose.Set("a", poseAtY(1))
	pose.Set("b", poseAtY(2))
	pose.Set("a", poseAtY(3))

	if pose.Len() != 2 {
		t.Fatalf("Len = %d, want 2", pose.Len())
	}
	if pose.Joints[0].Name != "a" || pose.Joints[1].Name != "b" {
		t.Errorf("insertion order lost: %v", pose.Joints)
	}
	if got := pose.Find("a"); got == nil || got.Translation.Y != 3 {
		t.Errorf("Find(a) = %v, want y=3", got)
	}
	if got := pose.Find("c"); got != nil {
		t.Errorf("Find(c) = %v, want nil", got)
	}
}

func TestClipClone(t *testing.T) {
	orig := DefaultClip()
	dup := orig.Clone()
	dup.Tracks[0].Keyframes[1].Pose.Translation.Y = 9
	dup.Tracks[0].JointName = "other"

	if orig.Tracks[0].Keyframes[1].Pose.Translation.Y != 0.5 {
		t.Error("clone shares keyframes with the original")
	}
	if orig.Tracks[0].JointName != "root" {
		t.Error("clone shares tracks with the original")
	}
	if dup.Name != orig.Name || dup.Duration != orig.Duration {
		t.Errorf("clone header = %q/%v, want %q/%v", dup.Name, dup.Duration, orig.Name, orig.Duration)
	}
}
