package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Document layout. Pointer and slice fields let decoding tell a missing
// field apart from a zero value.
type clipDoc struct {
	Name     *string    `json:"name" yaml:"name"`
	Duration *float64   `json:"duration" yaml:"duration"`
	Tracks   []trackDoc `json:"tracks" yaml:"tracks"`
}

type trackDoc struct {
	JointName *string  `json:"joint_name" yaml:"joint_name"`
	Keyframes []keyDoc `json:"keyframes" yaml:"keyframes"`
}

type keyDoc struct {
	Time *float64 `json:"time" yaml:"time"`
	Pose *poseDoc `json:"pose" yaml:"pose"`
}

type poseDoc struct {
	Translation []float32 `json:"translation" yaml:"translation,flow"`
	Rotation    []float32 `json:"rotation" yaml:"rotation,flow"`
	Scale       []float32 `json:"scale" yaml:"scale,flow"`
}

// EncodeClipJSON serializes a clip. pretty selects two-space indentation.
func EncodeClipJSON(clip *anim.Clip, pretty bool) ([]byte, error) {
	doc, err := newClipDoc(clip)
	if err != nil {
		return nil, err
	}
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// ParseClipJSON decodes a JSON clip document.
func ParseClipJSON(data []byte) (*anim.Clip, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc clipDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClip, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedClip)
	}
	return doc.toClip()
}

// EncodeClipYAML serializes a clip as YAML.
func EncodeClipYAML(clip *anim.Clip) ([]byte, error) {
	doc, err := newClipDoc(clip)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseClipYAML decodes a YAML clip document. Only a single document is
// accepted.
func ParseClipYAML(data []byte) (*anim.Clip, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc clipDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedClip)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedClip, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedClip)
	}
	return doc.toClip()
}

// LoadClip reads a clip file, choosing the decoder from its extension.
func LoadClip(path string) (*anim.Clip, error) {
	format := DetectClipFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clip: %w", err)
	}

	var clip *anim.Clip
	switch format {
	case FormatJSON:
		clip, err = ParseClipJSON(data)
	case FormatYAML:
		clip, err = ParseClipYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// SaveClip writes a clip in the format implied by path. pretty only affects
// JSON output.
func SaveClip(clip *anim.Clip, path string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	switch DetectClipFormat(path) {
	case FormatJSON:
		data, err = EncodeClipJSON(clip, pretty)
	case FormatYAML:
		data, err = EncodeClipYAML(clip)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing clip: %w", err)
	}
	return nil
}

func newClipDoc(clip *anim.Clip) (*clipDoc, error) {
	if clip == nil {
		return nil, fmt.Errorf("%w: nil clip", ErrInvalidClip)
	}
	if err := validationError(clip); err != nil {
		return nil, err
	}

	doc := &clipDoc{
		Name:     &clip.Name,
		Duration: &clip.Duration,
		Tracks:   make([]trackDoc, len(clip.Tracks)),
	}
	for i := range clip.Tracks {
		track := &clip.Tracks[i]
		td := trackDoc{
			JointName: &track.JointName,
			Keyframes: make([]keyDoc, len(track.Keyframes)),
		}
		for k := range track.Keyframes {
			key := &track.Keyframes[k]
			rot := key.Pose.Rotation.WXYZ()
			tr := key.Pose.Translation.Array()
			sc := key.Pose.Scale.Array()
			td.Keyframes[k] = keyDoc{
				Time: &key.Time,
				Pose: &poseDoc{
					Translation: tr[:],
					Rotation:    rot[:],
					Scale:       sc[:],
				},
			}
		}
		doc.Tracks[i] = td
	}
	return doc, nil
}

func (d *clipDoc) toClip() (*anim.Clip, error) {
	switch {
	case d.Name == nil:
		return nil, fmt.Errorf("%w: missing name", ErrMalformedClip)
	case d.Duration == nil:
		return nil, fmt.Errorf("%w: missing duration", ErrMalformedClip)
	case d.Tracks == nil:
		return nil, fmt.Errorf("%w: missing tracks", ErrMalformedClip)
	}

	clip := &anim.Clip{
		Name:     *d.Name,
		Duration: *d.Duration,
		Tracks:   make([]anim.JointTrack, 0, len(d.Tracks)),
	}
	for i, td := range d.Tracks {
		track, err := td.toTrack()
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		clip.Tracks = append(clip.Tracks, track)
	}

	// Key order and duration are checked as written; nothing is repaired.
	if err := validationError(clip); err != nil {
		return nil, err
	}
	return clip, nil
}

func (d *trackDoc) toTrack() (anim.JointTrack, error) {
	if d.JointName == nil {
		return anim.JointTrack{}, fmt.Errorf("%w: missing joint_name", ErrMalformedClip)
	}
	if d.Keyframes == nil {
		return anim.JointTrack{}, fmt.Errorf("%w: missing keyframes", ErrMalformedClip)
	}

	track := anim.JointTrack{
		JointName: *d.JointName,
		Keyframes: make([]anim.Keyframe, 0, len(d.Keyframes)),
	}
	for k, kd := range d.Keyframes {
		key, err := kd.toKeyframe()
		if err != nil {
			return anim.JointTrack{}, fmt.Errorf("keyframe %d: %w", k, err)
		}
		track.Keyframes = append(track.Keyframes, key)
	}
	return track, nil
}

func (d *keyDoc) toKeyframe() (anim.Keyframe, error) {
	if d.Time == nil {
		return anim.Keyframe{}, fmt.Errorf("%w: missing time", ErrMalformedClip)
	}
	if d.Pose == nil {
		return anim.Keyframe{}, fmt.Errorf("%w: missing pose", ErrMalformedClip)
	}

	tr, err := components("translation", d.Pose.Translation, 3)
	if err != nil {
		return anim.Keyframe{}, err
	}
	rot, err := components("rotation", d.Pose.Rotation, 4)
	if err != nil {
		return anim.Keyframe{}, err
	}
	sc, err := components("scale", d.Pose.Scale, 3)
	if err != nil {
		return anim.Keyframe{}, err
	}

	return anim.Keyframe{
		Time: *d.Time,
		Pose: anim.JointPose{
			Translation: math.Vec3{X: tr[0], Y: tr[1], Z: tr[2]},
			Rotation:    math.QuatFromWXYZ([4]float32(rot)),
			Scale:       math.Vec3{X: sc[0], Y: sc[1], Z: sc[2]},
		},
	}, nil
}

// components checks that a vector field is present and has n elements.
func components(field string, values []float32, n int) ([]float32, error) {
	if values == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedClip, field)
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %s needs %d components, got %d", ErrMalformedClip, field, n, len(values))
	}
	return values, nil
}

func validationError(clip *anim.Clip) error {
	problems := anim.ValidateClip(clip)
	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidClip, strings.Join(msgs, "; "))
}
