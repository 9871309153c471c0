// Package formats reads and writes animation clip files.
//
// Clips are stored as JSON or YAML documents sharing one schema:
//
//	name: string
//	duration: seconds
//	tracks:
//	  - joint_name: string
//	    keyframes:
//	      - time: seconds
//	        pose:
//	          translation: [x, y, z]
//	          rotation: [w, x, y, z]
//	          scale: [x, y, z]
//
// Every field is required. Decoded clips must pass anim.ValidateClip as
// written: keys out of order or a duration shorter than the last key are
// rejected, not repaired.
package formats

import (
	"errors"
	"path/filepath"
	"strings"
)

// Clip file errors.
var (
	ErrMalformedClip = errors.New("malformed clip document")
	ErrInvalidClip   = errors.New("invalid clip")
	ErrUnknownFormat = errors.New("unknown clip format")
)

// ClipFormat identifies a clip file encoding.
type ClipFormat int

const (
	FormatUnknown ClipFormat = iota
	FormatJSON
	FormatYAML
)

// String returns the lower-case format name.
func (f ClipFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectClipFormat picks the format from the file extension.
func DetectClipFormat(path string) ClipFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}
