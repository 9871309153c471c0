package rig

import "fmt"

// ValidateBinding reports whether the binding can drive skinning: it needs at
// least one joint, every influence must reference an existing joint and
// every vertex binding must be normalized.
func ValidateBinding(r *RigBinding) bool {
	return ValidateBindingEpsilon(r, DefaultWeightEpsilon)
}

// ValidateBindingEpsilon is ValidateBinding with a custom weight tolerance.
func ValidateBindingEpsilon(r *RigBinding, epsilon float32) bool {
	if r == nil || len(r.Joints) == 0 {
		return false
	}

	for i := range r.Vertices {
		v := &r.Vertices[i]
		for _, inf := range v.Active() {
			if int(inf.Joint) >= len(r.Joints) {
				return false
			}
		}
		if !v.WeightsNormalized(epsilon) {
			return false
		}
	}
	return true
}

// ValidateHierarchy returns an error for the first joint whose parent does
// not precede it. Such joints are composed as roots during skinning.
func ValidateHierarchy(r *RigBinding) error {
	for i, j := range r.Joints {
		if j.IsRoot() {
			continue
		}
		if j.Parent < 0 || j.Parent >= i {
			return fmt.Errorf("%w: joint %d (%q) has parent %d", ErrParentOrder, i, j.Name, j.Parent)
		}
	}
	return nil
}
