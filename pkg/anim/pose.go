package anim

// PoseEntry is one joint's local pose inside a Pose.
type PoseEntry struct {
	Name string
	Pose JointPose
}

// Pose maps joint names to local poses at one instant. Entries keep the
// order in which they were first set.
type Pose struct {
	Joints []PoseEntry
}

// Find returns the named joint's pose, or nil when the joint is absent.
func (p *Pose) Find(name string) *JointPose {
	for i := range p.Joints {
		if p.Joints[i].Name == name {
			return &p.Joints[i].Pose
		}
	}
	return nil
}

// Set inserts or replaces the named joint's pose.
func (p *Pose) Set(name string, pose JointPose) {
	if existing := p.Find(name); existing != nil {
		*existing = pose
		return
	}
	p.Joints = append(p.Joints, PoseEntry{Name: name, Pose: pose})
}

// Len returns the number of joints in the pose.
func (p *Pose) Len() int {
	return len(p.Joints)
}
