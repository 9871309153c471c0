package blendtree

// ParamKind tags the value a Parameter holds.
type ParamKind uint8

const (
	ParamFloat ParamKind = iota
	ParamBool
	ParamEvent
)

// String returns the kind name.
func (k ParamKind) String() string {
	switch k {
	case ParamFloat:
		return "float"
	case ParamBool:
		return "bool"
	case ParamEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Parameter is a named input to the tree. Only the field matching Kind is
// meaningful.
type Parameter struct {
	Name    string
	Kind    ParamKind
	Float   float32
	Bool    bool
	Pending bool
}

func (t *Tree) addParam(p Parameter) ParamRef {
	t.Params = append(t.Params, p)
	return ParamRef(len(t.Params) - 1)
}

// AddFloatParameter adds a float parameter.
func (t *Tree) AddFloatParameter(name string, initial float32) ParamRef {
	return t.addParam(Parameter{Name: name, Kind: ParamFloat, Float: initial})
}

// AddBoolParameter adds a bool parameter.
func (t *Tree) AddBoolParameter(name string, initial bool) ParamRef {
	return t.addParam(Parameter{Name: name, Kind: ParamBool, Bool: initial})
}

// AddEventParameter adds an event parameter, optionally already pending.
func (t *Tree) AddEventParameter(name string, pending bool) ParamRef {
	return t.addParam(Parameter{Name: name, Kind: ParamEvent, Pending: pending})
}

// FindParameter returns the first parameter with the given name, or
// InvalidRef.
func (t *Tree) FindParameter(name string) ParamRef {
	for i := range t.Params {
		if t.Params[i].Name == name {
			return ParamRef(i)
		}
	}
	return InvalidRef
}

// param returns the parameter at ref if it exists and has the given kind.
func (t *Tree) param(ref ParamRef, kind ParamKind) *Parameter {
	if ref < 0 || int(ref) >= len(t.Params) || t.Params[ref].Kind != kind {
		return nil
	}
	return &t.Params[ref]
}

// SetFloatParameter sets a float parameter. It returns false when ref is
// unknown or not a float.
func (t *Tree) SetFloatParameter(ref ParamRef, v float32) bool {
	p := t.param(ref, ParamFloat)
	if p == nil {
		return false
	}
	p.Float = v
	return true
}

// SetFloatParameterByName is SetFloatParameter addressed by name.
func (t *Tree) SetFloatParameterByName(name string, v float32) bool {
	return t.SetFloatParameter(t.FindParameter(name), v)
}

// SetBoolParameter sets a bool parameter. It returns false when ref is
// unknown or not a bool.
func (t *Tree) SetBoolParameter(ref ParamRef, v bool) bool {
	p := t.param(ref, ParamBool)
	if p == nil {
		return false
	}
	p.Bool = v
	return true
}

// SetBoolParameterByName is SetBoolParameter addressed by name.
func (t *Tree) SetBoolParameterByName(name string, v bool) bool {
	return t.SetBoolParameter(t.FindParameter(name), v)
}

// TriggerEvent marks an event parameter pending.
func (t *Tree) TriggerEvent(ref ParamRef) bool {
	p := t.param(ref, ParamEvent)
	if p == nil {
		return false
	}
	p.Pending = true
	return true
}

// TriggerEventByName is TriggerEvent addressed by name.
func (t *Tree) TriggerEventByName(name string) bool {
	return t.TriggerEvent(t.FindParameter(name))
}

// ConsumeEvent reports whether the event was pending and clears it.
func (t *Tree) ConsumeEvent(ref ParamRef) bool {
	p := t.param(ref, ParamEvent)
	if p == nil || !p.Pending {
		return false
	}
	p.Pending = false
	return true
}

// ConsumeEventByName is ConsumeEvent addressed by name.
func (t *Tree) ConsumeEventByName(name string) bool {
	return t.ConsumeEvent(t.FindParameter(name))
}
