package hue

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// ValueKind is the type held by a StateValue.
type ValueKind int

const (
	// KindInvalid is the kind of the zero StateValue.
	KindInvalid ValueKind = iota
	// KindBool holds true or false, as used by "on".
	KindBool
	// KindInt holds an integer such as "bri" or "transitiontime".
	KindInt
	// KindFloat holds a non-integral number.
	KindFloat
	// KindString holds text such as "alert" or "effect".
	KindString
	// KindXY holds a CIE colour space coordinate pair.
	KindXY
)

// String returns the lower-case kind name used in validation errors.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindXY:
		return "xy"
	default:
		return "invalid"
	}
}

// StateValue is a single state attribute value: a bool, int, float, string or
// CIE xy pair. The zero value is invalid.
type StateValue struct {
	kind ValueKind
	b    bool
	i    int
	f    float64
	s    string
	xy   [2]float64
}

// Bool returns a boolean state value.
func Bool(v bool) StateValue { return StateValue{kind: KindBool, b: v} }

// Int returns an integer state value.
func Int(v int) StateValue { return StateValue{kind: KindInt, i: v} }

// Float returns a floating point state value.
func Float(v float64) StateValue { return StateValue{kind: KindFloat, f: v} }

// String returns a string state value.
func String(v string) StateValue { return StateValue{kind: KindString, s: v} }

// XY returns a CIE color space coordinate pair.
func XY(x, y float64) StateValue { return StateValue{kind: KindXY, xy: [2]float64{x, y}} }

// Kind reports which type the value holds.
func (v StateValue) Kind() ValueKind { return v.kind }

// Value returns the held value as bool, int, float64, string or [2]float64.
func (v StateValue) Value() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindXY:
		return v.xy
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v StateValue) MarshalJSON() ([]byte, error) {
	if v.kind == KindInvalid {
		return nil, ErrInvalidStateValue
	}
	return json.Marshal(v.Value())
}

// FieldSpec describes a state field the bridge accepts.
type FieldSpec struct {
	Kind ValueKind
	// Min and Max bound int values and xy coordinates when Max > Min.
	Min, Max float64
	// Choices lists the accepted string values, if restricted.
	Choices []string
}

func (f FieldSpec) check(name string, v StateValue) error {
	if v.kind != f.Kind {
		return fmt.Errorf("%w: %s must be %s, got %s", ErrInvalidStateValue, name, f.Kind, v.kind)
	}
	switch v.kind {
	case KindInt:
		if f.Max > f.Min && (float64(v.i) < f.Min || float64(v.i) > f.Max) {
			return fmt.Errorf("%w: %s must be in [%g, %g], got %d", ErrInvalidStateValue, name, f.Min, f.Max, v.i)
		}
	case KindString:
		if len(f.Choices) > 0 && !slices.Contains(f.Choices, v.s) {
			return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidStateValue, name, f.Choices, v.s)
		}
	case KindXY:
		if f.Max > f.Min {
			for _, c := range v.xy {
				if c < f.Min || c > f.Max {
					return fmt.Errorf("%w: %s coordinates must be in [%g, %g], got %v", ErrInvalidStateValue, name, f.Min, f.Max, v.xy)
				}
			}
		}
	}
	return nil
}

// LightStateFields are the fields accepted by PUT lights/<id>/state.
var LightStateFields = map[string]FieldSpec{
	"on":             {Kind: KindBool},
	"bri":            {Kind: KindInt, Min: 1, Max: 254},
	"hue":            {Kind: KindInt, Min: 0, Max: 65535},
	"sat":            {Kind: KindInt, Min: 0, Max: 254},
	"xy":             {Kind: KindXY, Min: 0, Max: 1},
	"ct":             {Kind: KindInt, Min: 153, Max: 500},
	"alert":          {Kind: KindString, Choices: []string{"none", "select", "lselect"}},
	"effect":         {Kind: KindString, Choices: []string{"none", "colorloop"}},
	"transitiontime": {Kind: KindInt, Min: 0, Max: 65535},
	"bri_inc":        {Kind: KindInt, Min: -254, Max: 254},
	"sat_inc":        {Kind: KindInt, Min: -254, Max: 254},
	"hue_inc":        {Kind: KindInt, Min: -65534, Max: 65534},
	"ct_inc":         {Kind: KindInt, Min: -65534, Max: 65534},
	"xy_inc":         {Kind: KindXY, Min: -0.5, Max: 0.5},
}

// GroupActionFields are the fields accepted by PUT groups/<id>/action.
var GroupActionFields = func() map[string]FieldSpec {
	fields := make(map[string]FieldSpec, len(LightStateFields)+1)
	for name, spec := range LightStateFields {
		fields[name] = spec
	}
	fields["scene"] = FieldSpec{Kind: KindString}
	return fields
}()

// State is a partial state update, e.g. {"on": Bool(true), "bri": Int(200)}.
// Only the fields present are changed on the bridge.
type State map[string]StateValue

// NewState returns an empty State.
func NewState() State {
	return State{}
}

// Set sets an arbitrary field and returns the state for chaining.
func (s State) Set(name string, v StateValue) State {
	if s == nil {
		s = State{}
	}
	s[name] = v
	return s
}

// On switches the light on or off.
func (s State) On(on bool) State { return s.Set("on", Bool(on)) }

// Brightness sets the brightness (1-254).
func (s State) Brightness(bri int) State { return s.Set("bri", Int(bri)) }

// Hue sets the hue (0-65535).
func (s State) Hue(hue int) State { return s.Set("hue", Int(hue)) }

// Saturation sets the saturation (0-254).
func (s State) Saturation(sat int) State { return s.Set("sat", Int(sat)) }

// Color sets the CIE xy color.
func (s State) Color(x, y float64) State { return s.Set("xy", XY(x, y)) }

// ColorTemp sets the color temperature in mireds (153-500).
func (s State) ColorTemp(ct int) State { return s.Set("ct", Int(ct)) }

// Alert sets the alert effect ("none", "select", "lselect").
func (s State) Alert(alert string) State { return s.Set("alert", String(alert)) }

// Effect sets the dynamic effect ("none", "colorloop").
func (s State) Effect(effect string) State { return s.Set("effect", String(effect)) }

// TransitionTime sets the transition duration in multiples of 100ms.
func (s State) TransitionTime(ds int) State { return s.Set("transitiontime", Int(ds)) }

// BrightnessDelta changes brightness relative to the current value.
func (s State) BrightnessDelta(delta int) State { return s.Set("bri_inc", Int(delta)) }

// Scene recalls a scene (group actions only).
func (s State) Scene(id string) State { return s.Set("scene", String(id)) }

// Validate checks every field against fields. It returns the first problem
// found, in field name order.
func (s State) Validate(fields map[string]FieldSpec) error {
	if len(s) == 0 {
		return ErrEmptyState
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec, ok := fields[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownStateField, name)
		}
		if err := spec.check(name, s[name]); err != nil {
			return err
		}
	}
	return nil
}
