package graphcanvas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Key names a physical key or button. Keyboard keys use ebiten's key names
// ("A", "Space", "Escape", ...); mouse buttons and the wheel use the
// constants below.
type Key string

const (
	KeyNone              Key = ""
	KeyLeftMouseButton   Key = "LeftMouseButton"
	KeyRightMouseButton  Key = "RightMouseButton"
	KeyMiddleMouseButton Key = "MiddleMouseButton"
	KeyMouseWheelAxis    Key = "MouseWheelAxis"
	KeyEscape            Key = "Escape"
)

// IsValid reports whether k names a key.
func (k Key) IsValid() bool { return k != KeyNone }

// IsMouseButton reports whether k is one of the mouse button keys.
func (k Key) IsMouseButton() bool {
	switch k {
	case KeyLeftMouseButton, KeyRightMouseButton, KeyMiddleMouseButton:
		return true
	}
	return false
}

// KeyFromEbiten converts an ebiten keyboard key.
func KeyFromEbiten(k ebiten.Key) Key {
	return Key(k.String())
}

// KeyFromMouseButton converts an ebiten mouse button. Buttons beyond the
// middle button are named "MouseButton<n>".
func KeyFromMouseButton(b ebiten.MouseButton) Key {
	switch b {
	case ebiten.MouseButtonLeft:
		return KeyLeftMouseButton
	case ebiten.MouseButtonRight:
		return KeyRightMouseButton
	case ebiten.MouseButtonMiddle:
		return KeyMiddleMouseButton
	default:
		return Key(fmt.Sprintf("MouseButton%d", int(b)))
	}
}

// TripType is the phase of an input trip.
type TripType uint8

const (
	TripPress   TripType = iota // key or button went down
	TripRelease                 // key or button went up
	TripManual                  // named virtual trigger fired by code
)

func (t TripType) String() string {
	switch t {
	case TripPress:
		return "press"
	case TripRelease:
		return "release"
	case TripManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Trip identifies one class of input event. Press and Release trips carry a
// Key; Manual trips carry a Name instead. Trips are comparable and are used
// directly as map keys.
type Trip struct {
	Type TripType
	Key  Key
	Name string
}

// PressTrip returns the trip for k going down.
func PressTrip(k Key) Trip { return Trip{Type: TripPress, Key: k} }

// ReleaseTrip returns the trip for k going up.
func ReleaseTrip(k Key) Trip { return Trip{Type: TripRelease, Key: k} }

// ManualTrip returns the trip for the named virtual trigger.
func ManualTrip(name string) Trip { return Trip{Type: TripManual, Name: name} }

// IsValid reports whether the trip carries the identifier its type needs.
func (t Trip) IsValid() bool {
	switch t.Type {
	case TripPress, TripRelease:
		return t.Key.IsValid()
	case TripManual:
		return t.Name != ""
	}
	return false
}

// Compare orders trips by type, then key, then name. It returns -1, 0 or 1.
func (t Trip) Compare(o Trip) int {
	switch {
	case t.Type != o.Type:
		if t.Type < o.Type {
			return -1
		}
		return 1
	case t.Key != o.Key:
		return strings.Compare(string(t.Key), string(o.Key))
	default:
		return strings.Compare(t.Name, o.Name)
	}
}

// String formats the trip as "<type>:<key or name>", the form ParseTrip reads.
func (t Trip) String() string {
	if t.Type == TripManual {
		return t.Type.String() + ":" + t.Name
	}
	return t.Type.String() + ":" + string(t.Key)
}

// ErrInvalidTrip is returned when a trip string cannot be parsed.
var ErrInvalidTrip = errors.New("invalid trip")

// ParseTrip parses "press:<Key>", "release:<Key>" or "manual:<Name>".
// The type prefix is case-insensitive.
func ParseTrip(s string) (Trip, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" {
		return Trip{}, fmt.Errorf("%w: %q", ErrInvalidTrip, s)
	}
	switch strings.ToLower(kind) {
	case "press":
		return PressTrip(Key(id)), nil
	case "release":
		return ReleaseTrip(Key(id)), nil
	case "manual":
		return ManualTrip(id), nil
	default:
		return Trip{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTrip, kind)
	}
}
