package entities

import "fmt"

// ItemID is the opaque unique key of a BOM item
type ItemID string

// BOMID identifies the Bill of Materials an item belongs to
type BOMID string

// ItemType classifies a BOM item within the hierarchy
type ItemType int

const (
	Assembly ItemType = iota
	SubAssembly
	ChildPart
	BOP
)

// ItemTypes lists every item type in report order
var ItemTypes = []ItemType{Assembly, SubAssembly, ChildPart, BOP}

// String method for ItemType enum
func (t ItemType) String() string {
	switch t {
	case Assembly:
		return "assembly"
	case SubAssembly:
		return "sub_assembly"
	case ChildPart:
		return "child_part"
	case BOP:
		return "bop"
	default:
		return "unknown"
	}
}

// ParseItemType converts the stored snake_case name back to an ItemType
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "assembly":
		return Assembly, nil
	case "sub_assembly":
		return SubAssembly, nil
	case "child_part":
		return ChildPart, nil
	case "bop":
		return BOP, nil
	default:
		return 0, fmt.Errorf("unknown item type: %q", s)
	}
}

// MarshalText lets item types travel as their snake_case names in JSON and YAML
func (t ItemType) MarshalText() ([]byte, error) {
	if t < Assembly || t > BOP {
		return nil, fmt.Errorf("unknown item type: %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ItemType) UnmarshalText(text []byte) error {
	parsed, err := ParseItemType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
