package actions

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAction reports a function or action name outside the vocabulary.
// Callers decoding provider output skip these calls rather than failing.
var ErrUnknownAction = errors.New("actions: unknown action")

// Decode maps one named call (a provider tool invocation or a wire action
// object) onto its Action variant. Arguments are validated against the variant
// schema first; omitted optional fields receive their documented defaults.
// Unknown names return ErrUnknownAction.
func Decode(name string, args []byte) (Action, error) {
	kind := Kind(name)
	switch kind {
	case KindCreateShape, KindCreateText, KindMoveShape, KindResizeShape, KindArrangeShapes:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if err := validateArgs(kind, args); err != nil {
		return nil, fmt.Errorf("actions: %s arguments: %w", kind, err)
	}

	switch kind {
	case KindCreateShape:
		var a CreateShape
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("actions: decode %s: %w", kind, err)
		}
		return a, nil
	case KindCreateText:
		var a CreateText
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("actions: decode %s: %w", kind, err)
		}
		if a.FontSize == 0 {
			a.FontSize = DefaultFontSize
		}
		return a, nil
	case KindMoveShape:
		var a MoveShape
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("actions: decode %s: %w", kind, err)
		}
		return a, nil
	case KindResizeShape:
		var a ResizeShape
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("actions: decode %s: %w", kind, err)
		}
		return a, nil
	default:
		var a ArrangeShapes
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("actions: decode %s: %w", kind, err)
		}
		if a.Spacing == 0 {
			a.Spacing = DefaultSpacing
		}
		return a, nil
	}
}

// DecodeList decodes a JSON array of wire action objects, preserving order.
// Elements naming an unknown action type are skipped; any other failure aborts
// the decode.
func DecodeList(data []byte) ([]Action, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("actions: invalid action list: %w", err)
	}
	out := make([]Action, 0, len(raw))
	for i, item := range raw {
		act, err := Unmarshal(item)
		if err != nil {
			if errors.Is(err, ErrUnknownAction) {
				continue
			}
			return nil, fmt.Errorf("actions: item %d: %w", i, err)
		}
		out = append(out, act)
	}
	return out, nil
}
