package rowan

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// ParseTexturePackerJSON converts TexturePacker JSON into atlas descriptors,
// one per page. Supports both the hash format (single "frames" object with
// "meta.size") and the array format ("textures" array, each with "size" and
// its own frame map). Frame names are keyed with HashID.
//
// Rotated frames are rejected: the descriptor format has no rotation flag.
func ParseTexturePackerJSON(data []byte) ([]*Descriptor, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Size jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("rowan: parse atlas JSON: %v: %w", err, ErrMalformedDescriptor)
	}

	switch {
	case probe.Textures != nil:
		var pages []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &pages); err != nil {
			return nil, fmt.Errorf("rowan: parse atlas textures array: %v: %w", err, ErrMalformedDescriptor)
		}
		descs := make([]*Descriptor, 0, len(pages))
		for i, page := range pages {
			desc, err := framesToDescriptor(page.Frames, page.Size)
			if err != nil {
				return nil, fmt.Errorf("rowan: atlas page %d (%s): %w", i, page.Image, err)
			}
			descs = append(descs, desc)
		}
		return descs, nil
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("rowan: parse atlas frames: %v: %w", err, ErrMalformedDescriptor)
		}
		desc, err := framesToDescriptor(frames, probe.Meta.Size)
		if err != nil {
			return nil, fmt.Errorf("rowan: atlas page 0: %w", err)
		}
		return []*Descriptor{desc}, nil
	default:
		return nil, fmt.Errorf("rowan: atlas JSON has neither \"frames\" nor \"textures\" key: %w", ErrMalformedDescriptor)
	}
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

// framesToDescriptor packs a name->frame map into a descriptor. Names are
// visited in sorted order so the output is deterministic.
func framesToDescriptor(frames map[string]jsonFrame, size jsonSize) (*Descriptor, error) {
	if size.W <= 0 || size.H <= 0 {
		return nil, fmt.Errorf("page size %dx%d: %w", size.W, size.H, ErrMalformedDescriptor)
	}
	names := make([]string, 0, len(frames))
	for name := range frames {
		names = append(names, name)
	}
	slices.Sort(names)

	desc := &Descriptor{
		Frames: make([]RawFrame, 0, len(names)),
		Keys:   make([]uint32, 0, len(names)),
		Width:  uint32(size.W),
		Height: uint32(size.H),
	}
	for _, name := range names {
		f := frames[name]
		if f.Rotated {
			return nil, fmt.Errorf("frame %q is rotated: %w", name, ErrMalformedDescriptor)
		}
		raw, err := frameToRaw(f)
		if err != nil {
			return nil, fmt.Errorf("frame %q: %w", name, err)
		}
		desc.Frames = append(desc.Frames, raw)
		desc.Keys = append(desc.Keys, HashID(name))
	}
	return desc, nil
}

func frameToRaw(f jsonFrame) (RawFrame, error) {
	vals := [8]int{
		f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H,
		f.SpriteSourceSize.X, f.SpriteSourceSize.Y,
		f.SourceSize.W, f.SourceSize.H,
	}
	for _, v := range vals {
		if v < math.MinInt16 || v > math.MaxInt16 {
			return RawFrame{}, fmt.Errorf("value %d overflows int16: %w", v, ErrMalformedDescriptor)
		}
	}
	return RawFrame{
		TexCoordU:      int16(vals[0]),
		TexCoordV:      int16(vals[1]),
		CroppedWidth:   int16(vals[2]),
		CroppedHeight:  int16(vals[3]),
		OffsetX:        int16(vals[4]),
		OffsetY:        int16(vals[5]),
		OriginalWidth:  int16(vals[6]),
		OriginalHeight: int16(vals[7]),
	}, nil
}
