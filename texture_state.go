package grove

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
)

// TextureLoader loads the texture called name.
type TextureLoader func(name string) (*Texture, error)

// FSTextureLoader returns a loader decoding PNG and JPEG files from fsys.
func FSTextureLoader(fsys fs.FS) TextureLoader {
	return func(name string) (*Texture, error) {
		f, err := fsys.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open texture %q: %w", name, err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode texture %q: %w", name, err)
		}
		return &Texture{Name: name, Image: img}, nil
	}
}

// TextureState binds a texture to a texture unit.
type TextureState struct {
	StateBase
	Texture *Texture
	Unit    int

	units []int
}

// NewTextureState creates a state binding t to unit.
func NewTextureState(t *Texture, unit int) *TextureState {
	return &TextureState{Texture: t, Unit: unit}
}

// LoadTextureState loads name with load and binds it to unit. When loading
// fails the failure is logged and ChessTexture is bound instead.
func LoadTextureState(load TextureLoader, name string, unit int) *TextureState {
	t, err := load(name)
	if err != nil {
		Logger().Warn("grove: texture load failed, using placeholder",
			slog.String("texture", name),
			slog.Any("error", err))
		t = ChessTexture()
	}
	s := NewTextureState(t, unit)
	s.Name = name
	return s
}

func (s *TextureState) DoEnableState(fc *FrameContext, _ *Node, _ RenderParam) StateResult {
	if s.Texture == nil {
		return StateSkipped
	}
	fc.rc.PushAndSetTexture(s.Unit, s.Texture)
	// Unit may change between enable and disable.
	s.units = append(s.units, s.Unit)
	return StateOK
}

func (s *TextureState) DoDisableState(fc *FrameContext, _ *Node, _ RenderParam) {
	unit := s.units[len(s.units)-1]
	s.units = s.units[:len(s.units)-1]
	fc.rc.PopTexture(unit)
}

func (s *TextureState) Clone() State {
	return &TextureState{StateBase: s.cloneBase(), Texture: s.Texture, Unit: s.Unit}
}
