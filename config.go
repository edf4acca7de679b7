package grove

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("grove: invalid config")

// SceneConfig configures a Scene. Zero fields take the values of
// DefaultSceneConfig when loaded from YAML.
type SceneConfig struct {
	// Debug turns on destroyed-node checks, tree-depth warnings and per
	// frame timing logs.
	Debug bool `yaml:"debug"`
	// RenderingLayers selects the layers Scene.Display draws.
	RenderingLayers RenderingLayers `yaml:"rendering_layers"`
	// TransparencyChannel names the channel transparent nodes are
	// redirected to.
	TransparencyChannel string `yaml:"transparency_channel"`
	// BehaviorCapacity is the initial capacity of the running behavior
	// list.
	BehaviorCapacity int `yaml:"behavior_capacity"`
	// MaxTreeDepth is the depth above which debug mode warns.
	MaxTreeDepth int `yaml:"max_tree_depth"`
}

// DefaultSceneConfig returns the configuration used by NewScene.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		RenderingLayers:     RenderingLayerDefault,
		TransparencyChannel: ChannelTransparency,
		BehaviorCapacity:    64,
		MaxTreeDepth:        DefaultMaxTreeDepth,
	}
}

// ParseSceneConfig decodes YAML into a SceneConfig, filling missing fields
// from DefaultSceneConfig.
func ParseSceneConfig(data []byte) (SceneConfig, error) {
	cfg := DefaultSceneConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SceneConfig{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return SceneConfig{}, err
	}
	return cfg, nil
}

// LoadSceneConfig reads and parses a YAML config file.
func LoadSceneConfig(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("read scene config: %w", err)
	}
	return ParseSceneConfig(data)
}

// Validate reports the first invalid field.
func (c SceneConfig) Validate() error {
	switch {
	case c.RenderingLayers == 0:
		return fmt.Errorf("%w: rendering_layers must not be 0", ErrConfig)
	case c.TransparencyChannel == "":
		return fmt.Errorf("%w: transparency_channel must not be empty", ErrConfig)
	case c.TransparencyChannel == ChannelDefault:
		return fmt.Errorf("%w: transparency_channel must differ from %q", ErrConfig, ChannelDefault)
	case c.BehaviorCapacity < 0:
		return fmt.Errorf("%w: behavior_capacity must not be negative", ErrConfig)
	case c.MaxTreeDepth <= 0:
		return fmt.Errorf("%w: max_tree_depth must be positive", ErrConfig)
	}
	return nil
}
