package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notegraph/internal/interaction"
	"github.com/starford/notegraph/internal/layout"
	"github.com/starford/notegraph/internal/similarity"
	"github.com/starford/notegraph/internal/source"
	"github.com/starford/notegraph/internal/view"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Source      SourceConfig      `yaml:"source"`
	Similarity  SimilarityConfig  `yaml:"similarity"`
	Layout      LayoutConfig      `yaml:"layout"`
	Interaction InteractionConfig `yaml:"interaction"`
	Driver      DriverConfig      `yaml:"driver"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Source, &c.Similarity, &c.Layout, &c.Interaction, &c.Driver, &c.Auth,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// View returns the core component settings.
func (c *Config) View() view.Config {
	return view.Config{
		Similarity:  c.Similarity.Options(),
		Layout:      c.Layout.Engine(),
		Interaction: c.Interaction.Options(),
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig selects where notes are loaded from.
type SourceConfig struct {
	Kind     source.Kind   `yaml:"kind"`
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required,
			validation.In(source.KindJSON, source.KindVault, source.KindSQLite)),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// SimilarityConfig tunes link construction.
type SimilarityConfig struct {
	MinTokenLength int  `yaml:"min_token_length"`
	TagsOnly       bool `yaml:"tags_only"`
}

// Validate validates the similarity configuration.
func (c *SimilarityConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinTokenLength, validation.Min(0)),
	)
}

// Options converts to builder options.
func (c *SimilarityConfig) Options() similarity.Options {
	return similarity.Options{MinTokenLength: c.MinTokenLength, TagsOnly: c.TagsOnly}
}

// LayoutConfig holds the viewport and force parameters.
type LayoutConfig struct {
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	Padding             float64 `yaml:"padding"`
	Radius              float64 `yaml:"radius"`
	LinkDistance        float64 `yaml:"link_distance"`
	LinkWeightDistance  float64 `yaml:"link_weight_distance"`
	LinkStrength        float64 `yaml:"link_strength"`
	ChargeStrength      float64 `yaml:"charge_strength"`
	ChargeDistanceMax   float64 `yaml:"charge_distance_max"`
	CenterStrength      float64 `yaml:"center_strength"`
	VelocityDecay       float64 `yaml:"velocity_decay"`
	AlphaDecay          float64 `yaml:"alpha_decay"`
	AlphaMin            float64 `yaml:"alpha_min"`
	CollisionIterations int     `yaml:"collision_iterations"`
	Repulsion           string  `yaml:"repulsion"`
	Theta               float64 `yaml:"theta"`
	Seed                int64   `yaml:"seed"`
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Padding, validation.Min(0.0)),
		validation.Field(&c.Radius, validation.Required, validation.Min(0.0)),
		validation.Field(&c.LinkDistance, validation.Min(0.0)),
		validation.Field(&c.LinkStrength, validation.Required, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.ChargeDistanceMax, validation.Min(0.0)),
		validation.Field(&c.CenterStrength, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.VelocityDecay, validation.Required, validation.Min(0.0), validation.Max(1.0).Exclusive()),
		validation.Field(&c.AlphaDecay, validation.Required, validation.Min(0.0), validation.Max(1.0).Exclusive()),
		validation.Field(&c.AlphaMin, validation.Required, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.CollisionIterations, validation.Min(0)),
		validation.Field(&c.Repulsion, validation.In(string(layout.RepulsionPairwise), string(layout.RepulsionBarnesHut))),
		validation.Field(&c.Theta, validation.Min(0.0)),
	)
}

// Engine converts to engine parameters.
func (c *LayoutConfig) Engine() layout.Config {
	return layout.Config{
		Width:               c.Width,
		Height:              c.Height,
		Padding:             c.Padding,
		Radius:              c.Radius,
		LinkDistance:        c.LinkDistance,
		LinkWeightDistance:  c.LinkWeightDistance,
		LinkStrength:        c.LinkStrength,
		ChargeStrength:      c.ChargeStrength,
		ChargeDistanceMax:   c.ChargeDistanceMax,
		CenterStrength:      c.CenterStrength,
		VelocityDecay:       c.VelocityDecay,
		AlphaDecay:          c.AlphaDecay,
		AlphaMin:            c.AlphaMin,
		CollisionIterations: c.CollisionIterations,
		Repulsion:           layout.Repulsion(c.Repulsion),
		Theta:               c.Theta,
		Seed:                c.Seed,
	}
}

// InteractionConfig tunes pointer gestures.
type InteractionConfig struct {
	DragAlphaTarget float64 `yaml:"drag_alpha_target"`
	ClickThreshold  float64 `yaml:"click_threshold"`
	ReleaseJitter   float64 `yaml:"release_jitter"`
}

// Validate validates the interaction configuration.
func (c *InteractionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DragAlphaTarget, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.ClickThreshold, validation.Min(0.0)),
		validation.Field(&c.ReleaseJitter, validation.Min(0.0)),
	)
}

// Options converts to controller options.
func (c *InteractionConfig) Options() interaction.Options {
	return interaction.Options{
		DragAlphaTarget: c.DragAlphaTarget,
		ClickThreshold:  c.ClickThreshold,
		ReleaseJitter:   c.ReleaseJitter,
	}
}

// DriverConfig controls the animation loop and frame streaming.
type DriverConfig struct {
	FPS           int           `yaml:"fps"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Validate validates the driver configuration.
func (c *DriverConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FPS, validation.Required, validation.Min(1), validation.Max(240)),
		validation.Field(&c.FrameInterval, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	lc := layout.DefaultConfig()
	ic := interaction.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Kind:     source.KindJSON,
			Path:     "./data/entries.json",
			Watch:    true,
			Debounce: source.DefaultDebounce,
		},
		Similarity: SimilarityConfig{
			MinTokenLength: similarity.DefaultMinTokenLength,
		},
		Layout: LayoutConfig{
			Width:               lc.Width,
			Height:              lc.Height,
			Padding:             lc.Padding,
			Radius:              lc.Radius,
			LinkDistance:        lc.LinkDistance,
			LinkWeightDistance:  lc.LinkWeightDistance,
			LinkStrength:        lc.LinkStrength,
			ChargeStrength:      lc.ChargeStrength,
			ChargeDistanceMax:   lc.ChargeDistanceMax,
			CenterStrength:      lc.CenterStrength,
			VelocityDecay:       lc.VelocityDecay,
			AlphaDecay:          lc.AlphaDecay,
			AlphaMin:            lc.AlphaMin,
			CollisionIterations: lc.CollisionIterations,
			Repulsion:           string(lc.Repulsion),
			Theta:               lc.Theta,
		},
		Interaction: InteractionConfig{
			DragAlphaTarget: ic.DragAlphaTarget,
			ClickThreshold:  ic.ClickThreshold,
			ReleaseJitter:   ic.ReleaseJitter,
		},
		Driver: DriverConfig{
			FPS:           view.DefaultFPS,
			FrameInterval: 50 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
