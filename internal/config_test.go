package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSourceConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  SourceConfig
	}{
		{"unknown kind", SourceConfig{Kind: "redis", Path: "x"}},
		{"missing path", SourceConfig{Kind: "vault"}},
		{"negative debounce", SourceConfig{Kind: "json", Path: "x", Debounce: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLayoutConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LayoutConfig)
	}{
		{"zero width", func(c *LayoutConfig) { c.Width = 0 }},
		{"link strength above one", func(c *LayoutConfig) { c.LinkStrength = 1.5 }},
		{"velocity decay of one", func(c *LayoutConfig) { c.VelocityDecay = 1 }},
		{"unknown repulsion", func(c *LayoutConfig) { c.Repulsion = "octree" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg.Layout)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfig_View(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Layout.Repulsion = "barneshut"
	cfg.Layout.Seed = 7
	cfg.Similarity.TagsOnly = true
	cfg.Interaction.ClickThreshold = 5

	vc := cfg.View()
	if string(vc.Layout.Repulsion) != "barneshut" || vc.Layout.Seed != 7 {
		t.Errorf("layout = %+v", vc.Layout)
	}
	if vc.Layout.Width != cfg.Layout.Width || vc.Layout.ChargeStrength != cfg.Layout.ChargeStrength {
		t.Errorf("layout dimensions not carried over: %+v", vc.Layout)
	}
	if !vc.Similarity.TagsOnly || vc.Similarity.MinTokenLength != 4 {
		t.Errorf("similarity = %+v", vc.Similarity)
	}
	if vc.Interaction.ClickThreshold != 5 || vc.Interaction.DragAlphaTarget != 0.3 {
		t.Errorf("interaction = %+v", vc.Interaction)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	c := HTTPConfig{Port: 9090}
	if got := c.Address(); got != ":9090" {
		t.Errorf("Address() = %q", got)
	}
}
