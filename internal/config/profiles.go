package config

import (
	"fmt"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/spf13/viper"
)

// LoadProfile resolves a layout profile by name. Built-in profiles are
// overlaid with anything set under profiles.<name>; a name that is only
// present in the config file starts from the built-in profile of its
// variant.
func LoadProfile(name string) (engine.Profile, error) {
	key := "profiles." + name

	p, err := engine.LookupProfile(name)
	if err != nil {
		if !viper.IsSet(key) {
			return engine.Profile{}, err
		}
		variant, verr := model.ParseVariant(viper.GetString(key + ".variant"))
		if verr != nil {
			return engine.Profile{}, fmt.Errorf("%w: profile %s: %v", common.ErrInvalidConfig, name, verr)
		}
		p = engine.DefaultProfileFor(variant)
		p.Name = name
	}

	if viper.IsSet(key) {
		if err := viper.UnmarshalKey(key, &p); err != nil {
			return engine.Profile{}, fmt.Errorf("%w: profile %s: %v", common.ErrInvalidConfig, name, err)
		}
		p.Name = name

		variant, err := model.ParseVariant(p.Variant.String())
		if err != nil {
			return engine.Profile{}, fmt.Errorf("%w: profile %s: %v", common.ErrInvalidConfig, name, err)
		}
		p.Variant = variant
	}

	if err := p.Validate(); err != nil {
		return engine.Profile{}, err
	}
	return p, nil
}

// ProfileFor picks the configured profile for a variant, falling back to
// the built-in one.
func ProfileFor(variant model.Variant) (engine.Profile, error) {
	name := viper.GetString("defaults.profile." + variant.String())
	if name == "" {
		name = engine.DefaultProfileFor(variant).Name
	}
	return LoadProfile(name)
}

// LoadBranding returns the branding block, overlaid with branding.* keys.
func LoadBranding() (engine.Branding, error) {
	b := engine.DefaultBranding()
	if viper.IsSet("branding") {
		if err := viper.UnmarshalKey("branding", &b); err != nil {
			return engine.Branding{}, fmt.Errorf("%w: branding: %v", common.ErrInvalidConfig, err)
		}
	}
	b.LogoPath = ExpandPath(b.LogoPath)
	return b, nil
}

// ResolveProfile picks the profile for a statement: a named profile wins
// and must render the requested variant; otherwise the variant's configured
// default is used.
func ResolveProfile(name string, variant model.Variant) (engine.Profile, error) {
	if name == "" {
		return ProfileFor(variant)
	}

	p, err := LoadProfile(name)
	if err != nil {
		return engine.Profile{}, err
	}
	if variant != "" && p.Variant != variant {
		return engine.Profile{}, fmt.Errorf("%w: %s renders %s statements, not %s",
			common.ErrProfileVariant, name, p.Variant, variant)
	}
	return p, nil
}
