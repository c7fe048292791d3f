package bose

import (
	"context"
	"fmt"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

// SettingSpec describes an adjustable audio setting and its value range.
// Devices only expose the settings their hardware supports; use
// SupportedSettings to find out which.
type SettingSpec struct {
	Name string
	Min  int
	Max  int
	Step int
}

// AudioSettings lists every adjustable setting across the product line.
var AudioSettings = []SettingSpec{
	{Name: "bass", Min: -100, Max: 100, Step: 10},
	{Name: "treble", Min: -100, Max: 100, Step: 10},
	{Name: "center", Min: -100, Max: 100, Step: 10},
	{Name: "subwooferGain", Min: -100, Max: 100, Step: 10},
	{Name: "surround", Min: -100, Max: 100, Step: 10},
	{Name: "height", Min: -100, Max: 100, Step: 10},
	{Name: "avSync", Min: 0, Max: 200, Step: 10},
}

// LookupSetting finds the spec for a setting name.
func LookupSetting(name string) (SettingSpec, bool) {
	for _, spec := range AudioSettings {
		if spec.Name == name {
			return spec, true
		}
	}
	return SettingSpec{}, false
}

func settingResource(name string) string {
	return "/audio/" + name
}

// SupportedSettings returns the adjustable settings this device exposes.
func (s *Speaker) SupportedSettings() []SettingSpec {
	var supported []SettingSpec
	for _, spec := range AudioSettings {
		if s.HasCapability(settingResource(spec.Name)) {
			supported = append(supported, spec)
		}
	}
	return supported
}

// GetAudioSetting fetches the current value of an adjustable setting.
func (s *Speaker) GetAudioSetting(ctx context.Context, name string) (*AudioSetting, error) {
	spec, ok := LookupSetting(name)
	if !ok {
		return nil, fmt.Errorf("unknown audio setting %q", name)
	}
	if !s.HasCapability(settingResource(spec.Name)) {
		return nil, fmt.Errorf("%w: %s does not support %s", chimeerrors.ErrUnsupported, s.device.Name, name)
	}
	return request[AudioSetting](ctx, s, settingResource(spec.Name), "GET", nil)
}

// SetAudioSetting changes an adjustable setting. The value has to be within
// the setting's range and on its step grid.
func (s *Speaker) SetAudioSetting(ctx context.Context, name string, value int) error {
	spec, ok := LookupSetting(name)
	if !ok {
		return fmt.Errorf("unknown audio setting %q", name)
	}
	if err := spec.Validate(value); err != nil {
		return err
	}
	if !s.HasCapability(settingResource(spec.Name)) {
		return fmt.Errorf("%w: %s does not support %s", chimeerrors.ErrUnsupported, s.device.Name, name)
	}

	_, err := s.Request(ctx, settingResource(spec.Name), "POST", map[string]int{"value": value})
	return err
}

// Validate checks a value against the setting's range and step.
func (spec SettingSpec) Validate(value int) error {
	if value < spec.Min || value > spec.Max {
		return fmt.Errorf("%s value %d out of range %d..%d", spec.Name, value, spec.Min, spec.Max)
	}
	if spec.Step > 0 && (value-spec.Min)%spec.Step != 0 {
		return fmt.Errorf("%s value %d not a multiple of step %d", spec.Name, value, spec.Step)
	}
	return nil
}
