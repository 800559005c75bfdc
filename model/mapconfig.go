package model

import "fmt"

// BrowserOptions carries presentation hints delivered with the map
// configuration rather than chosen by the host.
type BrowserOptions struct {
	// Autorotate is an additive yaw velocity in degrees per tick.
	Autorotate float64
}

// MapConfig is the loaded map configuration. The navigation core treats it as
// read-only except for Position, which the tick owns.
type MapConfig struct {
	ReferenceFrame ReferenceFrame
	Srs            map[string]Srs
	Position       Position
	BrowserOptions BrowserOptions
}

// SrsByID looks up an SRS definition.
func (m *MapConfig) SrsByID(id string) (Srs, error) {
	s, ok := m.Srs[id]
	if !ok {
		return Srs{}, fmt.Errorf("srs %q not present in map config", id)
	}
	return s, nil
}

// NavigationSrs returns the definition of the navigation SRS.
func (m *MapConfig) NavigationSrs() (Srs, error) {
	return m.SrsByID(m.ReferenceFrame.Model.NavigationSrs)
}

// NavigationSrsType returns the type of the navigation SRS, or
// SrsTypeUnknown when the config is incomplete.
func (m *MapConfig) NavigationSrsType() SrsType {
	s, err := m.NavigationSrs()
	if err != nil {
		return SrsTypeUnknown
	}
	return s.Type
}
