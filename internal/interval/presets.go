package interval

// PresetID names a timer preset
type PresetID string

const (
	PresetEMOM   PresetID = "emom"
	PresetTabata PresetID = "tabata"
	PresetCustom PresetID = "custom"
)

// Preset is a named timer configuration without an exercise count
type Preset struct {
	ID          PresetID
	Name        string
	Description string
	WorkSeconds int
	RestSeconds int
	Rounds      int
}

// Presets is an ordered list of selectable presets
type Presets []Preset

// AllPresets defines the selectable timer presets in display order
var AllPresets = Presets{
	{
		ID:          PresetEMOM,
		Name:        "EMOM",
		Description: "Every Minute On the Minute - 60s work intervals",
		WorkSeconds: 60,
		RestSeconds: 0,
		Rounds:      3,
	},
	{
		ID:          PresetTabata,
		Name:        "Tabata",
		Description: "Tabata - 20s work / 10s rest intervals",
		WorkSeconds: 20,
		RestSeconds: 10,
		Rounds:      3,
	},
	{
		ID:          PresetCustom,
		Name:        "Custom",
		Description: "Custom - 45s work / 15s rest intervals",
		WorkSeconds: 45,
		RestSeconds: 15,
		Rounds:      3,
	},
}

// ByID returns the preset with the given id. Unknown ids fall back to the
// first preset (EMOM in AllPresets).
func (ps Presets) ByID(id PresetID) (Preset, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return ps[0], false
}

// Next returns the preset after id, wrapping around
func (ps Presets) Next(id PresetID) Preset {
	for i, p := range ps {
		if p.ID == id {
			return ps[(i+1)%len(ps)]
		}
	}
	return ps[0]
}

// Config builds a timer Config for a session with exerciseCount exercises.
// A session without exercises still runs a single exercise.
func (p Preset) Config(exerciseCount int) Config {
	if exerciseCount < 1 {
		exerciseCount = 1
	}
	return Config{
		WorkSeconds:       p.WorkSeconds,
		RestSeconds:       p.RestSeconds,
		RoundsPerExercise: p.Rounds,
		ExerciseCount:     exerciseCount,
	}
}

// WithCustom returns a copy where the custom preset uses the given values.
// Non-positive work or rounds and negative rest keep the defaults.
func (ps Presets) WithCustom(work, rest, rounds int) Presets {
	result := make(Presets, len(ps))
	copy(result, ps)
	for i := range result {
		if result[i].ID != PresetCustom {
			continue
		}
		if work > 0 {
			result[i].WorkSeconds = work
		}
		if rest >= 0 {
			result[i].RestSeconds = rest
		}
		if rounds > 0 {
			result[i].Rounds = rounds
		}
	}
	return result
}
