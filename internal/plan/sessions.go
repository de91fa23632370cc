package plan

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// SessionID is the category tag of a plan day (strength, cardio, technique, rest)
type SessionID int

const (
	SessionStrength  SessionID = 1
	SessionCardio    SessionID = 2
	SessionTechnique SessionID = 3
	SessionRest      SessionID = 4 // Reserved: no workout on this day
)

// IsRest reports whether the category is the reserved rest day
func (id SessionID) IsRest() bool {
	return id == SessionRest
}

// SessionInfo contains display information for a session category
type SessionInfo struct {
	ID        SessionID
	Name      string
	ShortName string
}

// AllSessions defines the known session categories in order
var AllSessions = []SessionInfo{
	{ID: SessionStrength, Name: "Strength & Power", ShortName: "S1"},
	{ID: SessionCardio, Name: "Cardio & HIIT", ShortName: "S2"},
	{ID: SessionTechnique, Name: "Technique & Skills", ShortName: "S3"},
	{ID: SessionRest, Name: "Rest Day", ShortName: "R"},
}

// GetSessionInfo returns the info for a category, or an "Unknown Session" entry
func GetSessionInfo(id SessionID) SessionInfo {
	for _, info := range AllSessions {
		if info.ID == id {
			return info
		}
	}
	return SessionInfo{ID: id, Name: "Unknown Session", ShortName: "?"}
}

// Exercise is one entry of a session template
type Exercise struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

//go:embed data/exercises.json
var defaultExercisesJSON []byte

type exercisesFile struct {
	Sessions map[string]struct {
		Exercises []Exercise `json:"exercises"`
	} `json:"sessions"`
}

// Catalog holds the exercise template of every workout category
type Catalog struct {
	exercises map[SessionID][]Exercise
}

// ParseCatalog decodes an exercises document keyed by session id
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file exercisesFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse exercises: %w", err)
	}

	c := &Catalog{exercises: make(map[SessionID][]Exercise)}
	for key, session := range file.Sessions {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parse exercises: session key %q: %w", key, err)
		}
		c.exercises[SessionID(id)] = session.Exercises
	}
	return c, nil
}

// DefaultCatalog returns the built-in exercise templates
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultExercisesJSON)
	if err != nil {
		panic("plan: embedded exercises are invalid: " + err.Error())
	}
	return c
}

// Exercises returns a copy of the template for a category.
// Rest days and unknown categories have no exercises.
func (c *Catalog) Exercises(id SessionID) []Exercise {
	if id.IsRest() {
		return []Exercise{}
	}
	exercises := c.exercises[id]
	result := make([]Exercise, len(exercises))
	copy(result, exercises)
	return result
}

// Templates returns the categories that have exercises, in ascending order
func (c *Catalog) Templates() []SessionID {
	ids := make([]SessionID, 0, len(c.exercises))
	for id, exercises := range c.exercises {
		if id.IsRest() || len(exercises) == 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
