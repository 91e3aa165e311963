package model

import (
	"encoding/json"
	"time"
)

// StepID names a node in the guided dialogue.
type StepID string

const (
	StepGreeting          StepID = "greeting"
	StepPropertyType      StepID = "property_type"
	StepBudgetInput       StepID = "budget_input"
	StepAdditionalOptions StepID = "additional_options"
	StepLocationInput     StepID = "location_input"
	StepAreaInput         StepID = "area_input"
	StepAmenitiesInput    StepID = "amenities_input"
	StepUniversityInput   StepID = "university_input"
	StepConfirmSearch     StepID = "confirm_search"
	StepSearchResults     StepID = "search_results"
)

// Steps lists every step in dialogue order.
var Steps = []StepID{
	StepGreeting,
	StepPropertyType,
	StepBudgetInput,
	StepAdditionalOptions,
	StepLocationInput,
	StepAreaInput,
	StepAmenitiesInput,
	StepUniversityInput,
	StepConfirmSearch,
	StepSearchResults,
}

// Valid reports whether s is a known step.
func (s StepID) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// PropertyType is the kind of rental the user is looking for.
type PropertyType string

const (
	PropertyRoom      PropertyType = "room"
	PropertyApartment PropertyType = "apartment"
)

// Category returns the backend category code for the property type.
func (p PropertyType) Category() string {
	switch p {
	case PropertyApartment:
		return "can_ho"
	case PropertyRoom:
		return "phong_tro"
	default:
		return ""
	}
}

// Budget is a monthly price range in VND. Either bound may be absent.
type Budget struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Empty reports whether neither bound is set.
func (b *Budget) Empty() bool {
	return b == nil || (b.Min == nil && b.Max == nil)
}

// LocationDetails is what the location step understood from the user.
type LocationDetails struct {
	ProvinceName string   `json:"provinceName,omitempty"`
	WardName     string   `json:"wardName,omitempty"`
	Keywords     []string `json:"keywords"`
	Text         string   `json:"text,omitempty"`
}

// AmenityState tags whether every amenity name was matched to a reference id.
type AmenityState string

const (
	AmenitiesResolved   AmenityState = "resolved"
	AmenitiesUnresolved AmenityState = "unresolved"
)

// AmenitySelection holds amenity names and the ids resolved for them so far.
type AmenitySelection struct {
	State AmenityState `json:"state"`
	Names []string     `json:"names"`
	IDs   []string     `json:"ids"`
}

// CollectedData accumulates the fragments gathered over a conversation.
type CollectedData struct {
	Location        string            `json:"location,omitempty"`
	PropertyType    PropertyType      `json:"propertyType,omitempty"`
	Budget          *Budget           `json:"budget,omitempty"`
	LocationDetails *LocationDetails  `json:"locationDetails,omitempty"`
	Area            float64           `json:"area,omitempty"`
	Amenities       *AmenitySelection `json:"amenities,omitempty"`
	University      string            `json:"university,omitempty"`
}

// Role identifies who produced a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Step    StepID    `json:"step"`
	At      time.Time `json:"at"`
}

// Session is the state of one conversation.
type Session struct {
	SessionID     string        `json:"sessionId"`
	CurrentStep   StepID        `json:"currentStep"`
	CollectedData CollectedData `json:"collectedData"`
	History       []Turn        `json:"history"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewSession returns a session positioned at the greeting step.
func NewSession(id string) *Session {
	return &Session{
		SessionID:   id,
		CurrentStep: StepGreeting,
		History:     []Turn{},
		UpdatedAt:   time.Now(),
	}
}

// ParseSession decodes client-held conversation state. It returns nil when
// the payload is empty, malformed or names an unknown step.
func ParseSession(raw json.RawMessage) *Session {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if !s.CurrentStep.Valid() {
		return nil
	}
	if s.History == nil {
		s.History = []Turn{}
	}
	return &s
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Turn{}, s.History...)
	c.CollectedData = s.CollectedData.Clone()
	return &c
}

// Clone returns a deep copy of the collected data.
func (d CollectedData) Clone() CollectedData {
	c := d
	if d.Budget != nil {
		b := Budget{Min: copyFloat(d.Budget.Min), Max: copyFloat(d.Budget.Max)}
		c.Budget = &b
	}
	if d.LocationDetails != nil {
		l := *d.LocationDetails
		l.Keywords = append([]string{}, d.LocationDetails.Keywords...)
		c.LocationDetails = &l
	}
	if d.Amenities != nil {
		a := AmenitySelection{
			State: d.Amenities.State,
			Names: append([]string{}, d.Amenities.Names...),
			IDs:   append([]string{}, d.Amenities.IDs...),
		}
		c.Amenities = &a
	}
	return c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
