// ABOUTME: Suggestion is a transient, ranked recommendation for the canvas
// ABOUTME: Tagged variant over connect, relocate and group actions
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SuggestionKind identifies the action a suggestion proposes
type SuggestionKind string

const (
	KindConnect  SuggestionKind = "connect"
	KindRelocate SuggestionKind = "relocate"
	KindGroup    SuggestionKind = "group"
)

// Action is the kind-specific payload of a suggestion. The set of
// implementations is closed: Connect, Relocate and Group.
type Action interface {
	Kind() SuggestionKind
	Blocks() []string
	action()
}

// Connect proposes an edge between BlockID and TargetID
type Connect struct {
	BlockID  string
	TargetID string
}

func (Connect) Kind() SuggestionKind { return KindConnect }
func (c Connect) Blocks() []string   { return []string{c.BlockID, c.TargetID} }
func (Connect) action()              {}

// Relocate proposes moving BlockID next to TargetNearID
type Relocate struct {
	BlockID      string
	TargetNearID string
}

func (Relocate) Kind() SuggestionKind { return KindRelocate }
func (r Relocate) Blocks() []string   { return []string{r.BlockID, r.TargetNearID} }
func (Relocate) action()              {}

// Group proposes clustering BlockIDs together
type Group struct {
	BlockIDs []string
}

func (Group) Kind() SuggestionKind { return KindGroup }
func (g Group) Blocks() []string   { return append([]string(nil), g.BlockIDs...) }
func (Group) action()              {}

// Suggestion pairs an action with the fields every kind shares
type Suggestion struct {
	ID         string
	Action     Action
	Reasoning  string
	Confidence float64
}

// NewConnect builds a connect suggestion
func NewConnect(id, blockID, targetID, reasoning string, confidence float64) Suggestion {
	return Suggestion{ID: id, Action: Connect{BlockID: blockID, TargetID: targetID}, Reasoning: reasoning, Confidence: confidence}
}

// NewRelocate builds a relocate suggestion
func NewRelocate(id, blockID, targetNearID, reasoning string, confidence float64) Suggestion {
	return Suggestion{ID: id, Action: Relocate{BlockID: blockID, TargetNearID: targetNearID}, Reasoning: reasoning, Confidence: confidence}
}

// NewGroup builds a group suggestion
func NewGroup(id string, blockIDs []string, reasoning string, confidence float64) Suggestion {
	return Suggestion{ID: id, Action: Group{BlockIDs: append([]string(nil), blockIDs...)}, Reasoning: reasoning, Confidence: confidence}
}

// Kind returns the suggestion's action kind
func (s Suggestion) Kind() SuggestionKind {
	if s.Action == nil {
		return ""
	}
	return s.Action.Kind()
}

// suggestionJSON is the flat wire form consumed by the canvas frontend
type suggestionJSON struct {
	ID         string         `json:"id"`
	Type       SuggestionKind `json:"type"`
	BlockID    string         `json:"blockId,omitempty"`
	TargetID   string         `json:"targetId,omitempty"`
	TargetNear string         `json:"targetNear,omitempty"`
	BlockIDs   []string       `json:"blockIds,omitempty"`
	Reasoning  string         `json:"reasoning"`
	Confidence float64        `json:"confidence"`
}

// MarshalJSON flattens the action payload into the wire form
func (s Suggestion) MarshalJSON() ([]byte, error) {
	out := suggestionJSON{
		ID:         s.ID,
		Reasoning:  s.Reasoning,
		Confidence: s.Confidence,
	}
	switch a := s.Action.(type) {
	case Connect:
		out.Type = KindConnect
		out.BlockID = a.BlockID
		out.TargetID = a.TargetID
	case Relocate:
		out.Type = KindRelocate
		out.BlockID = a.BlockID
		out.TargetNear = a.TargetNearID
	case Group:
		out.Type = KindGroup
		out.BlockIDs = a.BlockIDs
	default:
		return nil, errors.New("suggestion has no action")
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the typed action from the wire form
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var in suggestionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case KindConnect:
		*s = NewConnect(in.ID, in.BlockID, in.TargetID, in.Reasoning, in.Confidence)
	case KindRelocate:
		*s = NewRelocate(in.ID, in.BlockID, in.TargetNear, in.Reasoning, in.Confidence)
	case KindGroup:
		*s = NewGroup(in.ID, in.BlockIDs, in.Reasoning, in.Confidence)
	default:
		return fmt.Errorf("unknown suggestion type %q", in.Type)
	}
	return nil
}
