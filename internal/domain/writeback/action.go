package writeback

import (
	"encoding/json"
	"fmt"
)

// ProposedAction is the structured, type-specific instruction attached to a
// recommendation. It is a closed sum: every variant carries the shared base
// fields plus its own parameters, and the wire form is a tagged envelope
// {"type": ..., "payload": ...} so unknown variants fail loudly on decode.
type ProposedAction interface {
	ActionType() ActionType
}

// ActionBase carries the machine-readable fields every proposed action
// shares, plus the actionable instruction prose shown to the approver.
type ActionBase struct {
	AppointmentID string `json:"appointment_id,omitempty"`
	Date          string `json:"date,omitempty"`
	StartTime     string `json:"start_time,omitempty"`
	PatientName   string `json:"patient_name,omitempty"`
	Instruction   string `json:"instruction"`
}

type StatusUpdateAction struct {
	ActionBase
	NewStatus string `json:"new_status"`
}

func (StatusUpdateAction) ActionType() ActionType { return ActionStatusUpdate }

type WaitlistFillAction struct {
	ActionBase
	SlotStart string `json:"slot_start"`
	SlotEnd   string `json:"slot_end"`
}

func (WaitlistFillAction) ActionType() ActionType { return ActionWaitlistFill }

type OverbookSuggestionAction struct {
	ActionBase
	Hour           string   `json:"hour"`
	AppointmentIDs []string `json:"appointment_ids"`
}

func (OverbookSuggestionAction) ActionType() ActionType { return ActionOverbookSuggestion }

type RescheduleAction struct {
	ActionBase
	ProviderID    string `json:"provider_id"`
	BookedMinutes int    `json:"booked_minutes"`
}

func (RescheduleAction) ActionType() ActionType { return ActionReschedule }

type BlockInsertionAction struct {
	ActionBase
	ProviderID string `json:"provider_id"`
	GapStart   string `json:"gap_start"`
	GapEnd     string `json:"gap_end"`
	GapMinutes int    `json:"gap_minutes"`
}

func (BlockInsertionAction) ActionType() ActionType { return ActionBlockInsertion }

type actionEnvelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalAction encodes a proposed action into its tagged envelope.
func MarshalAction(a ProposedAction) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("proposed action is nil")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal action payload: %w", err)
	}
	return json.Marshal(actionEnvelope{Type: a.ActionType(), Payload: payload})
}

// UnmarshalAction decodes a tagged envelope back into its concrete variant.
func UnmarshalAction(data []byte) (ProposedAction, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal action envelope: %w", err)
	}

	var (
		action ProposedAction
		err    error
	)
	switch env.Type {
	case ActionStatusUpdate:
		var a StatusUpdateAction
		err = json.Unmarshal(env.Payload, &a)
		action = a
	case ActionWaitlistFill:
		var a WaitlistFillAction
		err = json.Unmarshal(env.Payload, &a)
		action = a
	case ActionOverbookSuggestion:
		var a OverbookSuggestionAction
		err = json.Unmarshal(env.Payload, &a)
		action = a
	case ActionReschedule:
		var a RescheduleAction
		err = json.Unmarshal(env.Payload, &a)
		action = a
	case ActionBlockInsertion:
		var a BlockInsertionAction
		err = json.Unmarshal(env.Payload, &a)
		action = a
	default:
		return nil, fmt.Errorf("unknown action type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return action, nil
}
