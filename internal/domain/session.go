package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StateTag names a dialog stage
type StateTag string

const (
	StateIdle StateTag = ""

	StateCreateGroupType StateTag = "create_group:get_type"
	StateCreateGroupName StateTag = "create_group:get_name"
	StateCreateGroupPlan StateTag = "create_group:get_plan_value"

	StateDeleteGroupType StateTag = "delete_group:get_type"
	StateDeleteGroupName StateTag = "delete_group:get_name"

	StateTransactionType        StateTag = "add_transaction:get_type"
	StateTransactionGroup       StateTag = "add_transaction:get_group"
	StateTransactionValue       StateTag = "add_transaction:get_value"
	StateTransactionDescription StateTag = "add_transaction:get_description"

	StateLinkAccountAdd    StateTag = "linked_accounts:add"
	StateLinkAccountDelete StateTag = "linked_accounts:delete"

	StateJointChatID StateTag = "joint_chat:get_id"

	StateArchiveYear  StateTag = "archive:get_year"
	StateArchiveMonth StateTag = "archive:get_month"
)

// Stage is one step of a dialog. Each implementation carries exactly the
// scratch data collected before that step.
type Stage interface {
	Tag() StateTag
}

type CreateGroupType struct{}

type CreateGroupName struct {
	Type TransactionType `json:"type"`
}

type CreateGroupPlan struct {
	Type TransactionType `json:"type"`
	Name string          `json:"name"`
}

type DeleteGroupType struct{}

type DeleteGroupName struct {
	Type TransactionType `json:"type"`
}

type TransactionTypeStage struct{}

type TransactionGroupStage struct {
	Type TransactionType `json:"type"`
}

type TransactionValueStage struct {
	Type      TransactionType `json:"type"`
	GroupID   int64           `json:"group_id"`
	GroupName string          `json:"group_name"`
}

type TransactionDescriptionStage struct {
	Type      TransactionType `json:"type"`
	GroupID   int64           `json:"group_id"`
	GroupName string          `json:"group_name"`
	Value     decimal.Decimal `json:"value"`
}

type LinkAccountAdd struct {
	SpaceID int64 `json:"space_id"`
}

type LinkAccountDelete struct {
	SpaceID int64 `json:"space_id"`
}

type JointChatID struct {
	SpaceID int64 `json:"space_id"`
}

type ArchiveYear struct{}

type ArchiveMonth struct {
	Year int `json:"year"`
}

func (CreateGroupType) Tag() StateTag             { return StateCreateGroupType }
func (CreateGroupName) Tag() StateTag             { return StateCreateGroupName }
func (CreateGroupPlan) Tag() StateTag             { return StateCreateGroupPlan }
func (DeleteGroupType) Tag() StateTag             { return StateDeleteGroupType }
func (DeleteGroupName) Tag() StateTag             { return StateDeleteGroupName }
func (TransactionTypeStage) Tag() StateTag        { return StateTransactionType }
func (TransactionGroupStage) Tag() StateTag       { return StateTransactionGroup }
func (TransactionValueStage) Tag() StateTag       { return StateTransactionValue }
func (TransactionDescriptionStage) Tag() StateTag { return StateTransactionDescription }
func (LinkAccountAdd) Tag() StateTag              { return StateLinkAccountAdd }
func (LinkAccountDelete) Tag() StateTag           { return StateLinkAccountDelete }
func (JointChatID) Tag() StateTag                 { return StateJointChatID }
func (ArchiveYear) Tag() StateTag                 { return StateArchiveYear }
func (ArchiveMonth) Tag() StateTag                { return StateArchiveMonth }

// Session is the dialog state of one user
type Session struct {
	Stage Stage
	// PromptID is the bot message awaiting the next reply, 0 if none.
	PromptID int
}

// Idle reports whether no dialog is in progress
func (s *Session) Idle() bool {
	return s == nil || s.Stage == nil
}

// Tag returns the current stage tag or StateIdle
func (s *Session) Tag() StateTag {
	if s.Idle() {
		return StateIdle
	}
	return s.Stage.Tag()
}

// decodeStage unmarshals a stage payload into a fresh value of the tagged
// stage type.
func decodeStage[T Stage](payload []byte) (Stage, error) {
	var st T
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

var stageDecoders = map[StateTag]func([]byte) (Stage, error){
	StateCreateGroupType:        decodeStage[CreateGroupType],
	StateCreateGroupName:        decodeStage[CreateGroupName],
	StateCreateGroupPlan:        decodeStage[CreateGroupPlan],
	StateDeleteGroupType:        decodeStage[DeleteGroupType],
	StateDeleteGroupName:        decodeStage[DeleteGroupName],
	StateTransactionType:        decodeStage[TransactionTypeStage],
	StateTransactionGroup:       decodeStage[TransactionGroupStage],
	StateTransactionValue:       decodeStage[TransactionValueStage],
	StateTransactionDescription: decodeStage[TransactionDescriptionStage],
	StateLinkAccountAdd:         decodeStage[LinkAccountAdd],
	StateLinkAccountDelete:      decodeStage[LinkAccountDelete],
	StateJointChatID:            decodeStage[JointChatID],
	StateArchiveYear:            decodeStage[ArchiveYear],
	StateArchiveMonth:           decodeStage[ArchiveMonth],
}

// EncodeStage returns the tag and JSON payload of a stage for storage
func EncodeStage(st Stage) (StateTag, []byte, error) {
	if st == nil {
		return StateIdle, nil, nil
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return "", nil, fmt.Errorf("encode stage %s: %w", st.Tag(), err)
	}
	return st.Tag(), payload, nil
}

// DecodeStage restores a stage stored with EncodeStage
func DecodeStage(tag StateTag, payload []byte) (Stage, error) {
	if tag == StateIdle {
		return nil, nil
	}
	decode, ok := stageDecoders[tag]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", tag)
	}
	st, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode stage %s: %w", tag, err)
	}
	return st, nil
}
