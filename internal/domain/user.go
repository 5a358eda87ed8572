package domain

import "fmt"

// UserShort is the compact user form listed among linked accounts
type UserShort struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IDTelegram *int64 `json:"id_telegram,omitempty"`
}

// Space is a shared budget container
type Space struct {
	ID                   int64       `json:"id"`
	Name                 string      `json:"name"`
	OwnerID              int64       `json:"owner_id"`
	OwnerUsername        string      `json:"owner_username"`
	LinkedChat           string      `json:"linked_chat"`
	AvailableLinkedUsers []UserShort `json:"available_linked_users"`
}

// IsOwnedBy reports whether userID is the owner of the space
func (s *Space) IsOwnedBy(userID int64) bool {
	return s != nil && s.OwnerID == userID
}

// HasJointChat reports whether notifications go to a linked chat
func (s *Space) HasJointChat() bool {
	return s != nil && s.LinkedChat != ""
}

// CoreSettings holds the active space and period of a user
type CoreSettings struct {
	User         string `json:"user"`
	CurrentSpace *Space `json:"current_space"`
	CurrentMonth *int   `json:"current_month"`
	CurrentYear  *int   `json:"current_year"`
}

// Period returns the active period. A missing month or year means no
// period is selected.
func (c *CoreSettings) Period() (Period, bool) {
	if c == nil || c.CurrentMonth == nil || c.CurrentYear == nil {
		return Period{}, false
	}
	return Period{Month: *c.CurrentMonth, Year: *c.CurrentYear}, true
}

// Validate checks that a selected period is within bounds
func (c *CoreSettings) Validate() error {
	if c == nil {
		return nil
	}
	if c.CurrentMonth != nil && !ValidMonth(*c.CurrentMonth) {
		return fmt.Errorf("current_month %d out of range", *c.CurrentMonth)
	}
	if c.CurrentYear != nil && !ValidYear(*c.CurrentYear) {
		return fmt.Errorf("current_year %d out of range", *c.CurrentYear)
	}
	return nil
}

// CoreSettingsUpdate is a partial update of core settings. Nil fields are
// left unchanged.
type CoreSettingsUpdate struct {
	CurrentSpaceID *int64 `json:"current_space_id,omitempty"`
	CurrentMonth   *int   `json:"current_month,omitempty"`
	CurrentYear    *int   `json:"current_year,omitempty"`
}

// PeriodUpdate builds an update selecting period p
func PeriodUpdate(p Period) CoreSettingsUpdate {
	month, year := p.Month, p.Year
	return CoreSettingsUpdate{CurrentMonth: &month, CurrentYear: &year}
}

// SpaceUpdate builds an update selecting space id
func SpaceUpdate(id int64) CoreSettingsUpdate {
	return CoreSettingsUpdate{CurrentSpaceID: &id}
}

// TelegramSettings holds chat-specific user preferences
type TelegramSettings struct {
	User         string `json:"user"`
	IDTelegram   *int64 `json:"id_telegram"`
	TelegramOnly bool   `json:"telegram_only"`
}

// TelegramSettingsUpdate is a partial update of telegram settings
type TelegramSettingsUpdate struct {
	TelegramOnly *bool `json:"telegram_only,omitempty"`
}

// SpacePatch is a partial update of a space
type SpacePatch struct {
	Name       *string `json:"name,omitempty"`
	LinkedChat *string `json:"linked_chat,omitempty"`
}

// LinkedChatPatch builds a patch setting the joint chat; "" disconnects it
func LinkedChatPatch(chat string) SpacePatch {
	return SpacePatch{LinkedChat: &chat}
}

// User represents a registered backend user
type User struct {
	ID                    int64             `json:"id"`
	Username              string            `json:"username"`
	Email                 string            `json:"email,omitempty"`
	FirstName             string            `json:"first_name,omitempty"`
	LastName              string            `json:"last_name,omitempty"`
	CoreSettings          *CoreSettings     `json:"core_settings"`
	TelegramSettings      *TelegramSettings `json:"telegram_settings,omitempty"`
	Spaces                []Space           `json:"spaces"`
	AvailableLinkedSpaces []Space           `json:"available_linked_spaces"`
}

// CurrentSpace returns the active space or nil
func (u *User) CurrentSpace() *Space {
	if u == nil || u.CoreSettings == nil {
		return nil
	}
	return u.CoreSettings.CurrentSpace
}

// Period returns the active period
func (u *User) Period() (Period, bool) {
	if u == nil {
		return Period{}, false
	}
	return u.CoreSettings.Period()
}

// OwnsCurrentSpace reports whether the user owns the active space
func (u *User) OwnsCurrentSpace() bool {
	return u.CurrentSpace().IsOwnedBy(u.ID)
}

// AccessibleSpaces returns own spaces followed by spaces shared with the user
func (u *User) AccessibleSpaces() []Space {
	spaces := make([]Space, 0, len(u.Spaces)+len(u.AvailableLinkedSpaces))
	spaces = append(spaces, u.Spaces...)
	return append(spaces, u.AvailableLinkedSpaces...)
}

// FindSpace looks up an accessible space by id
func (u *User) FindSpace(id int64) (*Space, bool) {
	for _, s := range u.AccessibleSpaces() {
		if s.ID == id {
			space := s
			return &space, true
		}
	}
	return nil, false
}
