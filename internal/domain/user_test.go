package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCoreSettings_Period(t *testing.T) {
	tests := []struct {
		name     string
		settings *CoreSettings
		ok       bool
	}{
		{name: "nil settings", settings: nil, ok: false},
		{name: "both missing", settings: &CoreSettings{}, ok: false},
		{name: "month missing", settings: &CoreSettings{CurrentYear: intPtr(2025)}, ok: false},
		{name: "year missing", settings: &CoreSettings{CurrentMonth: intPtr(7)}, ok: false},
		{name: "both set", settings: &CoreSettings{CurrentMonth: intPtr(7), CurrentYear: intPtr(2025)}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.settings.Period()
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCoreSettings_Validate(t *testing.T) {
	assert.NoError(t, (&CoreSettings{CurrentMonth: intPtr(12), CurrentYear: intPtr(2200)}).Validate())
	assert.Error(t, (&CoreSettings{CurrentMonth: intPtr(0)}).Validate())
	assert.Error(t, (&CoreSettings{CurrentYear: intPtr(1999)}).Validate())
}

func TestUser_Spaces(t *testing.T) {
	own := Space{ID: 1, Name: "Семья", OwnerID: 10}
	shared := Space{ID: 2, Name: "Дача", OwnerID: 20, LinkedChat: "-100500"}
	user := &User{
		ID:                    10,
		CoreSettings:          &CoreSettings{CurrentSpace: &shared},
		Spaces:                []Space{own},
		AvailableLinkedSpaces: []Space{shared},
	}

	assert.Equal(t, []Space{own, shared}, user.AccessibleSpaces())
	assert.False(t, user.OwnsCurrentSpace())
	assert.True(t, user.CurrentSpace().HasJointChat())

	found, ok := user.FindSpace(2)
	assert.True(t, ok)
	assert.Equal(t, "Дача", found.Name)

	_, ok = user.FindSpace(3)
	assert.False(t, ok)
}
