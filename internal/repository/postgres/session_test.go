package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"ffbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_Get(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedTag   domain.StateTag
		expectedID    int
		expectedError bool
	}{
		{
			name:   "stored stage",
			userID: 123,
			mockRows: sqlmock.NewRows([]string{"state", "payload", "prompt_id"}).
				AddRow("create_group:get_plan_value", []byte(`{"type":"expense","name":"Продукты"}`), 77),
			expectedTag: domain.StateCreateGroupPlan,
			expectedID:  77,
		},
		{
			name:        "no session",
			userID:      456,
			mockError:   sql.ErrNoRows,
			expectedTag: domain.StateIdle,
		},
		{
			name:   "unknown stage",
			userID: 789,
			mockRows: sqlmock.NewRows([]string{"state", "payload", "prompt_id"}).
				AddRow("admin:reboot", []byte(`{}`), 1),
			expectedError: true,
		},
		{
			name:          "database error",
			userID:        1,
			mockError:     errors.New("connection reset"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewSessionRepo(db)

			query := "SELECT state, payload, prompt_id FROM dialog_sessions WHERE user_id = \\$1"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnRows(tt.mockRows)
			}

			s, err := repo.Get(context.Background(), tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedTag, s.Tag())
				assert.Equal(t, tt.expectedID, s.PromptID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepo_GetDecodesPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT state, payload, prompt_id FROM dialog_sessions").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"state", "payload", "prompt_id"}).
			AddRow("archive:get_month", []byte(`{"year":2024}`), 0))

	s, err := NewSessionRepo(db).Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveMonth{Year: 2024}, s.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepo(db)

	userID := int64(123)

	mock.ExpectExec("INSERT INTO dialog_sessions").
		WithArgs(userID, "joint_chat:get_id", []byte(`{"space_id":5}`), 42).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), userID, &domain.Session{
		Stage:    domain.JointChatID{SpaceID: 5},
		PromptID: 42,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_SaveIdleClears(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM dialog_sessions WHERE user_id = \\$1").
		WithArgs(int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewSessionRepo(db).Save(context.Background(), 123, &domain.Session{})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_CleanStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM dialog_sessions WHERE updated_at").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewSessionRepo(db).CleanStale(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
