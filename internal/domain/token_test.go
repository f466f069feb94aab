package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserClaims(t *testing.T) {
	tests := []struct {
		name     string
		subject  int64
		role     string
		wantRole string
		wantErr  error
	}{
		{name: "teacher", subject: 42, role: "teacher", wantRole: RoleTeacher},
		{name: "padded role", subject: 3, role: " Student ", wantRole: RoleStudent},
		{name: "no role", subject: 3, wantRole: ""},
		{name: "zero subject", subject: 0, role: RoleAdmin, wantErr: ErrTokenInvalidSubject},
		{name: "negative subject", subject: -4, wantErr: ErrTokenInvalidSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := NewUserClaims(tt.subject, "x@school.io", tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}

func TestUserClaims_HasRole(t *testing.T) {
	c := &UserClaims{Subject: 1, Role: RoleTeacher}

	assert.True(t, c.HasRole(RoleTeacher))
	assert.True(t, c.HasRole(RoleAdmin, "teacher"))
	assert.False(t, c.HasRole(RoleStudent))
	assert.False(t, c.HasRole())
}

func TestUserClaims_JSONCarriesIdentity(t *testing.T) {
	b, err := json.Marshal(UserClaims{Subject: 7, Email: "t@example.com", Role: RoleTeacher})

	require.NoError(t, err)
	assert.JSONEq(t, `{"sub":7,"email":"t@example.com","role":"TEACHER"}`, string(b))
}
