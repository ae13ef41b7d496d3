package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		need  Permission
		want  bool
	}{
		{"admin all", []string{"admin"}, PermProjectDelete, true},
		{"viewer view", []string{"viewer"}, PermReportView, true},
		{"viewer write", []string{"viewer"}, PermScanWrite, false},
		{"scanner scan write", []string{"scanner"}, PermScanWrite, true},
		{"scanner project view", []string{"scanner"}, PermProjectView, true},
		{"scanner project create", []string{"scanner"}, PermProjectCreate, false},
		{"unknown role", []string{"root"}, PermProjectView, false},
		{"no roles", nil, PermProjectView, false},
		{"merged roles", []string{"viewer", "scanner"}, PermScanWrite, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.roles, tt.need))
		})
	}
}

func TestMatch(t *testing.T) {
	assert.True(t, match("scan:*", "scan:write"))
	assert.False(t, match("scan:*", "scan"))
	assert.True(t, match("*:view", "profile:view"))
	assert.False(t, match("*:view", "profile:update"))
	assert.False(t, match("project:view", "project:view:extra"))
	assert.True(t, match("*", "anything:at:all"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("scanner"))
	assert.False(t, IsValidRole("team_admin"))
}
