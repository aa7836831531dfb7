package name

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

// Ported from original_source/src/process/name/endpoint.rs's test_operation_name cases.
func TestOperationIDForward(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{"get", "users/{id}", "getUser"},
		{"post", "users/{id}/groups", "createUserGroup"},
		{"get", "users/{id}/groups", "listUserGroups"},
		{"patch", "users/{id}/groups", "updateUserGroups"},
		{"patch", "users/{id}/groups/{id}", "updateUserGroup"},
		{"get", "users/{id}/groups/{id}", "getUserGroup"},
		{"get", "users", "listUsers"},
		{"get", "v2/users", "v2ListUsers"},
		{"get", "v2/users/{id}", "v2GetUser"},
		{"get", "v1/users/{id}/status", "v1GetUserStatus"},
		{"get", "user-groups/{id}", "getUsergroup"},
		{"get", "v1/users/{id}/statuses", "v1ListUserStatuses"},
	}
	for _, c := range cases {
		e, err := NewEndpoint(c.method, c.path)
		assert.NoError(t, err, c.path)
		assert.Equal(t, c.want, e.OperationID(false), c.path)
	}
}

// Ported from original_source/src/process/name/endpoint.rs's
// test_operation_name_reverse cases (resourceMethodVersion=true).
func TestOperationIDReverse(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{"get", "user-groups/{id}", "usergroupGet"},
		{"get", "v1/users/{id}/statuses", "userStatusesListV1"},
	}
	for _, c := range cases {
		e, err := NewEndpoint(c.method, c.path)
		assert.NoError(t, err, c.path)
		assert.Equal(t, c.want, e.OperationID(true), c.path)
	}
}

func TestNewEndpointValidation(t *testing.T) {
	_, err := NewEndpoint("fetch", "users")
	assert.Error(t, err)

	_, err = NewEndpoint("get", "///")
	assert.Error(t, err)
}
