package name

import (
	"testing"

	assert "github.com/stretchr/testify/require"
	"github.com/sirupsen/logrus"
)

func TestNameOperationIDsAssignsMissing(t *testing.T) {
	listOp := obj("summary", "list users")
	getOp := obj("summary", "get user")
	usersPath := obj("get", listOp)
	userPath := obj("get", getOp)
	paths := obj("users", usersPath, "users/{id}", userPath)
	root := obj("paths", paths)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	err := NameOperationIDs(root, false, log)
	assert.NoError(t, err)

	listID, ok := listOp.Get("operationId")
	assert.True(t, ok)
	assert.Equal(t, "listUsers", listID)

	getID, ok := getOp.Get("operationId")
	assert.True(t, ok)
	assert.Equal(t, "getUser", getID)
}

func TestNameOperationIDsKeepsExistingUnlessOverwrite(t *testing.T) {
	op := obj("operationId", "custom")
	usersPath := obj("get", op)
	paths := obj("users", usersPath)
	root := obj("paths", paths)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	err := NameOpenapi(root, OpenapiNamerOptions{Log: log})
	assert.NoError(t, err)

	id, _ := op.Get("operationId")
	assert.Equal(t, "custom", id)

	err = NameOpenapi(root, OpenapiNamerOptions{Log: log, Overwrite: true})
	assert.NoError(t, err)
	id, _ = op.Get("operationId")
	assert.Equal(t, "listUsers", id)
}

func TestNameOpenapiComponentSchemas(t *testing.T) {
	pet := obj("type", "object")
	schemas := obj("Pet", pet)
	components := obj("schemas", schemas)
	root := obj("components", components)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	err := NameOpenapi(root, OpenapiNamerOptions{Log: log})
	assert.NoError(t, err)

	title, ok := pet.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "Pet", title)
}
