package database

import (
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPersistentModels_ContainsEntityTables(t *testing.T) {
	m := PersistentModels()
	assert.Len(t, m, 3)
	assert.IsType(t, &models.Account{}, m[0])
	assert.IsType(t, &models.Post{}, m[1])
	assert.IsType(t, &models.Comment{}, m[2])
}
