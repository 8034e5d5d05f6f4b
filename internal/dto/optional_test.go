package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	var body struct {
		ThemeID Optional[uint64] `json:"theme_id"`
		Title   Optional[string] `json:"title"`
		Status  Optional[string] `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"theme_id": null, "title": "Roadmap"}`), &body))

	assert.True(t, body.ThemeID.Cleared())
	assert.Nil(t, body.ThemeID.Ptr())

	require.NotNil(t, body.Title.Ptr())
	assert.Equal(t, "Roadmap", *body.Title.Ptr())
	assert.False(t, body.Title.Cleared())

	assert.False(t, body.Status.Set)
	assert.Nil(t, body.Status.Ptr())
}
