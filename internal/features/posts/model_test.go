package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVisibleComments(t *testing.T) {
	visible := Comment{ID: primitive.NewObjectID(), Text: "nice cat"}
	hidden := Comment{ID: primitive.NewObjectID(), Text: "spam", Hidden: true}

	out := visibleComments([]Comment{visible, hidden})
	assert.Len(t, out, 1)
	assert.Equal(t, visible.ID, out[0].ID)

	assert.Empty(t, visibleComments(nil))
	assert.Empty(t, visibleComments([]Comment{hidden}))
}
