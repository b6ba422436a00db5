package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPairKeySymmetric(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	// Both orderings of the same pair produce the same key
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
}

func TestPairKeySorted(t *testing.T) {
	a, err := primitive.ObjectIDFromHex("000000000000000000000001")
	require.NoError(t, err)
	b, err := primitive.ObjectIDFromHex("000000000000000000000002")
	require.NoError(t, err)

	want := "000000000000000000000001:000000000000000000000002"
	assert.Equal(t, want, PairKey(a, b))
	assert.Equal(t, want, PairKey(b, a))
}

func TestPairKeyDistinctPairs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	assert.NotEqual(t, PairKey(a, b), PairKey(a, c))
	assert.NotEqual(t, PairKey(a, b), PairKey(b, c))
}

func TestParsePairKey(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	x, y, ok := ParsePairKey(PairKey(a, b))
	require.True(t, ok)
	assert.True(t, x < y)

	_, _, ok = ParsePairKey("not-a-pair-key")
	assert.False(t, ok)
}

func TestConversationParticipants(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	other := primitive.NewObjectID()

	conv := &Conversation{Participants: []primitive.ObjectID{a, b}}

	assert.True(t, conv.HasParticipant(a))
	assert.True(t, conv.HasParticipant(b))
	assert.False(t, conv.HasParticipant(other))

	assert.Equal(t, b, conv.OtherParticipant(a))
	assert.Equal(t, a, conv.OtherParticipant(b))
}
