package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type flexTimeDoc struct {
	At flexTime `bson:"at"`
}

func TestFlexTimeDecodesNativeDatetime(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{"at": primitive.NewDateTimeFromTime(want)})
	require.NoError(t, err)

	var doc flexTimeDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.True(t, doc.At.Equal(want), doc.At.Time)
}

func TestFlexTimeDecodesMillisNumbers(t *testing.T) {
	want := time.Date(2023, 1, 15, 8, 0, 0, 0, time.UTC)
	millis := want.UnixMilli()

	for name, value := range map[string]interface{}{
		"int64":  millis,
		"double": float64(millis),
	} {
		raw, err := bson.Marshal(bson.M{"at": value})
		require.NoError(t, err, name)

		var doc flexTimeDoc
		require.NoError(t, bson.Unmarshal(raw, &doc), name)
		assert.True(t, doc.At.Equal(want), name)
	}
}

func TestFlexTimeDecodesWrappedSeconds(t *testing.T) {
	want := time.Unix(1700000000, 500)

	for name, value := range map[string]interface{}{
		"plain":      bson.M{"seconds": int64(1700000000), "nanoseconds": int64(500)},
		"underscore": bson.M{"_seconds": int64(1700000000), "_nanoseconds": int64(500)},
	} {
		raw, err := bson.Marshal(bson.M{"at": value})
		require.NoError(t, err, name)

		var doc flexTimeDoc
		require.NoError(t, bson.Unmarshal(raw, &doc), name)
		assert.True(t, doc.At.Equal(want), name)
	}
}

func TestFlexTimeDecodesNullAsZero(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"at": nil})
	require.NoError(t, err)

	var doc flexTimeDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.True(t, doc.At.IsZero())
}

func TestFlexTimeRejectsUnknownEncoding(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"at": "yesterday"})
	require.NoError(t, err)

	var doc flexTimeDoc
	assert.Error(t, bson.Unmarshal(raw, &doc))
}

func TestGoalDocRoundTripKeepsObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	doc := goalDoc{
		ID:     id,
		UserID: "u1",
		Title:  "Read 12 books",
		Milestones: []stepDoc{
			{ID: "m1", Title: "Book one", CreatedAt: flexTime{time.Now().Truncate(time.Millisecond)}},
		},
		Timeline:  []stepDoc{},
		CreatedAt: flexTime{time.Now().Truncate(time.Millisecond)},
	}

	g := doc.toModel()
	assert.Equal(t, id.Hex(), g.ID)
	require.Len(t, g.Milestones, 1)
	assert.Equal(t, "m1", g.Milestones[0].ID)
	assert.NotNil(t, g.Timeline)
}
