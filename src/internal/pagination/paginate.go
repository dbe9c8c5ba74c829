package pagination

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page is one page of query results. CursorID is nil when the query
// returned nothing; otherwise it is the id to present for the next page.
type Page[T any] struct {
	Data     []T     `json:"data"`
	Count    int     `json:"count"`
	CursorID *string `json:"cursor_id"`
}

// Find runs a cursor-paginated query against collection. Results are
// ordered by _id descending, so the cursor is an exclusive lower bound:
// passing the last id of one page yields the next page. decode maps each
// raw document onto the element type.
func Find[T any](
	ctx context.Context,
	collection *mongo.Collection,
	take int,
	cursorID string,
	filter bson.M,
	decode func(*mongo.Cursor) (T, error),
) (*Page[T], error) {
	if filter == nil {
		filter = bson.M{}
	}

	if cursorID != "" {
		oid, err := primitive.ObjectIDFromHex(cursorID)
		if err != nil {
			logrus.WithField("cursor", cursorID).Warn("Ignoring malformed pagination cursor")
		} else {
			filter["_id"] = bson.M{"$lt": oid}
		}
		logrus.WithFields(logrus.Fields{
			"collection": collection.Name(),
			"take":       take,
		}).Debug("Making page query")
	}

	opts := options.Find().
		SetLimit(int64(take)).
		SetSort(bson.M{"_id": -1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var data []T
	var lastID string
	for cursor.Next(ctx) {
		item, err := decode(cursor)
		if err != nil {
			logrus.WithError(err).Error("Failed to decode page item")
			continue
		}
		data = append(data, item)

		var raw struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&raw); err == nil {
			lastID = raw.ID.Hex()
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	page := &Page[T]{Data: data, Count: len(data)}
	if len(data) == 0 {
		page.Data = []T{}
		return page, nil
	}
	page.CursorID = &lastID
	return page, nil
}
