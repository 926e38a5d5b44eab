package message

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	chatmodel "AProject/module/chat/model"
	errs "AProject/tools/errs"
)

// Store is the durable message store. Persistence is the single source of
// truth for accepted messages; live delivery never conditions it.
type Store struct {
	MsgColl *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		MsgColl: db.Collection(chatmodel.MessageTableName),
	}
}

// Save appends one message record.
func (s *Store) Save(ctx context.Context, msg *chatmodel.ChatMessage) error {
	if msg == nil {
		return errs.New("nil message")
	}
	_, err := s.MsgColl.InsertOne(ctx, msg)
	return errs.WrapMsg(err, "insert chat message", "id", msg.ID)
}

// HistoryBetween returns both directions of the participant pair merged and
// sorted by creation time ascending.
func (s *Store) HistoryBetween(ctx context.Context, userID, otherID int64) ([]chatmodel.ChatMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from_user_id": userID, "to_user_id": otherID},
		bson.M{"from_user_id": otherID, "to_user_id": userID},
	}}
	cur, err := s.MsgColl.Find(ctx, filter)
	if err != nil {
		return nil, errs.WrapMsg(err, "query chat history")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []chatmodel.ChatMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode chat history")
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UnreadFor returns unread messages addressed to the user.
func (s *Store) UnreadFor(ctx context.Context, userID int64) ([]chatmodel.ChatMessage, error) {
	cur, err := s.MsgColl.Find(ctx, bson.M{"to_user_id": userID, "is_read": false})
	if err != nil {
		return nil, errs.WrapMsg(err, "query unread")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []chatmodel.ChatMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode unread")
	}
	return out, nil
}
