package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Message, error)
	GetRoomHistory(ctx context.Context, roomID uint64, before *time.Time, limit int) ([]*Message, error)
	GetConversationHistory(ctx context.Context, convID uint64, before *time.Time, limit int) ([]*Message, error)
	LatestRoomMessage(ctx context.Context, roomID uint64) (*Message, error)
	LatestConversationMessage(ctx context.Context, convID uint64) (*Message, error)
	CountRoomMessagesAfter(ctx context.Context, roomID uint64, after time.Time) (int64, error)
	UpdateBody(ctx context.Context, id string, senderID uint64, content string) (*Message, error)
	SoftDelete(ctx context.Context, id string, senderID uint64) (*Message, error)
	PurgeRoomMessages(ctx context.Context, roomID uint64) error
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("chat_messages"),
	}
}

// SaveMessage 将消息存入 MongoDB，并回填生成的 ObjectID
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

// GetByID 精确查询
func (s *messageRepoImpl) GetByID(ctx context.Context, id string) (*Message, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var msg Message
	if err := s.col.FindOne(ctx, bson.M{"_id": objectID}).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetByIDs 批量查询，保持入参顺序
func (s *messageRepoImpl) GetByIDs(ctx context.Context, ids []string) ([]*Message, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	byID := make(map[string]*Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}
	ordered := make([]*Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// GetRoomHistory 历史消息查询逻辑
// before 为当前页面最旧一条消息的时间，取更早的消息；为 nil 则取最新一页。
func (s *messageRepoImpl) GetRoomHistory(ctx context.Context, roomID uint64, before *time.Time, limit int) ([]*Message, error) {
	filter := bson.M{"room_id": roomID}
	return s.history(ctx, filter, before, limit)
}

// GetConversationHistory 1对1历史消息查询
func (s *messageRepoImpl) GetConversationHistory(ctx context.Context, convID uint64, before *time.Time, limit int) ([]*Message, error) {
	filter := bson.M{"conversation_id": convID}
	return s.history(ctx, filter, before, limit)
}

func (s *messageRepoImpl) history(ctx context.Context, filter bson.M, before *time.Time, limit int) ([]*Message, error) {
	// 游标过滤：严格早于 before（前端传当前最旧一条的 sent_at）
	if before != nil {
		filter["sent_at"] = bson.M{"$lt": *before}
	}

	// 按 sent_at 降序排列（最新的在前），限制返回条数
	findOptions := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// LatestRoomMessage 群内最新一条消息（会话列表预览）
func (s *messageRepoImpl) LatestRoomMessage(ctx context.Context, roomID uint64) (*Message, error) {
	return s.latest(ctx, bson.M{"room_id": roomID})
}

// LatestConversationMessage 1对1会话最新一条消息
func (s *messageRepoImpl) LatestConversationMessage(ctx context.Context, convID uint64) (*Message, error) {
	return s.latest(ctx, bson.M{"conversation_id": convID})
}

func (s *messageRepoImpl) latest(ctx context.Context, filter bson.M) (*Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	var msg Message
	if err := s.col.FindOne(ctx, filter, opts).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountRoomMessagesAfter 统计某时间之后的消息数（未读数计算）
func (s *messageRepoImpl) CountRoomMessagesAfter(ctx context.Context, roomID uint64, after time.Time) (int64, error) {
	filter := bson.M{
		"room_id": roomID,
		"sent_at": bson.M{"$gt": after},
	}
	return s.col.CountDocuments(ctx, filter)
}

// UpdateBody 修改消息内容
// 过滤条件带 sender_id 与 deleted=false 守护：并发删除/他人修改都会落到 ErrNoDocuments。
func (s *messageRepoImpl) UpdateBody(ctx context.Context, id string, senderID uint64, content string) (*Message, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": objectID, "sender_id": senderID, "deleted": false}
	update := bson.M{"$set": bson.M{
		"content":    content,
		"edited":     true,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg Message
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SoftDelete 软删除：清空内容并打上 deleted 标记，保留记录用于排序与历史
func (s *messageRepoImpl) SoftDelete(ctx context.Context, id string, senderID uint64) (*Message, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": objectID, "sender_id": senderID, "deleted": false}
	update := bson.M{"$set": bson.M{
		"content":    "",
		"deleted":    true,
		"deleted_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg Message
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// PurgeRoomMessages 删除群的全部消息（仅限解散群聊时调用）
func (s *messageRepoImpl) PurgeRoomMessages(ctx context.Context, roomID uint64) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"room_id": roomID})
	return err
}
