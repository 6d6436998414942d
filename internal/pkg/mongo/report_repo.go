package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepo interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReportsByMessage(ctx context.Context, messageID string, limit, offset int64) ([]*Report, error)
}

type reportRepoImpl struct {
	col *mongo.Collection
}

func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepoImpl{
		col: db.Collection("message_reports"),
	}
}

// CreateReport 插入举报记录，消息本身状态不变
func (s *reportRepoImpl) CreateReport(ctx context.Context, report *Report) error {
	_, err := s.col.InsertOne(ctx, report)
	return err
}

// GetReportsByMessage 分页获取某条消息的举报记录（按时间倒序）
func (s *reportRepoImpl) GetReportsByMessage(ctx context.Context, messageID string, limit, offset int64) ([]*Report, error) {
	filter := bson.M{"message_id": messageID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*Report
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
