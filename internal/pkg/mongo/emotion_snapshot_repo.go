package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EmotionSnapshotRepo interface {
	CreateSnapshot(ctx context.Context, snapshot *EmotionSnapshotModel) error
	GetSnapshotList(ctx context.Context, coupleID uint64, limit, offset int64) ([]*EmotionSnapshotModel, error)
}

type emotionSnapshotRepoImpl struct {
	col *mongo.Collection
}

func NewEmotionSnapshotRepo(db *mongo.Database) EmotionSnapshotRepo {
	return &emotionSnapshotRepoImpl{
		col: db.Collection("emotion_snapshots"),
	}
}

// CreateSnapshot 插入一条分类快照
func (s *emotionSnapshotRepoImpl) CreateSnapshot(ctx context.Context, snapshot *EmotionSnapshotModel) error {
	_, err := s.col.InsertOne(ctx, snapshot)
	return err
}

// GetSnapshotList 分页获取情侣的快照列表 (按时间倒序)
func (s *emotionSnapshotRepoImpl) GetSnapshotList(ctx context.Context, coupleID uint64, limit, offset int64) ([]*EmotionSnapshotModel, error) {
	filter := bson.M{"couple_id": coupleID}
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

	var list []*EmotionSnapshotModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
