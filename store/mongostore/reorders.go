package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory-server/models"
	"inventory-server/store"
)

func (s *Store) CreateReorder(ctx context.Context, r *models.ReorderRequest) error {
	_, err := s.col(colReorders).InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) ListReorders(ctx context.Context, status string) ([]models.ReorderRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findAll[models.ReorderRequest](ctx, s.col(colReorders), filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *Store) GetReorder(ctx context.Context, id string) (models.ReorderRequest, error) {
	var r models.ReorderRequest
	err := s.col(colReorders).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	return r, translate(err)
}

func (s *Store) UpdateReorderStatus(ctx context.Context, id, from, to string) (models.ReorderRequest, error) {
	var r models.ReorderRequest
	err := s.col(colReorders).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err == mongo.ErrNoDocuments {
		if _, getErr := s.GetReorder(ctx, id); getErr != nil {
			return r, getErr
		}
		return r, store.ErrConflict
	}
	return r, translate(err)
}
