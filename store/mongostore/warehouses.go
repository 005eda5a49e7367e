package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory-server/models"
	"inventory-server/store"
)

func (s *Store) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	_, err := s.col(colWarehouses).InsertOne(ctx, w)
	return translate(err)
}

func (s *Store) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return findAll[models.Warehouse](ctx, s.col(colWarehouses), bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (models.Warehouse, error) {
	var w models.Warehouse
	err := s.col(colWarehouses).FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	return w, translate(err)
}

func (s *Store) UpdateWarehouse(ctx context.Context, w *models.Warehouse) error {
	res, err := s.col(colWarehouses).UpdateByID(ctx, w.ID, bson.M{"$set": bson.M{
		"name":       w.Name,
		"location":   w.Location,
		"capacity":   w.Capacity,
		"updated_at": w.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteWarehouse(ctx context.Context, id string) error {
	stocked, err := s.col(colItems).CountDocuments(ctx, bson.M{"warehouse_id": id})
	if err != nil {
		return err
	}
	if stocked > 0 {
		return store.ErrConflict
	}
	res, err := s.col(colWarehouses).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
