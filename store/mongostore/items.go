package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory-server/models"
	"inventory-server/store"
)

func (s *Store) CreateItem(ctx context.Context, it *models.Item) error {
	_, err := s.col(colItems).InsertOne(ctx, it)
	return translate(err)
}

func (s *Store) ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.WarehouseID != "" {
		filter["warehouse_id"] = f.WarehouseID
	}
	if f.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"sku": pattern}}
	}
	return findAll[models.Item](ctx, s.col(colItems), filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	var it models.Item
	err := s.col(colItems).FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	return it, translate(err)
}

func (s *Store) UpdateItem(ctx context.Context, it *models.Item) error {
	res, err := s.col(colItems).UpdateByID(ctx, it.ID, bson.M{"$set": bson.M{
		"sku":              it.SKU,
		"name":             it.Name,
		"description":      it.Description,
		"category":         it.Category,
		"unit":             it.Unit,
		"unit_price":       it.UnitPrice,
		"warehouse_id":     it.WarehouseID,
		"reorder_level":    it.ReorderLevel,
		"reorder_quantity": it.ReorderQuantity,
		"lead_time_days":   it.LeadTimeDays,
		"updated_at":       it.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.col(colItems).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	if _, err := s.col(colMovements).DeleteMany(ctx, bson.M{"item_id": id}); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	_, err = s.col(colReorders).DeleteMany(ctx, bson.M{"item_id": id})
	return err
}

func (s *Store) UpdateReorderPolicy(ctx context.Context, id string, level, quantity float64) (models.Item, error) {
	var it models.Item
	err := s.col(colItems).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reorder_level": level, "reorder_quantity": quantity, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&it)
	return it, translate(err)
}

// ApplyMovement updates the quantity with a single conditional update so
// concurrent outbound movements cannot drive stock negative, then records
// the movement. Standalone servers have no multi-document transactions, so
// a failed insert rolls the quantity change back by hand.
func (s *Store) ApplyMovement(ctx context.Context, m *models.StockMovement) (models.Item, error) {
	filter := bson.M{"_id": m.ItemID}
	var update, undo bson.M

	switch m.Type {
	case models.MovementIn:
		update = bson.M{"$inc": bson.M{"quantity": m.Quantity}}
		undo = bson.M{"$inc": bson.M{"quantity": -m.Quantity}}
	case models.MovementOut:
		filter["quantity"] = bson.M{"$gte": m.Quantity}
		update = bson.M{"$inc": bson.M{"quantity": -m.Quantity}}
		undo = bson.M{"$inc": bson.M{"quantity": m.Quantity}}
	case models.MovementAdjust:
		update = bson.M{"$set": bson.M{"quantity": m.Quantity}}
	default:
		return models.Item{}, fmt.Errorf("unknown movement type %q", m.Type)
	}
	update["$set"] = mergeSet(update["$set"], bson.M{"updated_at": m.CreatedAt})

	var before models.Item
	err := s.col(colItems).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err == mongo.ErrNoDocuments {
		if _, getErr := s.GetItem(ctx, m.ItemID); getErr != nil {
			return models.Item{}, getErr
		}
		return models.Item{}, store.ErrInsufficientStock
	}
	if err != nil {
		return models.Item{}, err
	}

	if m.Type == models.MovementAdjust {
		undo = bson.M{"$set": bson.M{"quantity": before.Quantity}}
	}

	if _, err := s.col(colMovements).InsertOne(ctx, m); err != nil {
		if _, undoErr := s.col(colItems).UpdateByID(ctx, m.ItemID, undo); undoErr != nil {
			return models.Item{}, fmt.Errorf("record movement: %w (quantity rollback failed: %v)", err, undoErr)
		}
		return models.Item{}, fmt.Errorf("record movement: %w", err)
	}

	after := before
	switch m.Type {
	case models.MovementIn:
		after.Quantity += m.Quantity
	case models.MovementOut:
		after.Quantity -= m.Quantity
	case models.MovementAdjust:
		after.Quantity = m.Quantity
	}
	after.UpdatedAt = m.CreatedAt
	return after, nil
}

func mergeSet(existing any, extra bson.M) bson.M {
	out := bson.M{}
	if m, ok := existing.(bson.M); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (s *Store) ListMovements(ctx context.Context, f store.MovementFilter) ([]models.StockMovement, error) {
	filter := bson.M{}
	if f.ItemID != "" {
		filter["item_id"] = f.ItemID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	window := bson.M{}
	if !f.From.IsZero() {
		window["$gte"] = f.From
	}
	if !f.To.IsZero() {
		window["$lt"] = f.To
	}
	if len(window) > 0 {
		filter["created_at"] = window
	}
	return findAll[models.StockMovement](ctx, s.col(colMovements), filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}
