package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"inventory-server/models"
	"inventory-server/store"
)

const testNS = "inventory_test.items"

func mockStore(mt *mtest.T) *Store {
	return &Store{client: mt.Client, db: mt.DB}
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func itemDoc(id string, qty float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "sku", Value: "SKU-" + id},
		{Key: "name", Value: "Item " + id},
		{Key: "quantity", Value: qty},
		{Key: "unit_price", Value: 2.5},
	}
}

// findAndModify replies carry the matched document under "value", or null
// when the filter matched nothing.
func modified(doc bson.D) bson.D {
	if doc == nil {
		return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
	}
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func found(docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, docs...)
}

func movement(itemID, typ string, qty float64) *models.StockMovement {
	return &models.StockMovement{
		ID:        "m-" + typ,
		ItemID:    itemID,
		Type:      typ,
		Quantity:  qty,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestApplyMovement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("inbound adds to the quantity on hand", func(mt *mtest.T) {
		mt.AddMockResponses(modified(itemDoc("i1", 10)), mtest.CreateSuccessResponse())

		got, err := mockStore(mt).ApplyMovement(ctx, movement("i1", models.MovementIn, 3))
		require.NoError(mt, err)
		assert.Equal(mt, 13.0, got.Quantity)
		assert.Equal(mt, []string{"findAndModify", "insert"}, commandNames(mt))
	})

	mt.Run("outbound is guarded by the quantity on hand", func(mt *mtest.T) {
		mt.AddMockResponses(modified(nil), found(itemDoc("i1", 2)))

		_, err := mockStore(mt).ApplyMovement(ctx, movement("i1", models.MovementOut, 5))
		assert.ErrorIs(mt, err, store.ErrInsufficientStock)

		started := mt.GetAllStartedEvents()
		require.Len(mt, started, 2)
		guard := started[0].Command.Lookup("query", "quantity", "$gte")
		assert.Equal(mt, 5.0, guard.Double())
	})

	mt.Run("unknown item", func(mt *mtest.T) {
		mt.AddMockResponses(modified(nil), found())

		_, err := mockStore(mt).ApplyMovement(ctx, movement("ghost", models.MovementOut, 1))
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("adjust sets the quantity", func(mt *mtest.T) {
		mt.AddMockResponses(modified(itemDoc("i1", 10)), mtest.CreateSuccessResponse())

		got, err := mockStore(mt).ApplyMovement(ctx, movement("i1", models.MovementAdjust, 4))
		require.NoError(mt, err)
		assert.Equal(mt, 4.0, got.Quantity)
	})

	mt.Run("failed insert rolls the quantity back", func(mt *mtest.T) {
		mt.AddMockResponses(
			modified(itemDoc("i1", 10)),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 2, Message: "bad movement"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		_, err := mockStore(mt).ApplyMovement(ctx, movement("i1", models.MovementOut, 5))
		require.Error(mt, err)
		assert.ErrorContains(mt, err, "record movement")
		assert.NotContains(mt, err.Error(), "rollback failed")
		assert.Equal(mt, []string{"findAndModify", "insert", "update"}, commandNames(mt))
	})

	mt.Run("unknown type never reaches the server", func(mt *mtest.T) {
		_, err := mockStore(mt).ApplyMovement(ctx, movement("i1", "transfer", 1))
		assert.ErrorContains(mt, err, "unknown movement type")
		assert.Empty(mt, commandNames(mt))
	})
}

func TestConsumePasswordReset(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mt.Run("single use", func(mt *mtest.T) {
		reset := bson.D{
			{Key: "_id", Value: "hash"},
			{Key: "user_id", Value: "u1"},
			{Key: "expires_at", Value: now.Add(time.Hour)},
			{Key: "used", Value: false},
		}
		mt.AddMockResponses(modified(reset), modified(nil))
		s := mockStore(mt)

		userID, err := s.ConsumePasswordReset(ctx, "hash", now)
		require.NoError(mt, err)
		assert.Equal(mt, "u1", userID)

		_, err = s.ConsumePasswordReset(ctx, "hash", now)
		assert.ErrorIs(mt, err, store.ErrNotFound)

		first := mt.GetAllStartedEvents()[0].Command
		assert.False(mt, first.Lookup("query", "used").Boolean())
		assert.True(mt, first.Lookup("update", "$set", "used").Boolean())
		assert.True(mt, now.Equal(first.Lookup("query", "expires_at", "$gt").Time()))
	})
}

func TestUpdateReorderStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	reorder := func(status string) bson.D {
		return bson.D{
			{Key: "_id", Value: "r1"},
			{Key: "item_id", Value: "i1"},
			{Key: "quantity", Value: 20.0},
			{Key: "status", Value: status},
		}
	}

	mt.Run("moves from the expected status", func(mt *mtest.T) {
		mt.AddMockResponses(modified(reorder(models.ReorderOrdered)))

		got, err := mockStore(mt).UpdateReorderStatus(ctx, "r1", models.ReorderPending, models.ReorderOrdered)
		require.NoError(mt, err)
		assert.Equal(mt, models.ReorderOrdered, got.Status)

		query := mt.GetStartedEvent().Command.Lookup("query", "status")
		assert.Equal(mt, models.ReorderPending, query.StringValue())
	})

	mt.Run("status moved on", func(mt *mtest.T) {
		mt.AddMockResponses(modified(nil), found(reorder(models.ReorderReceived)))

		_, err := mockStore(mt).UpdateReorderStatus(ctx, "r1", models.ReorderOrdered, models.ReorderReceived)
		assert.ErrorIs(mt, err, store.ErrConflict)
	})

	mt.Run("missing request", func(mt *mtest.T) {
		mt.AddMockResponses(modified(nil), found())

		_, err := mockStore(mt).UpdateReorderStatus(ctx, "r9", models.ReorderPending, models.ReorderOrdered)
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})
}

func TestDeleteItem(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("cascades to movements and reorders", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, mockStore(mt).DeleteItem(ctx, "i1"))

		started := mt.GetAllStartedEvents()
		require.Len(mt, started, 3)
		var collections []string
		for _, evt := range started {
			assert.Equal(mt, "delete", evt.CommandName)
			collections = append(collections, evt.Command.Lookup("delete").StringValue())
		}
		assert.Equal(mt, []string{colItems, colMovements, colReorders}, collections)
	})

	mt.Run("missing item stops before the cascade", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := mockStore(mt).DeleteItem(ctx, "ghost")
		assert.ErrorIs(mt, err, store.ErrNotFound)
		assert.Len(mt, mt.GetAllStartedEvents(), 1)
	})
}

func TestRegisterUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	noUsers := mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch)
	oneUser := mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}})
	inserted := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1})
	duplicate := mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index: 0, Code: 11000, Message: "E11000 duplicate key error",
	})

	mt.Run("first user claims admin", func(mt *mtest.T) {
		mt.AddMockResponses(noUsers, inserted, inserted)

		u := &models.User{ID: "u1", Email: "a@example.com"}
		require.NoError(mt, mockStore(mt).RegisterUser(ctx, u))
		assert.Equal(mt, models.RoleAdmin, u.Role)
		assert.Equal(mt, []string{"aggregate", "insert", "insert"}, commandNames(mt))
	})

	mt.Run("losing the claim race yields staff", func(mt *mtest.T) {
		mt.AddMockResponses(noUsers, duplicate, inserted)

		u := &models.User{ID: "u2", Email: "b@example.com"}
		require.NoError(mt, mockStore(mt).RegisterUser(ctx, u))
		assert.Equal(mt, models.RoleStaff, u.Role)
	})

	mt.Run("later users skip the claim", func(mt *mtest.T) {
		mt.AddMockResponses(oneUser, inserted)

		u := &models.User{ID: "u3", Email: "c@example.com"}
		require.NoError(mt, mockStore(mt).RegisterUser(ctx, u))
		assert.Equal(mt, models.RoleStaff, u.Role)
		assert.Equal(mt, []string{"aggregate", "insert"}, commandNames(mt))
	})

	mt.Run("duplicate email releases the claim", func(mt *mtest.T) {
		mt.AddMockResponses(noUsers, inserted, duplicate, inserted)

		err := mockStore(mt).RegisterUser(ctx, &models.User{ID: "u4", Email: "a@example.com"})
		assert.ErrorIs(mt, err, store.ErrDuplicate)
		assert.Equal(mt, []string{"aggregate", "insert", "insert", "delete"}, commandNames(mt))
	})
}

func TestDeleteWarehouse(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	// CountDocuments runs an aggregate that yields {n: <count>}.
	count := func(n int32) bson.D {
		if n == 0 {
			return mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch)
		}
		return mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
	}

	mt.Run("refused while items reference it", func(mt *mtest.T) {
		mt.AddMockResponses(count(2))

		err := mockStore(mt).DeleteWarehouse(ctx, "w1")
		assert.ErrorIs(mt, err, store.ErrConflict)
		assert.Equal(mt, []string{"aggregate"}, commandNames(mt))
	})

	mt.Run("empty warehouse is removed", func(mt *mtest.T) {
		mt.AddMockResponses(count(0), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, mockStore(mt).DeleteWarehouse(ctx, "w1"))
		assert.Equal(mt, []string{"aggregate", "delete"}, commandNames(mt))
	})
}
