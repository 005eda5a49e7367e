package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory-server/models"
	"inventory-server/store"
)

// firstAdminClaim is the _id of the meta document recording which user was
// made admin on an empty database. Its unique _id lets only one of several
// racing registrations take the role.
const firstAdminClaim = "first_admin"

func (s *Store) RegisterUser(ctx context.Context, u *models.User) error {
	u.Role = models.RoleStaff
	existing, err := s.col(colUsers).CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}

	claimed := false
	if existing == 0 {
		_, err := s.col(colMeta).InsertOne(ctx, bson.M{"_id": firstAdminClaim, "user_id": u.ID})
		switch {
		case err == nil:
			claimed = true
			u.Role = models.RoleAdmin
		case !mongo.IsDuplicateKeyError(err):
			return fmt.Errorf("claim first admin: %w", err)
		}
	}

	if _, err := s.col(colUsers).InsertOne(ctx, u); err != nil {
		if claimed {
			// Release the claim so the next registration can become admin.
			_, _ = s.col(colMeta).DeleteOne(ctx, bson.M{"_id": firstAdminClaim})
		}
		u.Role = ""
		return translate(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.col(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, translate(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.col(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, translate(err)
}

func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.col(colUsers).UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePasswordReset(ctx context.Context, r models.PasswordReset) error {
	_, err := s.col(colResets).InsertOne(ctx, r)
	return translate(err)
}

// ConsumePasswordReset flips the used flag in the same operation that
// checks it, so a token cannot be redeemed twice.
func (s *Store) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var r models.PasswordReset
	err := s.col(colResets).FindOneAndUpdate(ctx,
		bson.M{"_id": tokenHash, "used": false, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"used": true}},
	).Decode(&r)
	if err != nil {
		return "", translate(err)
	}
	return r.UserID, nil
}
