package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Account is the identity record. Its id doubles as the key of the user
// document in the users collection.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Verified     bool               `bson:"verified"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (s *Store) EnsureAccountIndexes(ctx context.Context) error {
	_, err := s.DB.Collection("accounts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	a.CreatedAt = time.Now().UTC()
	res, err := s.DB.Collection("accounts").InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := s.DB.Collection("accounts").FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) FindAccountByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	var a Account
	err := s.DB.Collection("accounts").FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) MarkAccountVerified(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.DB.Collection("accounts").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": true}})
	return err
}
