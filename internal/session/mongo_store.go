package session

import (
	"codeclash/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sessionDoc struct {
	Profile   string     `bson:"_id"`
	Token     string     `bson:"token"`
	User      model.User `bson:"user"`
	SavedAt   time.Time  `bson:"savedAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

type mongoStore struct {
	collection *mongo.Collection
	profile    string
}

// NewMongoStore keeps one document per profile in the sessions collection
func NewMongoStore(client *mongo.Client, database, profile string) Store {
	db := client.Database(database)
	return &mongoStore{
		collection: db.Collection("sessions"),
		profile:    profile,
	}
}

func (m *mongoStore) Set(ctx context.Context, s *model.Session) error {
	doc := sessionDoc{
		Profile:   m.profile,
		Token:     s.Token,
		User:      s.User,
		SavedAt:   s.SavedAt,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": m.profile}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoStore) Get(ctx context.Context) (*model.Session, error) {
	var doc sessionDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": m.profile}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Session{Token: doc.Token, User: doc.User, SavedAt: doc.SavedAt}, nil
}

func (m *mongoStore) Delete(ctx context.Context) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.profile})
	return err
}
