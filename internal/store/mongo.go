package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// opTimeout bounds each round trip to MongoDB.
const opTimeout = 5 * time.Second

// MongoContactStore keeps contacts in a MongoDB collection.
type MongoContactStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoContactStore(coll *mongo.Collection) *MongoContactStore {
	return &MongoContactStore{coll: coll, now: time.Now}
}

func (s *MongoContactStore) Create(ctx context.Context, ownerID string, in validation.ContactInput) (*models.Contact, error) {
	contact, err := newContact(ownerID, in, s.now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, contact); err != nil {
		return nil, apperrors.Storage("Failed to save contact", err)
	}
	return contact, nil
}

func (s *MongoContactStore) List(ctx context.Context, ownerID string) ([]models.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, apperrors.Storage("Failed to fetch contacts", err)
	}
	defer cursor.Close(ctx)

	contacts := make([]models.Contact, 0)
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, apperrors.Storage("Failed to fetch contacts", err)
	}
	return contacts, nil
}

func (s *MongoContactStore) Delete(ctx context.Context, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return errContactNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc struct {
		OwnerID string `bson:"owner_id"`
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"owner_id": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errContactNotFound
	}
	if err != nil {
		return apperrors.Storage("Failed to delete contact", err)
	}
	if doc.OwnerID != ownerID {
		return errContactForbidden
	}

	// The owner stays in the filter so a concurrent re-insert under another
	// owner can never be removed here.
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return apperrors.Storage("Failed to delete contact", err)
	}
	if res.DeletedCount == 0 {
		return errContactNotFound
	}
	return nil
}

// MongoUserStore keeps accounts in a MongoDB collection with a unique
// index on email (see database.EnsureIndexes).
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll}
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errEmailTaken
		}
		return apperrors.Storage("Failed to create user", err)
	}
	return nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u models.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, apperrors.Storage("Failed to load user", err)
	}
	return &u, nil
}
