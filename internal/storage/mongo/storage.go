package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
)

const (
	usersCollection = "users"
	gamesCollection = "games"

	emailIndexName      = "email_unique"
	usernameIndexName   = "username_unique"
	activeGameIndexName = "active_game_per_user"
)

// userDocument adds the normalised email used by the unique index
type userDocument struct {
	model.User `bson:",inline"`
	EmailKey   string `bson:"emailKey"`
}

// Storage is a MongoDB-backed implementation of the storage interface.
// Uniqueness rules are unique indexes; the one-active-game rule is a
// partial unique index on userId over documents with isGameOver false.
type Storage struct {
	client *mongo.Client
	db     *mongo.Database
	users  *mongo.Collection
	games  *mongo.Collection
}

// New connects to MongoDB and ensures the indexes exist
func New(cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewWithClient(client, cfg.Database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewWithClient creates a storage on an existing client. Indexes are not
// created; call New for that.
func NewWithClient(client *mongo.Client, database string) *Storage {
	db := client.Database(database)
	return &Storage{
		client: client,
		db:     db,
		users:  db.Collection(usersCollection),
		games:  db.Collection(gamesCollection),
	}
}

// Close disconnects the client
func (s *Storage) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "emailKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndexName),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndexName),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.games.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName(activeGameIndexName).
			SetPartialFilterExpression(bson.M{"isGameOver": false}),
	})
	if err != nil {
		return fmt.Errorf("create game indexes: %w", err)
	}
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	doc := userDocument{User: *user, EmailKey: strings.ToLower(user.Email)}
	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), usernameIndexName) {
				return model.ErrUsernameTaken
			}
			return model.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"emailKey": strings.ToLower(email)})
}

func (s *Storage) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &doc.User, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	_, err := s.games.InsertOne(ctx, game)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), activeGameIndexName) {
			return model.ErrActiveGameExists
		}
		return err
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := s.findGame(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrGameNotFound
	}
	return game, err
}

func (s *Storage) GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error) {
	game, err := s.findGame(ctx, bson.M{"userId": userID, "isGameOver": false})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNoActiveGame
	}
	return game, err
}

func (s *Storage) findGame(ctx context.Context, filter bson.M) (*model.Game, error) {
	var game model.Game
	if err := s.games.FindOne(ctx, filter).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	filter := bson.M{"_id": game.ID, "revision": game.Revision - 1}
	res, err := s.games.ReplaceOne(ctx, filter, game)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrActiveGameExists
		}
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the game is gone or another write won
	n, err := s.games.CountDocuments(ctx, bson.M{"_id": game.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrGameNotFound
	}
	return model.ErrStaleGame
}
