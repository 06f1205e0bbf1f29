package repository

import (
	"arcadechat/internal/model"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// GameRepo persists typing-race game documents. This is the only durable
// state the realtime core touches.
type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	Save(ctx context.Context, game *model.Game) error
}

type gameRepo struct {
	collection *mongo.Collection
}

func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	_, err := r.collection.InsertOne(ctx, game)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, map[string]interface{}{"_id": id}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Game not found
		}
		return nil, err
	}
	return &game, nil
}

// Save replaces the stored document. A write that matches no document fails
// loudly rather than silently creating or dropping state.
func (r *gameRepo) Save(ctx context.Context, game *model.Game) error {
	res, err := r.collection.ReplaceOne(ctx, map[string]interface{}{"_id": game.ID}, game)
	if err != nil {
		return fmt.Errorf("replace game %s: %w", game.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace game %s: no document matched", game.ID)
	}
	return nil
}
