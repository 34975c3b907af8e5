package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const programCollectionName = "workout_programs"

// mongoProgramRepository implements repository.ProgramRepository. The full
// section -> exercise -> set tree is embedded in the program document, so a
// single read returns the whole tree.
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new WorkoutProgram repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program with its embedded section tree.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.WorkoutProgram) (primitive.ObjectID, error) {
	if program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires a name")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program by its ID, excluding soft-deleted ones.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutProgram, error) {
	var program domain.WorkoutProgram
	filter := bson.M{"_id": id, "isDeleted": false}
	err := r.collection.FindOne(ctx, filter).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// GetByIDs retrieves the non-deleted programs among the given ids. Missing
// ids are simply absent from the result, which the calendar read path
// tolerates.
func (r *mongoProgramRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	if len(ids) == 0 {
		return []domain.WorkoutProgram{}, nil
	}
	var programs []domain.WorkoutProgram
	filter := bson.M{"_id": bson.M{"$in": ids}, "isDeleted": false}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if programs == nil {
		programs = []domain.WorkoutProgram{}
	}
	return programs, nil
}

// GetByTrainerID retrieves all non-deleted programs owned by a trainer.
func (r *mongoProgramRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	var programs []domain.WorkoutProgram
	filter := bson.M{"trainerId": trainerID, "isDeleted": false}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if programs == nil {
		programs = []domain.WorkoutProgram{}
	}
	return programs, nil
}

// SoftDelete flags a program as deleted without removing the document.
// The filter ensures the program exists AND belongs to the given trainer.
func (r *mongoProgramRepository) SoftDelete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
		"isDeleted": false,
	}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Program missing, already deleted, or owned by another trainer.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "isDeleted", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "sections._id", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
