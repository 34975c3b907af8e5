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

const scheduleCollectionName = "user_schedules"

// mongoScheduleRepository implements repository.ScheduleRepository.
// There is deliberately no uniqueness constraint on (userId, isActive):
// inactive history rows coexist, and the single-active invariant is
// enforced by the schedule service under its per-user lock.
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new UserSchedule repository.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Create inserts a new schedule record.
func (r *mongoScheduleRepository) Create(ctx context.Context, schedule *domain.UserSchedule) (primitive.ObjectID, error) {
	if schedule.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("schedule requires a userId")
	}
	schedule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.WeeklySchedule.Normalize()

	result, err := r.collection.InsertOne(ctx, schedule)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted schedule ID")
	}
	return insertedID, nil
}

// GetActiveByUserID retrieves the user's single active schedule.
func (r *mongoScheduleRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserSchedule, error) {
	var schedule domain.UserSchedule
	filter := bson.M{"userId": userID, "isActive": true}
	// Newest first in case history rows were ever left active by hand.
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	schedule.WeeklySchedule.Normalize()
	return &schedule, nil
}

// Update replaces the mutable fields of a schedule.
func (r *mongoScheduleRepository) Update(ctx context.Context, schedule *domain.UserSchedule) error {
	if schedule.ID == primitive.NilObjectID {
		return errors.New("schedule ID is required for update")
	}
	schedule.WeeklySchedule.Normalize()

	filter := bson.M{"_id": schedule.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"startDate":      schedule.StartDate,
			"weeklySchedule": schedule.WeeklySchedule,
			"isActive":       schedule.IsActive,
			"programIds":     schedule.ProgramIDs,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateAllForUser flips every active schedule of the user to inactive
// and returns how many rows were affected.
func (r *mongoScheduleRepository) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureScheduleIndexes creates necessary indexes. Call during startup.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
