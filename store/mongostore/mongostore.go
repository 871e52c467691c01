// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/ctf-scoreboard/models"
	"github.com/danielhkuo/ctf-scoreboard/store"
)

// Collection names
const (
	TeamsCollection      = "teams"
	TeamScoresCollection = "teamscores"
)

// awardAttempts bounds the upsert retry in AwardChallenge
const awardAttempts = 2

type teamDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TeamID       string             `bson:"teamid"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type teamScoreDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	TeamID              string             `bson:"teamid"`
	Points              int                `bson:"points"`
	CompletedChallenges []string           `bson:"completedChallenges"`
	LastUpdated         time.Time          `bson:"lastUpdated"`
}

func (d teamScoreDoc) model() models.TeamScore {
	completed := d.CompletedChallenges
	if completed == nil {
		completed = []string{}
	}
	return models.TeamScore{
		TeamID:              d.TeamID,
		Points:              d.Points,
		CompletedChallenges: completed,
		LastUpdated:         d.LastUpdated.UTC(),
	}
}

// Store is a MongoDB-backed store.Store
type Store struct {
	client  *mongo.Client
	teams   *mongo.Collection
	scores  *mongo.Collection
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

// Open connects, pings, and ensures the unique indexes exist.
func Open(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	if database == "" {
		return nil, errors.New("mongo database name required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	s := &Store{
		client:  client,
		teams:   client.Database(database).Collection(TeamsCollection),
		scores:  client.Database(database).Collection(TeamScoresCollection),
		timeout: timeout,
	}

	if err := s.Ping(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.teams.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "teamid", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create team indexes: %w", err)
	}

	_, err = s.scores.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "teamid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "points", Value: -1}, {Key: "lastUpdated", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create team score indexes: %w", err)
	}

	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateTeam inserts a team identity
func (s *Store) CreateTeam(ctx context.Context, team models.Team) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.teams.InsertOne(ctx, teamDoc{
		TeamID:       team.TeamID,
		Email:        team.Email,
		PasswordHash: team.PasswordHash,
		CreatedAt:    team.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "email") {
				return store.ErrDuplicateEmail
			}
			return store.ErrDuplicateTeam
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}

	return nil
}

// GetTeamByEmail looks up a team by its login email
func (s *Store) GetTeamByEmail(ctx context.Context, email string) (models.Team, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc teamDoc
	err := s.teams.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Team{}, store.ErrNotFound
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("failed to query team: %w", err)
	}

	return models.Team{
		TeamID:       doc.TeamID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
	}, nil
}

// GetTeamScore returns the team's score document
func (s *Store) GetTeamScore(ctx context.Context, teamID string) (models.TeamScore, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc teamScoreDoc
	err := s.scores.FindOne(ctx, bson.M{"teamid": teamID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TeamScore{}, store.ErrNotFound
	}
	if err != nil {
		return models.TeamScore{}, fmt.Errorf("failed to query team score: %w", err)
	}

	return doc.model(), nil
}

// AwardChallenge is a single conditional update: the filter only matches
// when the challenge is not yet in completedChallenges, so the push and
// increment happen together or not at all.
//
// With upsert, a non-matching filter attempts an insert; the unique index
// on teamid turns that into a duplicate-key error when the document already
// exists. That means either the challenge is already completed, or another
// request created the document first, so the update is retried once.
func (s *Store) AwardChallenge(ctx context.Context, teamID, challengeID string, points int, at time.Time) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"teamid":              teamID,
		"completedChallenges": bson.M{"$ne": challengeID},
	}
	update := bson.M{
		"$push": bson.M{"completedChallenges": challengeID},
		"$inc":  bson.M{"points": points},
		"$set":  bson.M{"lastUpdated": at},
	}

	for attempt := 1; attempt <= awardAttempts; attempt++ {
		res, err := s.scores.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil {
			return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("failed to award challenge: %w", err)
		}
	}

	// Document exists and the filter still doesn't match: already completed
	return false, nil
}

// ListTeamScores returns all team scores in leaderboard order
func (s *Store) ListTeamScores(ctx context.Context) ([]models.TeamScore, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "points", Value: -1},
		{Key: "lastUpdated", Value: 1},
		{Key: "teamid", Value: 1},
	})
	cur, err := s.scores.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query team scores: %w", err)
	}
	defer cur.Close(ctx)

	scores := []models.TeamScore{}
	for cur.Next(ctx) {
		var doc teamScoreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode team score: %w", err)
		}
		scores = append(scores, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read team scores: %w", err)
	}

	return scores, nil
}

// Counts returns the number of teams and team scores
func (s *Store) Counts(ctx context.Context) (teams, scores int, err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.teams.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count teams: %w", err)
	}
	sc, err := s.scores.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count team scores: %w", err)
	}
	return int(t), int(sc), nil
}

// Drop removes both collections (tests only)
func (s *Store) Drop(ctx context.Context) error {
	if err := s.teams.Drop(ctx); err != nil {
		return err
	}
	return s.scores.Drop(ctx)
}
