package db

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stock-exchange-game/models"
)

const gameDocID = "game"

// MongoStore persists the game in MongoDB. A team is one document holding
// its positions and sale log, so a SaveTeam is a single atomic replace.
type MongoStore struct {
	client     *mongo.Client
	teams      *mongo.Collection
	prices     *mongo.Collection
	watchLists *mongo.Collection
	game       *mongo.Collection
	scores     *mongo.Collection
	log        zerolog.Logger
}

type watchListDocument struct {
	Team    string                  `bson:"team"`
	Entries []models.WatchListEntry `bson:"entries"`
}

type gameDocument struct {
	ID               string `bson:"_id"`
	models.GameState `bson:",inline"`
}

// ConnectMongo dials uri, pings the server and prepares the collections
// and indexes of database.
func ConnectMongo(ctx context.Context, uri, database string, log zerolog.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI not set")
	}

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetTimeout(30 * time.Second).
		SetConnectTimeout(30 * time.Second)
	if strings.HasPrefix(uri, "mongodb+srv://") {
		// Atlas requires TLS; the system roots are used.
		clientOptions.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 15*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	d := client.Database(database)
	s := &MongoStore{
		client:     client,
		teams:      d.Collection("teams"),
		prices:     d.Collection("prices"),
		watchLists: d.Collection("watch_lists"),
		game:       d.Collection("game"),
		scores:     d.Collection("high_scores"),
		log:        log.With().Str("component", "mongo_store").Logger(),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	s.log.Info().Str("database", database).Msg("Connected to MongoDB")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.teams, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.prices, mongo.IndexModel{Keys: bson.D{{Key: "stock_id", Value: 1}, {Key: "year", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.prices, mongo.IndexModel{Keys: bson.D{{Key: "year", Value: 1}}}},
		{s.watchLists, mongo.IndexModel{Keys: bson.D{{Key: "team", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) CreateTeam(ctx context.Context, team *models.Team) error {
	_, err := s.teams.InsertOne(ctx, team)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrTeamExists, team.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTeam(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	err := s.teams.FindOne(ctx, bson.M{"name": name}).Decode(&team)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}
	normalizeTeam(&team)
	return &team, nil
}

func (s *MongoStore) ListTeams(ctx context.Context) ([]*models.Team, error) {
	cursor, err := s.teams.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []*models.Team
	for cursor.Next(ctx) {
		var team models.Team
		if err := cursor.Decode(&team); err != nil {
			return nil, fmt.Errorf("failed to decode team: %w", err)
		}
		normalizeTeam(&team)
		teams = append(teams, &team)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return teams, nil
}

func (s *MongoStore) SaveTeam(ctx context.Context, team *models.Team) error {
	next := team.Clone()
	next.Version = team.Version + 1

	filter := bson.M{"name": team.Name, "version": team.Version}
	res, err := s.teams.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("failed to save team: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.teams.CountDocuments(ctx, bson.M{"name": team.Name})
		if err != nil {
			return fmt.Errorf("failed to check team: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team.Name)
		}
		return fmt.Errorf("%w: %s", ErrStaleState, team.Name)
	}
	team.Version = next.Version
	return nil
}

func (s *MongoStore) DeleteTeam(ctx context.Context, name string) error {
	res, err := s.teams.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	if _, err := s.watchLists.DeleteOne(ctx, bson.M{"team": name}); err != nil {
		return fmt.Errorf("failed to delete watch list: %w", err)
	}
	return nil
}

func (s *MongoStore) ResetTeams(ctx context.Context) error {
	if _, err := s.teams.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete teams: %w", err)
	}
	return nil
}

func (s *MongoStore) UpsertPricePoints(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(points))
	for _, p := range points {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"stock_id": p.StockID, "year": p.Year}).
			SetReplacement(p).
			SetUpsert(true))
	}
	if _, err := s.prices.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to store price points: %w", err)
	}
	return nil
}

func (s *MongoStore) PricePoints(ctx context.Context, year int) ([]models.PricePoint, error) {
	filter := bson.M{"year": bson.M{"$in": []int{year - 1, year}}}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "stock_id", Value: 1}})
	cursor, err := s.prices.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	var points []models.PricePoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	return points, nil
}

func (s *MongoStore) GetWatchList(ctx context.Context, team string) ([]models.WatchListEntry, error) {
	var doc watchListDocument
	err := s.watchLists.FindOne(ctx, bson.M{"team": team}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.WatchListEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch list: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = []models.WatchListEntry{}
	}
	return doc.Entries, nil
}

func (s *MongoStore) SaveWatchList(ctx context.Context, team string, entries []models.WatchListEntry) error {
	doc := watchListDocument{Team: team, Entries: entries}
	_, err := s.watchLists.ReplaceOne(ctx, bson.M{"team": team}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save watch list: %w", err)
	}
	return nil
}

func (s *MongoStore) ResetWatchLists(ctx context.Context) error {
	if _, err := s.watchLists.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete watch lists: %w", err)
	}
	return nil
}

func (s *MongoStore) GetGame(ctx context.Context) (models.GameState, error) {
	var doc gameDocument
	err := s.game.FindOne(ctx, bson.M{"_id": gameDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return defaultGame(), nil
	}
	if err != nil {
		return models.GameState{}, fmt.Errorf("failed to fetch game: %w", err)
	}
	return doc.GameState, nil
}

func (s *MongoStore) SaveGame(ctx context.Context, state models.GameState) error {
	doc := gameDocument{ID: gameDocID, GameState: state}
	_, err := s.game.ReplaceOne(ctx, bson.M{"_id": gameDocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (s *MongoStore) AddHighScores(ctx context.Context, scores []models.HighScore) error {
	if len(scores) == 0 {
		return nil
	}
	docs := make([]interface{}, len(scores))
	for i, sc := range scores {
		docs[i] = sc
	}
	if _, err := s.scores.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to record high scores: %w", err)
	}
	return nil
}

func (s *MongoStore) HighScores(ctx context.Context) ([]models.HighScore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "total_value", Value: -1}})
	cursor, err := s.scores.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch high scores: %w", err)
	}
	scores := []models.HighScore{}
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode high scores: %w", err)
	}
	return scores, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func normalizeTeam(team *models.Team) {
	if team.Holdings == nil {
		team.Holdings = make(map[int]models.Holding)
	}
	if team.CompletedSales == nil {
		team.CompletedSales = []models.SaleRecord{}
	}
}
