package datastore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"econsync/models"
)

// MongoDB collection names
const (
	MongoSeriesCollection = "indicator_series"
	MongoStatusCollection = "sync_status"
)

// MongoMirror replicates synced series to MongoDB Atlas so read-side
// consumers can query them without touching the primary database. The
// mirror is optional; a nil *MongoMirror means mirroring is disabled.
type MongoMirror struct {
	client   *mongo.Client
	database *mongo.Database
}

// MongoIndicatorSeries is the mirrored document for one indicator
type MongoIndicatorSeries struct {
	Name      string             `bson:"_id"`
	Source    string             `bson:"source"`
	Unit      string             `bson:"unit"`
	UpdatedAt time.Time          `bson:"updated_at"`
	Count     int                `bson:"count"`
	Points    []MongoSeriesPoint `bson:"points"`
}

// MongoSeriesPoint is one observation inside a mirrored series. Values are
// stored as strings to keep decimal precision.
type MongoSeriesPoint struct {
	Date  time.Time `bson:"date"`
	Value string    `bson:"value"`
}

// MongoSyncStatus is the single status document summarizing all indicators
type MongoSyncStatus struct {
	ID         string             `bson:"_id"`
	UpdatedAt  time.Time          `bson:"updated_at"`
	Count      int                `bson:"count"`
	Indicators []IndicatorSummary `bson:"indicators"`
}

// SeriesSnapshot pairs an indicator with its observations for mirroring
type SeriesSnapshot struct {
	Indicator models.Indicator
	Points    []models.DataPoint
}

// NewMongoMirror connects to MongoDB and prepares the mirror collections.
// An empty URI disables mirroring and returns a nil mirror without error.
func NewMongoMirror(uri, dbName string) (*MongoMirror, error) {
	if uri == "" {
		log.Println("MONGODB_URI not set, MongoDB mirroring disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &MongoMirror{
		client:   client,
		database: client.Database(dbName),
	}
	m.createIndexes()

	log.Println("MongoDB mirror connected")
	return m, nil
}

// createIndexes creates the indexes the mirror collections are queried by
func (m *MongoMirror) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := m.database.Collection(MongoSeriesCollection)
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source", Value: 1}, {Key: "updated_at", Value: -1}},
	})
}

// SaveSeries mirrors one indicator's observations
func (m *MongoMirror) SaveSeries(ind models.Indicator, points []models.DataPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc := seriesDocument(ind, points, time.Now())
	collection := m.database.Collection(MongoSeriesCollection)
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, bson.M{"_id": doc.Name}, doc, opts); err != nil {
		return fmt.Errorf("failed to mirror series for %s: %w", ind.Name, err)
	}
	return nil
}

// SaveAllSeries mirrors a batch of indicator series with bulk writes
func (m *MongoMirror) SaveAllSeries(snapshots []SeriesSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var operations []mongo.WriteModel
	now := time.Now()
	for _, snapshot := range snapshots {
		doc := seriesDocument(snapshot.Indicator, snapshot.Points, now)
		operation := mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.Name}).
			SetReplacement(doc).
			SetUpsert(true)
		operations = append(operations, operation)
	}
	if len(operations) == 0 {
		return nil
	}

	collection := m.database.Collection(MongoSeriesCollection)

	// Bulk write in batches of 100
	batchSize := 100
	for i := 0; i < len(operations); i += batchSize {
		end := i + batchSize
		if end > len(operations) {
			end = len(operations)
		}
		if _, err := collection.BulkWrite(ctx, operations[i:end]); err != nil {
			return fmt.Errorf("failed to bulk mirror series: %w", err)
		}
	}

	log.Printf("Mirrored %d indicator series to MongoDB", len(operations))
	return nil
}

// SaveSyncStatus mirrors the per-indicator freshness summary
func (m *MongoMirror) SaveSyncStatus(summaries []IndicatorSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc := MongoSyncStatus{
		ID:         "sync_status",
		UpdatedAt:  time.Now(),
		Count:      len(summaries),
		Indicators: summaries,
	}

	collection := m.database.Collection(MongoStatusCollection)
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to mirror sync status: %w", err)
	}
	return nil
}

// Close disconnects the mirror client
func (m *MongoMirror) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func seriesDocument(ind models.Indicator, points []models.DataPoint, now time.Time) MongoIndicatorSeries {
	doc := MongoIndicatorSeries{
		Name:      ind.Name,
		Source:    ind.Source,
		Unit:      ind.Unit,
		UpdatedAt: now,
		Count:     len(points),
		Points:    make([]MongoSeriesPoint, 0, len(points)),
	}
	for _, point := range points {
		doc.Points = append(doc.Points, MongoSeriesPoint{
			Date:  point.Date,
			Value: point.Value.String(),
		})
	}
	return doc
}
