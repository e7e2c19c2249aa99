package store

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"waveprint/fingerprint"
	"waveprint/internal/xerr"
)

// MongoStore is the optional Store backend, grounded on
// go.mongodb.org/mongo-driver. It mirrors the relational schema as two
// collections: "sounds" and "fingerprints", keyed by an auto-assigned
// int64 sequence rather than Mongo's native ObjectID, so ids behave the
// same way across both backends.
type MongoStore struct {
	client   *mongo.Client
	sounds   *mongo.Collection
	fps      *mongo.Collection
	counters *mongo.Collection
}

type mongoSound struct {
	ID         int64     `bson:"_id"`
	Filepath   string    `bson:"filepath"`
	Filename   string    `bson:"filename"`
	Duration   float64   `bson:"duration"`
	SampleRate int       `bson:"sample_rate"`
	Channels   int       `bson:"channels"`
	Format     string    `bson:"format"`
	Title      string    `bson:"title"`
	Artist     string    `bson:"artist"`
	DateAdded  time.Time `bson:"date_added"`
}

type mongoFingerprint struct {
	SoundID int64  `bson:"_id"`
	Payload string `bson:"payload"`
}

// OpenMongo connects to uri and selects database dbName, ensuring the
// filepath/filename indices spec.md §4.7 requires.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, xerr.Database("failed to connect to mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, xerr.Database("failed to ping mongo", err)
	}

	db := client.Database(dbName)
	store := &MongoStore{
		client:   client,
		sounds:   db.Collection("sounds"),
		fps:      db.Collection("fingerprints"),
		counters: db.Collection("counters"),
	}

	_, err = store.sounds.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "filepath", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "filename", Value: 1}}},
	})
	if err != nil {
		return nil, xerr.Database("failed to create mongo indices", err)
	}
	return store, nil
}

func (m *MongoStore) nextSoundID(ctx context.Context) (int64, error) {
	result := m.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "sound_id"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := result.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (m *MongoStore) AddSound(sound Sound) (int64, error) {
	ctx := context.Background()

	var existing mongoSound
	err := m.sounds.FindOne(ctx, bson.M{"filepath": sound.Filepath}).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if err != mongo.ErrNoDocuments {
		return 0, xerr.Database("failed to look up existing sound", err)
	}

	id, err := m.nextSoundID(ctx)
	if err != nil {
		return 0, xerr.Database("failed to allocate sound id", err)
	}

	doc := mongoSound{
		ID: id, Filepath: sound.Filepath, Filename: sound.Filename,
		Duration: sound.Duration, SampleRate: sound.SampleRate, Channels: sound.Channels,
		Format: sound.Format, Title: sound.Title, Artist: sound.Artist,
		DateAdded: time.Now().UTC(),
	}
	if _, err := m.sounds.InsertOne(ctx, doc); err != nil {
		return 0, xerr.Database("failed to insert sound", err)
	}
	return id, nil
}

func (m *MongoStore) StoreFingerprint(soundID int64, fp *fingerprint.Fingerprint) error {
	payload, err := bsonMarshalFingerprint(fp)
	if err != nil {
		return xerr.Fingerprint("failed to serialize fingerprint", err)
	}
	_, err = m.fps.UpdateOne(
		context.Background(),
		bson.M{"_id": soundID},
		bson.M{"$set": bson.M{"payload": payload}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return xerr.Database("failed to store fingerprint", err)
	}
	return nil
}

func (m *MongoStore) GetFingerprint(soundID int64) (*fingerprint.Fingerprint, bool, error) {
	var doc mongoFingerprint
	err := m.fps.FindOne(context.Background(), bson.M{"_id": soundID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, xerr.Database("failed to read fingerprint", err)
	}
	fp, ok := decodeFingerprint([]byte(doc.Payload))
	return fp, ok, nil
}

func (m *MongoStore) GetAllFingerprints() (map[int64]*fingerprint.Fingerprint, error) {
	cursor, err := m.fps.Find(context.Background(), bson.M{})
	if err != nil {
		return nil, xerr.Database("failed to scan fingerprints", err)
	}
	defer cursor.Close(context.Background())

	out := make(map[int64]*fingerprint.Fingerprint)
	for cursor.Next(context.Background()) {
		var doc mongoFingerprint
		if err := cursor.Decode(&doc); err != nil {
			return nil, xerr.Database("failed to decode fingerprint row", err)
		}
		if fp, ok := decodeFingerprint([]byte(doc.Payload)); ok {
			out[doc.SoundID] = fp
		}
	}
	return out, cursor.Err()
}

func (m *MongoStore) GetSound(id int64) (*Sound, bool, error) {
	var doc mongoSound
	err := m.sounds.FindOne(context.Background(), bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, xerr.Database("failed to read sound", err)
	}
	s := toSound(doc)
	return &s, true, nil
}

func (m *MongoStore) GetAllSounds() ([]Sound, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_added", Value: -1}})
	cursor, err := m.sounds.Find(context.Background(), bson.M{}, opts)
	if err != nil {
		return nil, xerr.Database("failed to list sounds", err)
	}
	defer cursor.Close(context.Background())
	return decodeSounds(cursor)
}

func (m *MongoStore) Search(query string) ([]Sound, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_added", Value: -1}})
	filter := bson.M{"filename": bson.M{"$regex": regexp.QuoteMeta(query)}}
	cursor, err := m.sounds.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, xerr.Database("failed to search sounds", err)
	}
	defer cursor.Close(context.Background())
	return decodeSounds(cursor)
}

func (m *MongoStore) RemoveSound(id int64) error {
	ctx := context.Background()
	if _, err := m.fps.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return xerr.Database("failed to delete fingerprint", err)
	}
	if _, err := m.sounds.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return xerr.Database("failed to delete sound", err)
	}
	return nil
}

func (m *MongoStore) Count() (int64, error) {
	n, err := m.sounds.CountDocuments(context.Background(), bson.M{})
	if err != nil {
		return 0, xerr.Database("failed to count sounds", err)
	}
	return n, nil
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

func toSound(doc mongoSound) Sound {
	return Sound{
		ID: doc.ID, Filepath: doc.Filepath, Filename: doc.Filename,
		Duration: doc.Duration, SampleRate: doc.SampleRate, Channels: doc.Channels,
		Format: doc.Format, Title: doc.Title, Artist: doc.Artist, DateAdded: doc.DateAdded,
	}
}

func decodeSounds(cursor *mongo.Cursor) ([]Sound, error) {
	var out []Sound
	for cursor.Next(context.Background()) {
		var doc mongoSound
		if err := cursor.Decode(&doc); err != nil {
			return nil, xerr.Database("failed to decode sound row", err)
		}
		out = append(out, toSound(doc))
	}
	return out, cursor.Err()
}

func bsonMarshalFingerprint(fp *fingerprint.Fingerprint) (string, error) {
	b, err := json.Marshal(fp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
