package report

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "reports"

// Store archives generated reports.
type Store interface {
	Insert(ctx context.Context, r *Report) error
	ListByOwner(ctx context.Context, userID string) ([]Report, error)
	Get(ctx context.Context, id string) (*Report, error)
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	opts := options.Collection().SetRegistry(registry())
	return &mongoStore{collection: db.Collection(collectionName, opts)}
}

// CreateIndexes backs the per-owner listing.
func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "generated_by", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (m *mongoStore) Insert(ctx context.Context, r *Report) error {
	if _, err := m.collection.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSave, err)
	}
	return nil
}

func (m *mongoStore) ListByOwner(ctx context.Context, userID string) ([]Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.collection.Find(ctx, bson.M{"generated_by": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoad, err)
	}
	defer cur.Close(ctx)

	reports := []Report{}
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoad, err)
	}
	return reports, nil
}

func (m *mongoStore) Get(ctx context.Context, id string) (*Report, error) {
	var r Report
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoad, err)
	}
	return &r, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// registry stores money as BSON Decimal128 so amounts survive the round trip
// exactly.
func registry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return bsoncodec.ValueEncoderError{Name: "encodeDecimal", Types: []reflect.Type{decimalType}, Received: v}
	}
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
	if v.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "decodeDecimal", Types: []reflect.Type{decimalType}, Received: v}
	}
	d128, err := vr.ReadDecimal128()
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(d128.String())
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(d))
	return nil
}
