package mongo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/workspace-insights/internal/connector/database"
	"github.com/Rrens/workspace-insights/internal/domain"
)

// Adapter implements database.Adapter for MongoDB; collections are tables
type Adapter struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewAdapter() database.Adapter {
	return &Adapter{}
}

func (a *Adapter) Engine() string {
	return "mongodb"
}

// URI builds the connection string for cfg
func URI(cfg domain.RelationalDBConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", cfg.Host, port)}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

func (a *Adapter) Connect(ctx context.Context, cfg domain.RelationalDBConfig) error {
	if cfg.Database == "" {
		return domain.NewValidationError("database", "field is required")
	}

	clientOpts := options.Client().
		ApplyURI(URI(cfg)).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping: %w", err)
	}

	a.client = client
	a.db = client.Database(cfg.Database)
	return nil
}

func (a *Adapter) Close() error {
	if a.client != nil {
		err := a.client.Disconnect(context.Background())
		a.client = nil
		return err
	}
	return nil
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("not connected")
	}
	return a.client.Ping(ctx, nil)
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	names, err := a.db.ListCollectionNames(ctx, bson.D{}, options.ListCollections().SetNameOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// DescribeTable infers columns from the keys of one document
func (a *Adapter) DescribeTable(ctx context.Context, table string) (*database.TableInfo, error) {
	names, err := a.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: table}})
	if err != nil {
		return nil, fmt.Errorf("failed to describe collection: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	coll := a.db.Collection(table)

	var doc bson.D
	err = coll.FindOne(ctx, bson.D{}).Decode(&doc)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to sample document: %w", err)
	}

	columns := make([]database.ColumnInfo, 0, len(doc))
	for _, elem := range doc {
		columns = append(columns, database.ColumnInfo{
			Name:       elem.Key,
			DataType:   typeName(elem.Value),
			Nullable:   elem.Key != "_id",
			PrimaryKey: elem.Key == "_id",
		})
	}

	info := &database.TableInfo{Name: table, SchemaName: a.db.Name(), Columns: columns}
	if count, err := coll.EstimatedDocumentCount(ctx); err == nil {
		info.RowCount = &count
	}
	return info, nil
}

// SampleRows returns up to limit documents flattened to their top-level keys
func (a *Adapter) SampleRows(ctx context.Context, table string, limit int) (*database.Sample, error) {
	cursor, err := a.db.Collection(table).Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to sample documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	sample := &database.Sample{}
	index := map[string]int{}
	for _, doc := range docs {
		for _, elem := range doc {
			if _, ok := index[elem.Key]; !ok {
				index[elem.Key] = len(sample.Columns)
				sample.Columns = append(sample.Columns, elem.Key)
			}
		}
	}

	for _, doc := range docs {
		row := make([]any, len(sample.Columns))
		for _, elem := range doc {
			row[index[elem.Key]] = cellValue(elem.Value)
		}
		sample.Rows = append(sample.Rows, row)
	}

	return sample, nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case bson.D, bson.A, bson.M:
		out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: val}}, false, false)
		if err != nil {
			return fmt.Sprint(val)
		}
		// strip the {"v": ...} wrapper
		s := string(out)
		return s[5 : len(s)-1]
	default:
		return val
	}
}

func typeName(v any) string {
	switch v.(type) {
	case primitive.ObjectID:
		return "ObjectId"
	case string:
		return "string"
	case int32, int64:
		return "int"
	case float64:
		return "double"
	case bool:
		return "bool"
	case primitive.DateTime:
		return "date"
	case bson.D, bson.M:
		return "object"
	case bson.A:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
