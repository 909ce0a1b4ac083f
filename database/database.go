// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"github.com/devexchange/orgs-backend/v1/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Collection names
const (
	OrgsCollection             = "orgs"
	UsersCollection            = "users"
	ProposalsCollection        = "proposals"
	OpportunitiesCollection    = "opportunities"
	CapabilitiesCollection     = "capabilities"
	CapabilitySkillsCollection = "capabilityskills"
)

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Define a struct to hold the index definition
type indexConfig struct {
	Collection string
	IdxName    string
	IdxFields  []string
	Unique     bool
}

var idxList = []indexConfig{
	// Membership arrays, used by "my orgs" lookups and delete cleanup
	{Collection: OrgsCollection, IdxName: "orgs_name", IdxFields: []string{"name"}},
	{Collection: OrgsCollection, IdxName: "orgs_owner", IdxFields: []string{"owner"}},
	{Collection: OrgsCollection, IdxName: "orgs_admins", IdxFields: []string{"admins[*]"}},
	{Collection: OrgsCollection, IdxName: "orgs_members", IdxFields: []string{"members[*]"}},
	{Collection: OrgsCollection, IdxName: "orgs_join_requests", IdxFields: []string{"joinRequests[*]"}},

	{Collection: UsersCollection, IdxName: "users_username", IdxFields: []string{"username"}, Unique: true},
	{Collection: UsersCollection, IdxName: "users_email", IdxFields: []string{"email"}},

	// Proposal cleanup scans proposals by org
	{Collection: ProposalsCollection, IdxName: "proposals_org", IdxFields: []string{"org"}},
	{Collection: ProposalsCollection, IdxName: "proposals_opportunity", IdxFields: []string{"opportunity"}},
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase connects to the db engine, creating the database, collections and indexes
func InitializeDatabase(ctx context.Context, cfg config.ArangoConfig, logger *zap.Logger) (DBConnection, error) {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	var db arangodb.Database
	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // Set to 0 for indefinite retries

	err := backoff.RetryNotify(func() error {
		logger.Info("Attempting to connect to ArangoDB", zap.String("endpoint", cfg.Endpoint()))
		endpoint := connection.NewRoundRobinEndpoints([]string{cfg.Endpoint()})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.User, cfg.Pass))

		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil

	}, backoff.WithContext(bo, ctx), func(err error, _ time.Duration) {
		logger.Warn("Retrying connection to ArangoDB", zap.Error(err))
	})
	if err != nil {
		return DBConnection{}, fmt.Errorf("failed to connect to ArangoDB: %w", err)
	}

	//
	// Database creation
	//

	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == cfg.Database {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, cfg.Database, &options); err != nil {
			return DBConnection{}, fmt.Errorf("failed to get database: %w", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, cfg.Database, nil); err != nil {
			return DBConnection{}, fmt.Errorf("failed to create database: %w", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections := make(map[string]arangodb.Collection)
	collectionNames := []string{
		OrgsCollection,
		UsersCollection,
		ProposalsCollection,
		OpportunitiesCollection,
		CapabilitiesCollection,
		CapabilitySkillsCollection,
	}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				return DBConnection{}, fmt.Errorf("failed to use collection %s: %w", collectionName, err)
			}
		} else {
			if col, err = db.CreateCollectionV2(ctx, collectionName, nil); err != nil {
				return DBConnection{}, fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation for document collections
	//

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if found {
			continue
		}

		unique := idx.Unique
		sparse := false
		indexOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &unique,
			Sparse: &sparse,
			Name:   idx.IdxName,
		}

		if _, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, idx.IdxFields, &indexOptions); err != nil {
			return DBConnection{}, fmt.Errorf("error creating index %s: %w", idx.IdxName, err)
		}
		logger.Sugar().Infof("Created index: %s on %s.%v", idx.IdxName, idx.Collection, idx.IdxFields)
	}

	logger.Info("Database initialization complete", zap.String("database", cfg.Database))

	return DBConnection{
		Database:    db,
		Collections: collections,
	}, nil
}

// queryOne runs an AQL query and reads the first result into out.
// It reports false when the query returned no documents.
func queryOne(ctx context.Context, db arangodb.Database, query string, bindVars map[string]interface{}, out interface{}) (bool, error) {
	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return false, nil
	}

	if _, err := cursor.ReadDocument(ctx, out); err != nil {
		return false, err
	}
	return true, nil
}

// queryAll runs an AQL query and collects every result
func queryAll[T any](ctx context.Context, db arangodb.Database, query string, bindVars map[string]interface{}) ([]T, error) {
	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	results := []T{}
	for cursor.HasMore() {
		var item T
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, nil
}

// exec runs an AQL statement whose results are not needed
func exec(ctx context.Context, db arangodb.Database, query string, bindVars map[string]interface{}) error {
	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return err
	}
	return cursor.Close()
}
