// Package mongodb adaptador de persistencia sobre MongoDB. Las unidades de trabajo corren en
// transacciones multi-documento cuando el despliegue es replica set o mongos; en standalone se
// ejecutan en modo secuencial.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/Gestion-RD-api/pkg/config"
)

// Connect abre el cliente, verifica la conexión y crea los índices.
func Connect(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.OperationTimeout()).
		SetServerSelectionTimeout(cfg.OperationTimeout())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	log.Info().Str("database", cfg.Database).Msg("conectado a MongoDB")
	return client, db, nil
}

// EnsureIndexes crea los índices únicos y de consulta. Es idempotente.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colProducts: {
			{Keys: bson.D{{Key: "codeLower", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colMovements: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		colInvoices: {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys: bson.D{{Key: "ncf", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"ncf": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
		},
		colCreditNotes: {
			{Keys: bson.D{{Key: "ncf", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "invoiceId", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "invoiceId", Value: 1}, {Key: "date", Value: 1}}},
		},
		colClients: {
			{
				Keys: bson.D{{Key: "rnc", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"rnc": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	}
	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo indexes %s: %w", col, err)
		}
	}
	return nil
}
