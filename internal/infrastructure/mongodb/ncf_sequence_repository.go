package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.NCFSequenceRepository = (*NCFSequenceRepo)(nil)

// NCFSequenceRepo un documento por tipo de comprobante; el tipo es el _id.
type NCFSequenceRepo struct {
	col *mongo.Collection
}

// NewNCFSequenceRepository construye el adaptador.
func NewNCFSequenceRepository(db *mongo.Database) *NCFSequenceRepo {
	return &NCFSequenceRepo{col: db.Collection(colSequences)}
}

// Next $inc atómico con upsert. Dos upserts simultáneos sobre un tipo nuevo pueden chocar en
// _id; el perdedor reintenta una vez y ya encuentra el documento.
func (r *NCFSequenceRepo) Next(ctx context.Context, code string) (*entity.NCFSequence, error) {
	seq, err := r.next(ctx, code)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		seq, err = r.next(ctx, code)
	}
	if err != nil {
		return nil, wrap("next sequence", err)
	}
	return seq, nil
}

func (r *NCFSequenceRepo) next(ctx context.Context, code string) (*entity.NCFSequence, error) {
	var doc sequenceDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": code},
		bson.M{
			"$inc":         bson.M{"current": int64(1)},
			"$set":         bson.M{"updatedAt": time.Now()},
			"$setOnInsert": bson.M{"rangeEnd": int64(0)},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *NCFSequenceRepo) Get(ctx context.Context, code string) (*entity.NCFSequence, error) {
	var doc sequenceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrap("get sequence", err)
	}
	return doc.toEntity(), nil
}

func (r *NCFSequenceRepo) Save(ctx context.Context, seq *entity.NCFSequence) error {
	set := bson.M{
		"current":   seq.Current,
		"rangeEnd":  seq.RangeEnd,
		"updatedAt": seq.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if seq.ExpiresAt != nil {
		set["expiresAt"] = *seq.ExpiresAt
	} else {
		update["$unset"] = bson.M{"expiresAt": ""}
	}
	_, err := r.col.UpdateByID(ctx, seq.Type, update, options.Update().SetUpsert(true))
	return wrap("save sequence", err)
}

func (r *NCFSequenceRepo) List(ctx context.Context) ([]*entity.NCFSequence, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrap("find sequences", err)
	}
	var docs []sequenceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode sequences", err)
	}
	list := make([]*entity.NCFSequence, len(docs))
	for i, d := range docs {
		list[i] = d.toEntity()
	}
	return list, nil
}
