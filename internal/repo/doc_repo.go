package repo

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/wallet-service/internal/gateway"
)

// Docs adapts the users collection to the gateway's DocumentStore contract:
// one schemaless record per account id, with $addToSet/$pull set semantics
// on the embedded cards array.
type Docs struct {
	coll *mongo.Collection
}

func (s *Store) Docs() *Docs {
	return &Docs{coll: s.DB.Collection("users")}
}

func (d *Docs) Get(ctx context.Context, key string) (gateway.Record, error) {
	var raw bson.M
	err := d.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	delete(raw, "_id")
	rec, _ := normalizeValue(raw).(map[string]any)
	return rec, nil
}

func (d *Docs) Set(ctx context.Context, key string, rec gateway.Record) error {
	doc := canonicalize(rec)
	doc = append(bson.D{{Key: "_id", Value: key}}, doc...)
	_, err := d.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (d *Docs) Delete(ctx context.Context, key string) error {
	_, err := d.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (d *Docs) AddCard(ctx context.Context, key string, card gateway.Record) error {
	_, err := d.coll.UpdateOne(ctx, bson.M{"_id": key},
		bson.M{"$addToSet": bson.M{"cards": canonicalize(card)}})
	return err
}

func (d *Docs) RemoveCard(ctx context.Context, key string, card gateway.Record) error {
	_, err := d.coll.UpdateOne(ctx, bson.M{"_id": key},
		bson.M{"$pull": bson.M{"cards": canonicalize(card)}})
	return err
}

// canonicalize turns a schemaless record into a bson.D with keys in sorted
// order, recursively. Mongo compares embedded documents field-order
// sensitively, so $addToSet/$pull equality only works if every write uses
// the same order.
func canonicalize(rec map[string]any) bson.D {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: canonicalizeValue(rec[k])})
	}
	return doc
}

func canonicalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return canonicalize(t)
	case []any:
		out := make(bson.A, 0, len(t))
		for _, item := range t {
			out = append(out, canonicalizeValue(item))
		}
		return out
	default:
		return v
	}
}

// normalizeValue is the read-side inverse: the driver hands back bson.M /
// bson.D / bson.A, the gateway codec wants plain maps and slices.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, normalizeValue(item))
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, normalizeValue(item))
		}
		return out
	default:
		return v
	}
}
