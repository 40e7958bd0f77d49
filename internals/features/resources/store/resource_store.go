// internals/features/resources/store/resource_store.go
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"desaku_backend/internals/features/resources/model"
)

var (
	ErrNotFound      = errors.New("data tidak ditemukan")
	ErrDuplicateName = errors.New("data dengan nama ini sudah ada")
)

// Recorder adalah kontrak store yang dilihat controller. Implementasi
// produksi membungkus satu koleksi MongoDB; test memakai fake in-memory.
type Recorder interface {
	// Find mengembalikan semua dokumen, created_at menurun (terbaru dulu).
	Find(ctx context.Context) ([]model.Resource, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (model.Resource, error)
	Create(ctx context.Context, m model.Resource) (model.Resource, error)
	// FindByIDAndUpdate mengganti seluruh field mutable dan mengembalikan
	// dokumen sesudah update.
	FindByIDAndUpdate(ctx context.Context, id primitive.ObjectID, m model.Resource) (model.Resource, error)
	// FindByIDAndDelete menghapus dan mengembalikan kondisi terakhir dokumen.
	FindByIDAndDelete(ctx context.Context, id primitive.ObjectID) (model.Resource, error)
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database, collection string) *Store {
	return &Store{c: db.Collection(collection)}
}

// EnsureIndexes memasang unique index pada nama. Dipanggil saat boot.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nama", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Find(ctx context.Context) ([]model.Resource, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Resource{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (model.Resource, error) {
	var m model.Resource
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Resource{}, ErrNotFound
	}
	if err != nil {
		return model.Resource{}, err
	}
	return m, nil
}

func (s *Store) Create(ctx context.Context, m model.Resource) (model.Resource, error) {
	now := time.Now()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Resource{}, ErrDuplicateName
		}
		return model.Resource{}, err
	}
	return m, nil
}

// mutableSet membangun dokumen $set full-replace. _id dan created_at
// tidak pernah ikut.
func mutableSet(m model.Resource, now time.Time) bson.M {
	return bson.M{
		"nama":        m.Name,
		"kategori":    m.Category,
		"deskripsi":   m.Description,
		"foto_url":    m.PhotoURL,
		"foto_key":    m.PhotoKey,
		"tahun":       m.Year,
		"lokasi":      m.Location,
		"tautan":      m.Links,
		"galeri":      m.Gallery,
		"dokumen_url": m.DocumentURL,
		"dokumen_key": m.DocumentKey,
		"updated_at":  now,
	}
}

func (s *Store) FindByIDAndUpdate(ctx context.Context, id primitive.ObjectID, m model.Resource) (model.Resource, error) {
	var updated model.Resource
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": mutableSet(m, time.Now())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Resource{}, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Resource{}, ErrDuplicateName
		}
		return model.Resource{}, err
	}
	return updated, nil
}

func (s *Store) FindByIDAndDelete(ctx context.Context, id primitive.ObjectID) (model.Resource, error) {
	var deleted model.Resource
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Resource{}, ErrNotFound
	}
	if err != nil {
		return model.Resource{}, err
	}
	return deleted, nil
}
