package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// MunicipalityRepository reads reference data and doubles as the geocoder:
// each document carries a GeoJSON `boundary` polygon under a 2dsphere index.
type MunicipalityRepository struct {
	coll *mongo.Collection
}

func NewMunicipalityRepository(db *mongo.Database) *MunicipalityRepository {
	return &MunicipalityRepository{coll: db.Collection(collectionMunicipalities)}
}

type municipalityDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Province string `bson:"province"`
}

func (d municipalityDoc) toDomain() *domain.Municipality {
	return &domain.Municipality{ID: d.ID, Name: d.Name, Province: d.Province}
}

// withoutBoundary keeps polygons out of every read.
var withoutBoundary = bson.M{"boundary": 0}

func (r *MunicipalityRepository) List(ctx context.Context) ([]*domain.Municipality, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(withoutBoundary).SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list municipalities: %w", err)
	}
	var docs []municipalityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode municipalities: %w", err)
	}

	out := make([]*domain.Municipality, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *MunicipalityRepository) FindByID(ctx context.Context, id string) (*domain.Municipality, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc municipalityDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutBoundary)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMunicipalityNotFound
		}
		return nil, fmt.Errorf("find municipality: %w", err)
	}
	return doc.toDomain(), nil
}

// ResolveMunicipality returns the id of the municipality whose boundary
// contains the point, or "" when none does.
func (r *MunicipalityRepository) ResolveMunicipality(ctx context.Context, lat, lng float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"boundary": bson.M{"$geoIntersects": bson.M{
		"$geometry": bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
	}}}

	var doc struct {
		ID string `bson:"_id"`
	}
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("geocode: %w", err)
	}
	return doc.ID, nil
}
