package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

type reportDoc struct {
	ID               string    `bson:"_id"`
	Title            string    `bson:"title"`
	Description      string    `bson:"description"`
	Category         string    `bson:"category"`
	Lat              float64   `bson:"lat"`
	Lng              float64   `bson:"lng"`
	Address          string    `bson:"address"`
	PhotoURL         string    `bson:"photo_url,omitempty"`
	MunicipalityID   string    `bson:"municipality_id"`
	CreatedBy        string    `bson:"created_by"`
	Status           string    `bson:"status"`
	AssignedOfficial string    `bson:"assigned_official,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func toReportDoc(r *domain.Report) reportDoc {
	return reportDoc{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Lat:              r.Lat,
		Lng:              r.Lng,
		Address:          r.Address,
		PhotoURL:         r.PhotoURL,
		MunicipalityID:   r.MunicipalityID,
		CreatedBy:        r.CreatedBy,
		Status:           string(r.Status),
		AssignedOfficial: r.AssignedOfficial,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (d reportDoc) toDomain() *domain.Report {
	return &domain.Report{
		ID:               d.ID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Lat:              d.Lat,
		Lng:              d.Lng,
		Address:          d.Address,
		PhotoURL:         d.PhotoURL,
		MunicipalityID:   d.MunicipalityID,
		CreatedBy:        d.CreatedBy,
		Status:           domain.ReportStatus(d.Status),
		AssignedOfficial: d.AssignedOfficial,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// Create inserts a new report document in a single write.
func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toReportDoc(rep)); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page, newest first with the id as tie-breaker, and the
// number of documents matching the filter.
func (r *ReportRepository) List(ctx context.Context, f ports.ListReportsFilter) ([]*domain.Report, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.MunicipalityID != "" {
		filter["municipality_id"] = f.MunicipalityID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode reports: %w", err)
	}

	out := make([]*domain.Report, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, total, nil
}

// Update applies the patch and returns the stored result. Only the
// official-writable fields can reach the $set document.
func (r *ReportRepository) Update(ctx context.Context, id string, p domain.ReportPatch) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.AssignedOfficial != nil {
		if *p.AssignedOfficial == "" {
			update["$unset"] = bson.M{"assigned_official": ""}
		} else {
			set["assigned_official"] = *p.AssignedOfficial
		}
	}
	update["$set"] = set

	var doc reportDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("update report: %w", err)
	}
	return doc.toDomain(), nil
}
