package repositories

import (
	"context"
	"donation-matching-service/internal/domain"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ngoCollectionName     = "ngos"
	receiveCollectionName = "receives"
)

// ngoDocument is an organization after the receipts lookup. _id may be an
// ObjectID or a plain string depending on how the record was created.
type ngoDocument struct {
	ID                any        `bson:"_id"`
	Name              string     `bson:"name"`
	Address           string     `bson:"address"`
	Lat               *float64   `bson:"lat"`
	Lng               *float64   `bson:"lng"`
	LastDonationDate  *time.Time `bson:"last_donation_date"`
	AcceptedFoodTypes []string   `bson:"accepted_food_types"`
	CapacityMin       *float64   `bson:"capacity_min"`
	CapacityMax       *float64   `bson:"capacity_max"`
	UrgencyPreference *bool      `bson:"urgency_preference"`
	CurrentNeeds      []string   `bson:"current_needs"`
}

func (d ngoDocument) record() organizationRecord {
	return organizationRecord{
		ID:                documentID(d.ID),
		Name:              d.Name,
		Address:           d.Address,
		Lat:               d.Lat,
		Lng:               d.Lng,
		LastDonationAt:    d.LastDonationDate,
		AcceptedFoodTypes: d.AcceptedFoodTypes,
		CapacityMin:       d.CapacityMin,
		CapacityMax:       d.CapacityMax,
		UrgencyPreference: d.UrgencyPreference,
		CurrentNeeds:      d.CurrentNeeds,
	}
}

func documentID(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// objectIDOrString stores 24-char hex ids as ObjectIDs so receipts written
// by other services still join.
func objectIDOrString(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// MongoDB-backed implementation of the OrganizationSource port.
type MongoOrganizationRepository struct {
	db *mongo.Database
}

func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	return &MongoOrganizationRepository{db: db}
}

// organizationsPipeline attaches each NGO's latest receipt as
// last_donation_date without returning the receipts themselves.
func organizationsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         receiveCollectionName,
			"localField":   "_id",
			"foreignField": "receivedBy",
			"as":           "donations",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"last_donation_date": bson.M{"$max": "$donations.receivedAt"},
		}}},
		{{Key: "$project", Value: bson.M{"donations": 0}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func (r *MongoOrganizationRepository) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	if r.db == nil {
		return nil, errors.New("mongo organization repository: database is nil")
	}

	cursor, err := r.db.Collection(ngoCollectionName).Aggregate(ctx, organizationsPipeline())
	if err != nil {
		return nil, fmt.Errorf("list organizations: aggregate %s: %w", ngoCollectionName, err)
	}
	defer cursor.Close(ctx)

	var docs []ngoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list organizations: decode documents: %w", err)
	}

	orgs := make([]*domain.Organization, 0, len(docs))
	for _, d := range docs {
		orgs = append(orgs, d.record().toDomain())
	}

	return orgs, nil
}

// Seed upserts the fixture organizations and replaces their receipts.
func (r *MongoOrganizationRepository) Seed(ctx context.Context, seed *Seed) error {
	ngos := r.db.Collection(ngoCollectionName)
	receives := r.db.Collection(receiveCollectionName)

	for _, o := range seed.Organizations {
		id := objectIDOrString(o.ID)

		doc := bson.M{
			"_id":     id,
			"name":    o.Name,
			"email":   o.Email,
			"address": o.Address,
		}
		if o.Lat != nil && o.Lng != nil {
			doc["lat"] = *o.Lat
			doc["lng"] = *o.Lng
		}
		if o.AcceptedFoodTypes != nil {
			doc["accepted_food_types"] = o.AcceptedFoodTypes
		}
		if o.CapacityMin != nil {
			doc["capacity_min"] = *o.CapacityMin
		}
		if o.CapacityMax != nil {
			doc["capacity_max"] = *o.CapacityMax
		}
		if o.UrgencyPreference != nil {
			doc["urgency_preference"] = *o.UrgencyPreference
		}
		if o.CurrentNeeds != nil {
			doc["current_needs"] = o.CurrentNeeds
		}

		_, err := ngos.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed organizations: upsert id=%s: %w", o.ID, err)
		}

		if _, err := receives.DeleteMany(ctx, bson.M{"receivedBy": id}); err != nil {
			return fmt.Errorf("seed organizations: clear receipts id=%s: %w", o.ID, err)
		}
	}

	if len(seed.Receipts) == 0 {
		return nil
	}

	docs := make([]any, 0, len(seed.Receipts))
	for _, rc := range seed.Receipts {
		docs = append(docs, bson.M{
			"receivedBy": objectIDOrString(rc.OrganizationID),
			"receivedAt": rc.ReceivedAt,
		})
	}
	if _, err := receives.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed receipts: %w", err)
	}

	return nil
}

// EnsureIndexes indexes receipts by recipient so the lookup stays cheap.
func (r *MongoOrganizationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(receiveCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "receivedBy", Value: 1}, {Key: "receivedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %s: %w", receiveCollectionName, err)
	}
	return nil
}
