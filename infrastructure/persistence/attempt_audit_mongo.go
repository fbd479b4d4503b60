package persistence

import (
	"context"
	"time"

	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type attemptTargetDoc struct {
	ExternalID  string `bson:"externalId"`
	DisplayName string `bson:"displayName"`
	Username    string `bson:"username,omitempty"`
}

type attemptDoc struct {
	ID         string             `bson:"_id"`
	Platform   string             `bson:"platform"`
	UserID     string             `bson:"userId"`
	State      string             `bson:"state"`
	Reason     string             `bson:"reason,omitempty"`
	Trail      []string           `bson:"trail"`
	Targets    []attemptTargetDoc `bson:"targets,omitempty"`
	SelectedID string             `bson:"selectedId,omitempty"`
	Warnings   []model.Warning    `bson:"warnings,omitempty"`
	StartedAt  time.Time          `bson:"startedAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// newAttemptDoc copies an attempt without any tokens.
func newAttemptDoc(a *model.Attempt) attemptDoc {
	doc := attemptDoc{
		ID:         a.ID,
		Platform:   string(a.Platform),
		UserID:     a.UserID,
		State:      string(a.State),
		Reason:     a.Reason,
		SelectedID: a.SelectedID,
		Warnings:   a.Warnings,
		StartedAt:  a.StartedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	for _, s := range a.Trail {
		doc.Trail = append(doc.Trail, string(s))
	}
	for _, t := range a.Targets {
		doc.Targets = append(doc.Targets, attemptTargetDoc{ExternalID: t.ExternalID, DisplayName: t.DisplayName, Username: t.Username})
	}
	return doc
}

var (
	_ repository.IAttemptAudit   = (*AttemptAuditMongo)(nil)
	_ repository.IAttemptHistory = (*AttemptAuditMongo)(nil)
)

// AttemptAuditMongo keeps finished attempts in the connection_attempts collection.
type AttemptAuditMongo struct {
	collection *mongo.Collection
}

func NewAttemptAuditMongo(client *mongo.Client, database string) *AttemptAuditMongo {
	return &AttemptAuditMongo{collection: client.Database(database).Collection("connection_attempts")}
}

// Record replaces the audit document of an attempt. A re-selection updates the same document.
func (a *AttemptAuditMongo) Record(ctx context.Context, attempt *model.Attempt) error {
	doc := newAttemptDoc(attempt)
	_, err := a.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		logger.GetLogger().WithField("attempt_id", doc.ID).WithField("error", err.Error()).Error("Error while auditing attempt")
	}
	return err
}

// Recent returns the latest attempts of a user, newest first.
func (a *AttemptAuditMongo) Recent(ctx context.Context, userID string, limit int64) ([]model.Attempt, error) {
	cursor, err := a.collection.Find(ctx, bson.D{{Key: "userId", Value: userID}}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	var out []model.Attempt
	for cursor.Next(ctx) {
		var doc attemptDoc
		if err := cursor.Decode(&doc); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding")
			continue
		}
		out = append(out, doc.toAttempt())
	}
	return out, cursor.Err()
}

func (d attemptDoc) toAttempt() model.Attempt {
	a := model.Attempt{
		ID:         d.ID,
		Platform:   model.Platform(d.Platform),
		UserID:     d.UserID,
		State:      model.AttemptState(d.State),
		Reason:     d.Reason,
		SelectedID: d.SelectedID,
		Warnings:   d.Warnings,
		StartedAt:  d.StartedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, s := range d.Trail {
		a.Trail = append(a.Trail, model.AttemptState(s))
	}
	for _, t := range d.Targets {
		a.Targets = append(a.Targets, model.ConnectableTarget{ExternalID: t.ExternalID, DisplayName: t.DisplayName, Username: t.Username})
	}
	return a
}
