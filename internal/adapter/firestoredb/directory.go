package firestoredb

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

const usersCollection = "users"

// FarmerDirectory implements domain.FarmerDirectory over the Firestore
// users collection.
type FarmerDirectory struct {
	client *firestore.Client
}

type userDoc struct {
	Phone string `firestore:"phone"`
}

// Connect builds a Firestore client from base64-encoded service account JSON.
func Connect(ctx context.Context, encodedCreds string) (*firestore.Client, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("decode firebase credentials: %w", err)
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}

// NewFarmerDirectory creates a directory over an existing client.
func NewFarmerDirectory(client *firestore.Client) *FarmerDirectory {
	return &FarmerDirectory{client: client}
}

// RegisteredFarmers returns every registered farmer with a phone number.
func (d *FarmerDirectory) RegisteredFarmers(ctx context.Context) ([]domain.FarmerContact, error) {
	iter := d.client.Collection(usersCollection).
		Where("status", "==", "registered").
		Where("role", "==", "farmer").
		Select("phone").
		Documents(ctx)
	defer iter.Stop()

	var phones []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query registered farmers: %w", err)
		}
		var u userDoc
		if err := doc.DataTo(&u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
		}
		phones = append(phones, u.Phone)
	}
	return toContacts(phones), nil
}

// toContacts drops blank and duplicate numbers, keeping first-seen order.
func toContacts(phones []string) []domain.FarmerContact {
	seen := make(map[string]struct{}, len(phones))
	contacts := make([]domain.FarmerContact, 0, len(phones))
	for _, p := range phones {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		contacts = append(contacts, domain.FarmerContact{PhoneNumber: p})
	}
	return contacts
}

// Close releases the underlying client.
func (d *FarmerDirectory) Close() error {
	return d.client.Close()
}
