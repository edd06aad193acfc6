package mongodb

import (
	"fmt"
	"time"

	"github.com/tcg-catalog/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type collectionDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	ReleaseDate time.Time          `bson:"release_date"`
}

func (d *collectionDocument) toModel() models.Collection {
	return models.Collection{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		ReleaseDate: d.ReleaseDate.UTC(),
	}
}

type cardDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Type         string             `bson:"type"`
	Rarity       string             `bson:"rarity"`
	Text         *string            `bson:"text,omitempty"`
	CollectionID primitive.ObjectID `bson:"collection_id"`
}

func (d *cardDocument) toModel() models.Card {
	return models.Card{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Type:         models.CardType(d.Type),
		Rarity:       models.CardRarity(d.Rarity),
		Text:         d.Text,
		CollectionID: d.CollectionID.Hex(),
	}
}

func cardToDocument(c *models.Card) (*cardDocument, error) {
	collectionID, ok := parseID(c.CollectionID)
	if !ok {
		return nil, fmt.Errorf("invalid collection id %q", c.CollectionID)
	}
	return &cardDocument{
		Name:         c.Name,
		Type:         string(c.Type),
		Rarity:       string(c.Rarity),
		Text:         c.Text,
		CollectionID: collectionID,
	}, nil
}

type deckDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Format    string               `bson:"format"`
	CreatedAt time.Time            `bson:"created_at"`
	OwnerID   primitive.ObjectID   `bson:"owner_id"`
	CardIDs   []primitive.ObjectID `bson:"card_ids"`
}

func (d *deckDocument) toModel() models.Deck {
	cardIDs := make([]string, 0, len(d.CardIDs))
	for _, id := range d.CardIDs {
		cardIDs = append(cardIDs, id.Hex())
	}
	return models.Deck{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Format:    models.DeckFormat(d.Format),
		CreatedAt: d.CreatedAt.UTC(),
		OwnerID:   d.OwnerID.Hex(),
		CardIDs:   cardIDs,
	}
}

func deckToDocument(deck *models.Deck) (*deckDocument, error) {
	ownerID, ok := parseID(deck.OwnerID)
	if !ok {
		return nil, fmt.Errorf("invalid owner id %q", deck.OwnerID)
	}
	cardIDs, err := cardObjectIDs(deck.CardIDs)
	if err != nil {
		return nil, err
	}
	return &deckDocument{
		Name:      deck.Name,
		Format:    string(deck.Format),
		CreatedAt: deck.CreatedAt,
		OwnerID:   ownerID,
		CardIDs:   cardIDs,
	}, nil
}

// cardObjectIDs converts a deck's card list, keeping its order
func cardObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, ok := parseID(id)
		if !ok {
			return nil, fmt.Errorf("invalid card id %q", id)
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
