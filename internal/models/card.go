package models

// CardType represents the creature or spell kind of a card
type CardType string

const (
	CardTypeDragon   CardType = "Dragon"
	CardTypeWarrior  CardType = "Warrior"
	CardTypeMagician CardType = "Magician"
	CardTypeDinosaur CardType = "Dinosaur"
	CardTypeSpell    CardType = "Spell"
	CardTypeMage     CardType = "Mage"
)

// CardTypes lists every card type in declaration order
var CardTypes = []CardType{
	CardTypeDragon,
	CardTypeWarrior,
	CardTypeMagician,
	CardTypeDinosaur,
	CardTypeSpell,
	CardTypeMage,
}

// CardRarity represents how scarce a card is
type CardRarity string

const (
	CardRarityCommon   CardRarity = "Common"
	CardRarityUncommon CardRarity = "Uncommon"
	CardRarityRare     CardRarity = "Rare"
	CardRarityMythic   CardRarity = "Mythic"
)

// CardRarities lists every rarity in declaration order
var CardRarities = []CardRarity{
	CardRarityCommon,
	CardRarityUncommon,
	CardRarityRare,
	CardRarityMythic,
}

// Card represents a single card definition
type Card struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         CardType   `json:"type"`
	Rarity       CardRarity `json:"rarity"`
	Text         *string    `json:"text,omitempty"`
	CollectionID string     `json:"collection_id"`
}

// CardDetail is a card together with its resolved collection.
// Collection is nil when the referenced collection no longer exists.
type CardDetail struct {
	Card
	Collection *Collection `json:"collection"`
}

// IsValid reports whether t is one of the known card types
func (t CardType) IsValid() bool {
	return t.Rank() >= 0
}

// Rank returns the declaration index of t, or -1 when unknown
func (t CardType) Rank() int {
	for i, v := range CardTypes {
		if v == t {
			return i
		}
	}
	return -1
}

// IsValid reports whether r is one of the known rarities
func (r CardRarity) IsValid() bool {
	return r.Rank() >= 0
}

// Rank returns the declaration index of r, or -1 when unknown
func (r CardRarity) Rank() int {
	for i, v := range CardRarities {
		if v == r {
			return i
		}
	}
	return -1
}
