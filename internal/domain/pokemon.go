package domain

import "time"

// Pokemon is one catalog item keyed by its national dex id.
// Child rows (types, stats, abilities) are owned through join tables keyed by
// (pokemon_dex_id, reference id), which makes re-ingestion idempotent.
type Pokemon struct {
	DexID          int           `gorm:"primaryKey;autoIncrement:false" json:"dex_id"`
	Name           string        `gorm:"type:text;not null;uniqueIndex:idx_pokemon_name" json:"name"`
	Height         *int          `json:"height"`
	Weight         *int          `json:"weight"`
	BaseExperience *int          `json:"base_experience"`
	SpriteDefault  *string       `gorm:"type:text" json:"sprite_default"`
	SpriteKey      *string       `gorm:"type:text" json:"sprite_key,omitempty"`
	StatsVector    FeatureVector `json:"stats_vector,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Types     []PokemonType    `gorm:"foreignKey:PokemonDexID;references:DexID;constraint:OnDelete:CASCADE" json:"types,omitempty"`
	Stats     []PokemonStat    `gorm:"foreignKey:PokemonDexID;references:DexID;constraint:OnDelete:CASCADE" json:"stats,omitempty"`
	Abilities []PokemonAbility `gorm:"foreignKey:PokemonDexID;references:DexID;constraint:OnDelete:CASCADE" json:"abilities,omitempty"`
}

// TableName returns the database table name for Pokemon.
func (Pokemon) TableName() string {
	return "pokemon"
}

// Type is a shared elemental type reference, keyed by the upstream id.
type Type struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:text;not null" json:"name"`
}

func (Type) TableName() string { return "types" }

// Stat is a shared base-stat reference such as "hp" or "speed".
type Stat struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:text;not null;index:idx_stats_name" json:"name"`
}

func (Stat) TableName() string { return "stats" }

// Ability is a shared ability reference.
type Ability struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:text;not null" json:"name"`
}

func (Ability) TableName() string { return "abilities" }

// PokemonType joins a pokemon to a type in a given slot.
type PokemonType struct {
	PokemonDexID int  `gorm:"primaryKey;autoIncrement:false" json:"-"`
	TypeID       int  `gorm:"primaryKey;autoIncrement:false;index" json:"type_id"`
	Slot         int  `gorm:"not null" json:"slot"`
	Type         Type `gorm:"foreignKey:TypeID" json:"type"`
}

func (PokemonType) TableName() string { return "pokemon_types" }

// PokemonStat carries the per-pokemon base value and effort yield for a stat.
type PokemonStat struct {
	PokemonDexID int  `gorm:"primaryKey;autoIncrement:false" json:"-"`
	StatID       int  `gorm:"primaryKey;autoIncrement:false;index" json:"stat_id"`
	BaseValue    int  `gorm:"not null" json:"base_value"`
	Effort       int  `gorm:"not null;default:0" json:"effort"`
	Stat         Stat `gorm:"foreignKey:StatID" json:"stat"`
}

func (PokemonStat) TableName() string { return "pokemon_stats" }

// PokemonAbility joins a pokemon to an ability in a given slot.
type PokemonAbility struct {
	PokemonDexID int     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	AbilityID    int     `gorm:"primaryKey;autoIncrement:false;index" json:"ability_id"`
	Slot         int     `gorm:"not null" json:"slot"`
	IsHidden     bool    `gorm:"not null;default:false" json:"is_hidden"`
	Ability      Ability `gorm:"foreignKey:AbilityID" json:"ability"`
}

func (PokemonAbility) TableName() string { return "pokemon_abilities" }

// PokemonSuggestion is one fuzzy name match.
type PokemonSuggestion struct {
	DexID         int     `json:"dex_id"`
	Name          string  `json:"name"`
	SpriteDefault *string `json:"sprite_default"`
	Score         float64 `json:"score"`
}

// SimilarPokemon is one reranked neighbor returned by the similarity engine.
type SimilarPokemon struct {
	DexID         int      `json:"dex_id"`
	Name          string   `json:"name"`
	SpriteDefault *string  `json:"sprite_default"`
	Distance      float64  `json:"distance"`
	Score         float64  `json:"score"`
	SharedTypes   []string `json:"shared_types"`
}
