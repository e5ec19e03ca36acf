package domain

import "fmt"

// Generation is a static lookup row mapping a generation number to its national dex range.
// Ingestion never writes to it; rows are seeded at startup.
type Generation struct {
	ID      int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name    string `gorm:"type:text;not null" json:"name"`
	DexFrom int    `gorm:"not null" json:"dex_from"`
	DexTo   int    `gorm:"not null" json:"dex_to"`
}

// TableName returns the database table name for Generation.
func (Generation) TableName() string {
	return "generations"
}

// DefaultGenerations lists the official generations and their dex ranges.
var DefaultGenerations = []Generation{
	{ID: 1, Name: "Generation I", DexFrom: 1, DexTo: 151},
	{ID: 2, Name: "Generation II", DexFrom: 152, DexTo: 251},
	{ID: 3, Name: "Generation III", DexFrom: 252, DexTo: 386},
	{ID: 4, Name: "Generation IV", DexFrom: 387, DexTo: 493},
	{ID: 5, Name: "Generation V", DexFrom: 494, DexTo: 649},
	{ID: 6, Name: "Generation VI", DexFrom: 650, DexTo: 721},
	{ID: 7, Name: "Generation VII", DexFrom: 722, DexTo: 809},
	{ID: 8, Name: "Generation VIII", DexFrom: 810, DexTo: 905},
	{ID: 9, Name: "Generation IX", DexFrom: 906, DexTo: 1025},
}

// GenerationID is a validated, positive generation number.
type GenerationID int

// NewGenerationID validates a raw generation number.
// Parameters:
//   - n: generation number supplied by the caller.
//
// Returns:
//   - GenerationID: validated id.
//   - error: wraps ErrInvalidArgument when n is not positive.
func NewGenerationID(n int) (GenerationID, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: generation must be a positive integer, got %d", ErrInvalidArgument, n)
	}
	return GenerationID(n), nil
}

// DexRange is an inclusive range of national dex ids.
type DexRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// NewDexRange builds a range, rejecting non-positive bounds and inverted ranges.
func NewDexRange(from, to int) (DexRange, error) {
	if from <= 0 || to <= 0 {
		return DexRange{}, fmt.Errorf("%w: dex range bounds must be positive, got [%d,%d]", ErrInvalidArgument, from, to)
	}
	if from > to {
		return DexRange{}, fmt.Errorf("%w: dex range from %d is greater than to %d", ErrInvalidArgument, from, to)
	}
	return DexRange{From: from, To: to}, nil
}

// Size returns the number of ids in the range.
func (r DexRange) Size() int {
	return r.To - r.From + 1
}

// Contains reports whether id falls inside the range.
func (r DexRange) Contains(id int) bool {
	return id >= r.From && id <= r.To
}

func (r DexRange) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}
