package world

import "strings"

type Category int

const (
	CategoryTree Category = iota
	CategorySnowTree
	CategoryCactus
	CategoryRock
)

var biomeCategories = map[string]Category{
	"forest": CategoryTree,
	"grass":  CategoryTree,
	"snow":   CategorySnowTree,
	"tundra": CategorySnowTree,
	"desert": CategoryCactus,
	"sand":   CategoryCactus,
	"rock":   CategoryRock,
	"stone":  CategoryRock,
}

// CategoryForBiome maps a server biome name to its visual category. Unknown
// or empty biomes are forest.
func CategoryForBiome(biome string) Category {
	if c, ok := biomeCategories[strings.ToLower(strings.TrimSpace(biome))]; ok {
		return c
	}
	return CategoryTree
}

// Feature is a static piece of map geometry. It never changes after load.
type Feature struct {
	Position Vector
	Category Category
}

// Features holds the static map as last received. A reload replaces the
// whole set.
type Features struct {
	features []Feature
}

func (f *Features) Load(features []Feature) {
	f.features = append([]Feature(nil), features...)
}

func (f *Features) All() []Feature {
	return f.features
}

func (f *Features) Len() int {
	return len(f.features)
}
