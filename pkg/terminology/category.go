package terminology

import "fmt"

// Category is the body-system or domain a concept belongs to.
type Category string

const (
	CategoryCardiovascular   Category = "cardiovascular"
	CategoryRespiratory      Category = "respiratory"
	CategoryNeurological     Category = "neurological"
	CategoryGastrointestinal Category = "gastrointestinal"
	CategoryMusculoskeletal  Category = "musculoskeletal"
	CategoryDermatological   Category = "dermatological"
	CategoryPsychological    Category = "psychological"
	CategorySystemic         Category = "systemic"
	CategoryVisual           Category = "visual"
	CategorySleep            Category = "sleep"
	CategoryPain             Category = "pain"
	CategoryGeneral          Category = "general"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryCardiovascular,
		CategoryRespiratory,
		CategoryNeurological,
		CategoryGastrointestinal,
		CategoryMusculoskeletal,
		CategoryDermatological,
		CategoryPsychological,
		CategorySystemic,
		CategoryVisual,
		CategorySleep,
		CategoryPain,
		CategoryGeneral,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryCardiovascular, CategoryRespiratory, CategoryNeurological,
		CategoryGastrointestinal, CategoryMusculoskeletal, CategoryDermatological,
		CategoryPsychological, CategorySystemic, CategoryVisual, CategorySleep,
		CategoryPain, CategoryGeneral:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// UnmarshalText rejects categories outside the fixed set.
func (c *Category) UnmarshalText(text []byte) error {
	v := Category(text)
	if !v.Valid() {
		return fmt.Errorf("unknown category %q", string(text))
	}
	*c = v
	return nil
}
