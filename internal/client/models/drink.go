// Package models defines the client-side data shapes: recipe summaries and
// details as served by the upstream catalog, and the signed-in user.
package models

import (
	"encoding/json"
	"strings"
)

// MaxIngredients is the number of ingredient/measure slots a recipe detail carries.
const MaxIngredients = 15

// Drink is a recipe summary. IDDrink is its identity.
type Drink struct {
	IDDrink       string `json:"idDrink"`
	StrDrink      string `json:"strDrink"`
	StrDrinkThumb string `json:"strDrinkThumb"`
	StrCategory   string `json:"strCategory"`
}

// Ingredient is one (name, measure) slot of a recipe. A blank Name marks an
// unused slot.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// DrinkDetail is a recipe summary plus preparation data.
type DrinkDetail struct {
	Drink
	StrAlcoholic    string
	StrInstructions string
	StrGlass        string
	Ingredients     [MaxIngredients]Ingredient
}

// IngredientList returns the used slots in recipe order, with names and
// measures trimmed.
func (d *DrinkDetail) IngredientList() []Ingredient {
	out := make([]Ingredient, 0, MaxIngredients)
	for _, in := range d.Ingredients {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		out = append(out, Ingredient{Name: name, Measure: strings.TrimSpace(in.Measure)})
	}
	return out
}

// detailWire mirrors the upstream lookup payload, where ingredients are spread
// over numbered fields that may be null, empty or missing.
type detailWire struct {
	IDDrink         string `json:"idDrink"`
	StrDrink        string `json:"strDrink"`
	StrDrinkThumb   string `json:"strDrinkThumb"`
	StrCategory     string `json:"strCategory"`
	StrAlcoholic    string `json:"strAlcoholic"`
	StrInstructions string `json:"strInstructions"`
	StrGlass        string `json:"strGlass"`

	StrIngredient1  *string `json:"strIngredient1"`
	StrIngredient2  *string `json:"strIngredient2"`
	StrIngredient3  *string `json:"strIngredient3"`
	StrIngredient4  *string `json:"strIngredient4"`
	StrIngredient5  *string `json:"strIngredient5"`
	StrIngredient6  *string `json:"strIngredient6"`
	StrIngredient7  *string `json:"strIngredient7"`
	StrIngredient8  *string `json:"strIngredient8"`
	StrIngredient9  *string `json:"strIngredient9"`
	StrIngredient10 *string `json:"strIngredient10"`
	StrIngredient11 *string `json:"strIngredient11"`
	StrIngredient12 *string `json:"strIngredient12"`
	StrIngredient13 *string `json:"strIngredient13"`
	StrIngredient14 *string `json:"strIngredient14"`
	StrIngredient15 *string `json:"strIngredient15"`

	StrMeasure1  *string `json:"strMeasure1"`
	StrMeasure2  *string `json:"strMeasure2"`
	StrMeasure3  *string `json:"strMeasure3"`
	StrMeasure4  *string `json:"strMeasure4"`
	StrMeasure5  *string `json:"strMeasure5"`
	StrMeasure6  *string `json:"strMeasure6"`
	StrMeasure7  *string `json:"strMeasure7"`
	StrMeasure8  *string `json:"strMeasure8"`
	StrMeasure9  *string `json:"strMeasure9"`
	StrMeasure10 *string `json:"strMeasure10"`
	StrMeasure11 *string `json:"strMeasure11"`
	StrMeasure12 *string `json:"strMeasure12"`
	StrMeasure13 *string `json:"strMeasure13"`
	StrMeasure14 *string `json:"strMeasure14"`
	StrMeasure15 *string `json:"strMeasure15"`
}

func (w *detailWire) ingredientSlots() [MaxIngredients]**string {
	return [MaxIngredients]**string{
		&w.StrIngredient1, &w.StrIngredient2, &w.StrIngredient3, &w.StrIngredient4, &w.StrIngredient5,
		&w.StrIngredient6, &w.StrIngredient7, &w.StrIngredient8, &w.StrIngredient9, &w.StrIngredient10,
		&w.StrIngredient11, &w.StrIngredient12, &w.StrIngredient13, &w.StrIngredient14, &w.StrIngredient15,
	}
}

func (w *detailWire) measureSlots() [MaxIngredients]**string {
	return [MaxIngredients]**string{
		&w.StrMeasure1, &w.StrMeasure2, &w.StrMeasure3, &w.StrMeasure4, &w.StrMeasure5,
		&w.StrMeasure6, &w.StrMeasure7, &w.StrMeasure8, &w.StrMeasure9, &w.StrMeasure10,
		&w.StrMeasure11, &w.StrMeasure12, &w.StrMeasure13, &w.StrMeasure14, &w.StrMeasure15,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d *DrinkDetail) UnmarshalJSON(b []byte) error {
	var w detailWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	d.Drink = Drink{
		IDDrink:       w.IDDrink,
		StrDrink:      w.StrDrink,
		StrDrinkThumb: w.StrDrinkThumb,
		StrCategory:   w.StrCategory,
	}
	d.StrAlcoholic = w.StrAlcoholic
	d.StrInstructions = w.StrInstructions
	d.StrGlass = w.StrGlass

	names, measures := w.ingredientSlots(), w.measureSlots()
	for i := 0; i < MaxIngredients; i++ {
		d.Ingredients[i] = Ingredient{Name: deref(*names[i]), Measure: deref(*measures[i])}
	}
	return nil
}

func (d DrinkDetail) MarshalJSON() ([]byte, error) {
	w := detailWire{
		IDDrink:         d.IDDrink,
		StrDrink:        d.StrDrink,
		StrDrinkThumb:   d.StrDrinkThumb,
		StrCategory:     d.StrCategory,
		StrAlcoholic:    d.StrAlcoholic,
		StrInstructions: d.StrInstructions,
		StrGlass:        d.StrGlass,
	}

	names, measures := w.ingredientSlots(), w.measureSlots()
	for i, in := range d.Ingredients {
		if in.Name == "" && in.Measure == "" {
			continue
		}
		name, measure := in.Name, in.Measure
		*names[i] = &name
		*measures[i] = &measure
	}
	return json.Marshal(w)
}
