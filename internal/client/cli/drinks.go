package cli

import (
	"context"
	"strconv"
	"strings"
)

// Random shows random suggestions. The optional argument overrides the
// configured count.
func (a *App) Random(ctx context.Context, args []string) error {
	count := a.config.RandomCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			printWarn(a.out, "Uso: random [n]")
			return err
		}
		count = n
	}

	renderBatch(a.out, a.catalog.RandomDrinks(ctx, count))
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		return nil
	}

	drinks, err := a.catalog.SearchDrinks(ctx, term)
	if err != nil {
		a.log.Warn(ctx, "search failed", "term", term, "error", err)
		printWarn(a.out, msgNoData)
		return err
	}
	if len(drinks) == 0 {
		printWarn(a.out, "Nenhum drink encontrado para \""+term+"\"")
		return nil
	}
	renderDrinks(a.out, drinks)
	return nil
}

// Show prints one recipe with its ingredients. Signed-in users also see
// whether it is a favorite.
func (a *App) Show(ctx context.Context, args []string) error {
	d, err := a.catalog.DrinkByID(ctx, args[0])
	if err != nil {
		a.log.Warn(ctx, "lookup failed", "id", args[0], "error", err)
		printWarn(a.out, msgNoData)
		return err
	}
	if d == nil {
		printWarn(a.out, "Drink não encontrado")
		return nil
	}

	favorite := false
	if a.isLoggedIn() {
		favorite, _ = a.favorites.IsFavorite(ctx, d.IDDrink)
	}
	renderDetail(a.out, d, favorite)
	return nil
}
