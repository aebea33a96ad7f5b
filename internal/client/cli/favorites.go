package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/easydrink/internal/common"
)

func (a *App) ListFavorites(ctx context.Context) error {
	drinks, err := a.favorites.Favorites(ctx)
	if err != nil {
		printError(a.out, err, msgNoData)
		return err
	}
	if len(drinks) == 0 {
		printWarn(a.out, "Você ainda não tem favoritos")
		return nil
	}
	renderDrinks(a.out, drinks)
	fmt.Fprintf(a.out, "%d receita(s) salva(s)\n", len(drinks))
	return nil
}

// AddFavorite looks the recipe up and saves its summary.
func (a *App) AddFavorite(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		printWarn(a.out, common.ErrNotLoggedIn.Message)
		return common.ErrNotLoggedIn
	}

	d, err := a.catalog.DrinkByID(ctx, args[0])
	if err != nil {
		printWarn(a.out, msgNoData)
		return err
	}
	if d == nil {
		printWarn(a.out, "Drink não encontrado")
		return nil
	}

	if err := a.favorites.Add(ctx, d.Drink); err != nil {
		a.log.Warn(ctx, "add favorite failed", "id", d.IDDrink, "error", err)
		printError(a.out, err, msgSaveFailed)
		return err
	}
	printSuccess(a.out, d.StrDrink+" adicionado aos favoritos")
	return nil
}

func (a *App) RemoveFavorite(ctx context.Context, args []string) error {
	if err := a.favorites.Remove(ctx, args[0]); err != nil {
		a.log.Warn(ctx, "remove favorite failed", "id", args[0], "error", err)
		printError(a.out, err, msgSaveFailed)
		return err
	}
	printSuccess(a.out, "Removido dos favoritos")
	return nil
}
