package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/easydrink/internal/client/catalog"
	"github.com/dmitrijs2005/easydrink/internal/client/models"
	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	titleColor   = color.New(color.FgCyan, color.Bold)
)

const (
	msgNoData     = "Não foi possível carregar os dados"
	msgSaveFailed = "Não foi possível salvar. Tente novamente"
)

// userMessage is the text shown for err. Only *common.UserError messages are
// shown verbatim.
func userMessage(err error, fallback string) string {
	var ue *common.UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return fallback
}

func printError(w io.Writer, err error, fallback string) {
	_, _ = errorColor.Fprintln(w, userMessage(err, fallback))
}

func printWarn(w io.Writer, msg string) {
	_, _ = warnColor.Fprintln(w, msg)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintln(w, msg)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func renderDrinks(w io.Writer, drinks []models.Drink) {
	rows := make([][]string, 0, len(drinks))
	for _, d := range drinks {
		rows = append(rows, []string{d.IDDrink, d.StrDrink, d.StrCategory})
	}
	t := newTable(w)
	t.Header([]string{"ID", "Nome", "Categoria"})
	_ = t.Bulk(rows)
	_ = t.Render()
}

func renderBatch(w io.Writer, b *catalog.RandomBatch) {
	if len(b.Drinks) == 0 {
		printWarn(w, "Nenhum drink encontrado")
		return
	}
	renderDrinks(w, b.Drinks)
	if b.Failed > 0 {
		printWarn(w, fmt.Sprintf("%d sugestões não puderam ser carregadas", b.Failed))
	}
}

func renderDetail(w io.Writer, d *models.DrinkDetail, favorite bool) {
	title := d.StrDrink
	if favorite {
		title += " ★"
	}
	_, _ = titleColor.Fprintln(w, title)
	fmt.Fprintf(w, "%s · %s · %s\n", d.StrCategory, d.StrAlcoholic, d.StrGlass)

	ingredients := d.IngredientList()
	if len(ingredients) > 0 {
		rows := make([][]string, 0, len(ingredients))
		for _, in := range ingredients {
			rows = append(rows, []string{in.Name, in.Measure})
		}
		t := newTable(w)
		t.Header([]string{"Ingrediente", "Medida"})
		_ = t.Bulk(rows)
		_ = t.Render()
	}
	if d.StrInstructions != "" {
		fmt.Fprintln(w, d.StrInstructions)
	}
}
