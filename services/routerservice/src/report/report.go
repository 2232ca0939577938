package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexkalak/go_v2_router/common/core/fraction"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/routerservice"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const significantDigits = 6

func limitHeader(tradeType trade.TradeType) string {
	if tradeType == trade.ExactOutput {
		return "Max in"
	}
	return "Min out"
}

func significant(value interface {
	ToSignificant(int, fraction.Rounding) (string, error)
}) string {
	s, err := value.ToSignificant(significantDigits, fraction.RoundDown)
	if err != nil {
		return "n/a"
	}
	return s
}

// QuotesTable renders quotes best first. title is shown above the table.
func QuotesTable(title string, tradeType trade.TradeType, quotes []routerservice.Quote) string {
	builder := &strings.Builder{}
	t := table.NewWriter()
	t.SetOutputMirror(builder)
	t.SetTitle(title)
	t.Style().Size.WidthMax = 160
	t.AppendHeader(table.Row{"#", "Route", "Input", "Output", "Execution price", "Price impact", limitHeader(tradeType)})

	if len(quotes) == 0 {
		t.AppendRow(table.Row{"", "no route found", "", "", "", "", ""}, table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft})
		t.Render()
		return builder.String()
	}

	for i, quote := range quotes {
		tr := quote.Trade
		price := tr.ExecutionPrice()
		t.AppendRow(table.Row{
			i + 1,
			tr.Route().String(),
			fmt.Sprintf("%s %s", significant(tr.InputAmount()), tr.InputAmount().Currency().Symbol()),
			fmt.Sprintf("%s %s", significant(tr.OutputAmount()), tr.OutputAmount().Currency().Symbol()),
			fmt.Sprintf("%s %s/%s", significant(price), price.QuoteCurrency().Symbol(), price.BaseCurrency().Symbol()),
			significant(tr.PriceImpact()) + "%",
			fmt.Sprintf("%s %s", significant(quote.Limit), quote.Limit.Currency().Symbol()),
		})
	}

	if slippage, err := quotes[0].Slippage.ToSignificant(significantDigits, fraction.RoundDown); err == nil {
		t.SetCaption("slippage tolerance %s%%", slippage)
	}

	t.Render()
	return builder.String()
}

// SwapsTable lists router calls for the quotes that have one.
func SwapsTable(quotes []routerservice.Quote) string {
	builder := &strings.Builder{}
	t := table.NewWriter()
	t.SetOutputMirror(builder)
	t.SetTitle("UniswapV2Router02 calls")
	t.AppendHeader(table.Row{"#", "Method", "Value (wei)", "Calldata"})

	for i, quote := range quotes {
		if quote.Swap == nil {
			continue
		}
		t.AppendRow(table.Row{i + 1, quote.Swap.MethodName, quote.Swap.Value.String(), fmt.Sprintf("0x%x", quote.Swap.Calldata)})
	}

	t.Render()
	return builder.String()
}

func Write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
