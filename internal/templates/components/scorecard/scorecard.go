// Package scorecard renders bowling scorecards as HTML fragments for htmx swaps.
package scorecard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/matchtrack/internal/bowling"
)

// Scorecard renders a table with one row per player.
func Scorecard(cards []CardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="scorecard" id="scorecard"><thead><tr><th scope="col">Player</th>`)
		for i := 1; i <= bowling.FrameCount; i++ {
			fmt.Fprintf(&b, `<th scope="col">%d</th>`, i)
		}
		b.WriteString(`<th scope="col">Total</th></tr></thead><tbody>`)
		for _, card := range cards {
			writeRow(&b, card)
		}
		b.WriteString(`</tbody></table>`)

		for _, card := range cards {
			if card.Message == "" {
				continue
			}
			fmt.Fprintf(&b, `<p class="scorecard-error" role="alert">%s</p>`, templ.EscapeString(card.Message))
		}

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeRow(b *strings.Builder, card CardData) {
	fmt.Fprintf(b, `<tr><th scope="row">%s</th>`, templ.EscapeString(card.Label))
	for i, frame := range card.Frames {
		b.WriteString(`<td><span class="rolls">`)
		for _, mark := range rollMarks(frame) {
			fmt.Fprintf(b, `<span class="roll">%s</span>`, templ.EscapeString(mark))
		}
		fmt.Fprintf(b, `</span><span class="running-total">%s</span></td>`, templ.EscapeString(card.Totals[i]))
	}
	fmt.Fprintf(b, `<td class="total">%s</td></tr>`, templ.EscapeString(card.Total))
}
