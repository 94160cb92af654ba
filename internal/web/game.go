package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Game renders a read-only status board that follows the room over the
// websocket and reloads on status changes.
func Game(page GamePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, pageHead)
		_, _ = io.WriteString(w, `      <header>
        <h1>Game `)
		writeEscaped(w, page.Code)
		_, _ = io.WriteString(w, `</h1>
        <p>Status: <strong id="status">`)
		writeEscaped(w, page.Status)
		_, _ = io.WriteString(w, `</strong> &middot; Mode: `)
		writeEscaped(w, page.RenderMode)
		_, _ = io.WriteString(w, ` &middot; Time left: <span id="clock">`)
		writeEscaped(w, formatClock(page.TimeRemaining))
		_, _ = io.WriteString(w, `</span></p>
        <p>Target: `)
		writeEscaped(w, page.TargetDescription)
		_, _ = io.WriteString(w, "</p>\n")
		if page.WinnerName != "" {
			_, _ = io.WriteString(w, `        <p class="result">Winner: `)
			writeEscaped(w, page.WinnerName)
			_, _ = io.WriteString(w, "</p>\n")
		}
		_, _ = io.WriteString(w, `      </header>

      <section class="panel">
        <table>
          <thead><tr><th>Player</th><th>Prompts</th><th>Votes</th></tr></thead>
          <tbody>
`)
		if len(page.Players) == 0 {
			_, _ = io.WriteString(w, `            <tr><td colspan="3">Waiting for players...</td></tr>
`)
		}
		for _, p := range page.Players {
			_, _ = io.WriteString(w, "            <tr><td>")
			writeEscaped(w, p.Name)
			_, _ = io.WriteString(w, "</td><td>")
			writeEscaped(w, itoa(p.Prompts), "/", itoa(page.MaxPrompts))
			_, _ = io.WriteString(w, "</td><td>")
			writeEscaped(w, itoa(p.Votes))
			_, _ = io.WriteString(w, "</td></tr>\n")
		}
		_, _ = io.WriteString(w, `          </tbody>
        </table>
      </section>

      <script>
        const proto = window.location.protocol === "https:" ? "wss://" : "ws://";
        const socket = new WebSocket(proto + window.location.host + "/ws`)
		_, _ = io.WriteString(w, templ.EscapeString("/games/"+page.Code))
		_, _ = io.WriteString(w, `");
        socket.addEventListener("message", (msg) => {
          const event = JSON.parse(msg.data);
          if (event.type !== "state" && event.type !== "reactionUpdate") {
            window.location.reload();
          }
        });
      </script>
`)
		_, _ = io.WriteString(w, pageFoot)
		return nil
	})
}
