package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const pageHead = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Vibe in the Dark</title>
    <style>
      body { font-family: system-ui, sans-serif; background: #0d0d12; color: #eee; margin: 0; }
      .shell { max-width: 720px; margin: 0 auto; padding: 2rem 1rem; }
      .panel { background: #1a1a24; border-radius: 12px; padding: 1rem 1.25rem; margin-bottom: 1rem; }
      input, select, button { font: inherit; padding: .4rem .6rem; margin: .2rem 0; }
      .result { min-height: 1.5rem; color: #9fe; }
      table { width: 100%; border-collapse: collapse; }
      td, th { text-align: left; padding: .3rem; border-bottom: 1px solid #333; }
    </style>
  </head>
  <body>
    <main class="shell">
`

const pageFoot = `    </main>
  </body>
</html>
`

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, pageHead)
		_, _ = io.WriteString(w, `      <header>
        <h1>Vibe in the Dark</h1>
        <p>Recreate the target by prompting a code generator you cannot see.</p>
      </header>

      <section class="panel">
        <h2>Create a game</h2>
        <form id="createForm">
          <select name="renderMode">
            <option value="retro">Retro (HTML/CSS)</option>
            <option value="turbo">Turbo (React)</option>
          </select>
          <input name="targetText" placeholder="What should players build?" required/>
          <input name="duration" type="number" min="60" max="600" value="300"/>
          <label><input name="sabotageMode" type="checkbox"/> Sabotage mode</label>
          <button type="submit">Create game</button>
        </form>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Join a game</h2>
        <form id="joinForm">
          <input name="code" placeholder="Game code" autocomplete="off" required/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <button type="submit">Join game</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>

      <script>
        const createForm = document.getElementById("createForm");
        const createResult = document.getElementById("createResult");
        const joinForm = document.getElementById("joinForm");
        const joinResult = document.getElementById("joinResult");

        createForm.addEventListener("submit", async (event) => {
          event.preventDefault();
          createResult.textContent = "Creating game...";
          const res = await fetch("/api/games", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify({
              renderMode: createForm.elements.renderMode.value,
              targetType: "text",
              targetText: createForm.elements.targetText.value,
              duration: Number(createForm.elements.duration.value),
              sabotageMode: createForm.elements.sabotageMode.checked
            })
          });
          const data = await res.json();
          if (!res.ok) {
            createResult.textContent = data.error || "Failed to create game.";
            return;
          }
          window.location = "/games/" + data.code;
        });

        joinForm.addEventListener("submit", async (event) => {
          event.preventDefault();
          joinResult.textContent = "Joining game...";
          const code = joinForm.elements.code.value.trim();
          const res = await fetch("/api/games/" + encodeURIComponent(code) + "/join", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify({ name: joinForm.elements.name.value.trim() })
          });
          const data = await res.json();
          if (!res.ok) {
            joinResult.textContent = data.error || "Failed to join game.";
            return;
          }
          joinResult.textContent = "Joined as " + data.name + ".";
        });
      </script>
`)
		_, _ = io.WriteString(w, pageFoot)
		return nil
	})
}
