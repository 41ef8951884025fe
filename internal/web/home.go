package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Query Quest</title>
    <style>` + baseStyles + `</style>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Query Quest</span>
        <h1>Find the place. Query the clues.</h1>
        <p>Every round hides a location. Hints arrive over time; SQL against the catalog gets you there faster.</p>
      </header>
`)
		if data.Flash != "" {
			b.WriteString(`      <p class="flash">` + esc(data.Flash) + `</p>
`)
		}
		b.WriteString(`
      <section class="panel">
        <h2>Host a room</h2>
        <form id="hostForm">
          <input name="displayName" placeholder="Display name" maxlength="` + itoa(data.MaxNameLength) + `" required/>
          <button type="submit" class="primary">Create room</button>
        </form>
        <div id="hostResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Join a room</h2>
        <form id="joinForm">
          <input name="code" placeholder="Room code" maxlength="4" autocomplete="off" required/>
          <input name="displayName" placeholder="Display name" maxlength="` + itoa(data.MaxNameLength) + `" required/>
          <button type="submit" class="secondary">Join</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Open rooms</h2>
`)
		if len(data.Rooms) == 0 {
			b.WriteString(`        <p class="muted">No rooms are open right now.</p>
`)
		} else {
			b.WriteString(`        <ul class="rooms">
`)
			for _, room := range data.Rooms {
				b.WriteString(`          <li><strong>` + esc(room.Code) + `</strong> <span>` + esc(room.Phase) + `</span> <span>` + itoa(room.Participants) + ` players</span></li>
`)
			}
			b.WriteString(`        </ul>
`)
		}
		b.WriteString(`      </section>
    </main>

    <script>
      async function post(url, body, out) {
        out.textContent = "...";
        const res = await fetch(url, {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(body)
        });
        const data = await res.json();
        if (!res.ok) {
          out.textContent = data.error || "Request failed.";
          return;
        }
        window.location = "/rooms/" + data.code;
      }

      const hostForm = document.getElementById("hostForm");
      hostForm.addEventListener("submit", (event) => {
        event.preventDefault();
        post("/api/rooms", { displayName: hostForm.elements.displayName.value.trim() },
          document.getElementById("hostResult"));
      });

      const joinForm = document.getElementById("joinForm");
      const prefill = new URLSearchParams(window.location.search).get("code");
      if (prefill) joinForm.elements.code.value = prefill;
      joinForm.addEventListener("submit", (event) => {
        event.preventDefault();
        const code = joinForm.elements.code.value.trim().toUpperCase();
        post("/api/rooms/" + encodeURIComponent(code) + "/join",
          { displayName: joinForm.elements.displayName.value.trim() },
          document.getElementById("joinResult"));
      });
    </script>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
