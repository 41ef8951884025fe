package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Room renders the in-game page. The session cookie set on create or join
// authorizes the websocket; the page holds no credentials itself.
func Room(page RoomPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Room ` + esc(page.Code) + ` | Query Quest</title>
    <style>` + baseStyles + `</style>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Room ` + esc(page.Code) + `</span>
        <h1 id="phase">Connecting...</h1>
        <p id="status" class="muted"></p>
      </header>

      <div class="grid">
        <div>
          <section class="panel">
            <div class="countdown" id="countdown"></div>
            <h2>Hints</h2>
            <ol class="hints" id="hints"></ol>
          </section>

          <section class="panel">
            <h2>Guess the location</h2>
            <form id="guessForm">
              <input name="text" placeholder="Your guess" autocomplete="off"/>
              <button type="submit" class="primary">Guess</button>
            </form>
            <div id="guessResult" class="result"></div>
          </section>

          <section class="panel">
            <h2>Query the catalog</h2>
            <p class="muted">Tables: game.states, game.animals, game.locations, game.location_animals. Queries used: <span id="queryCount">0</span></p>
            <form id="queryForm">
              <textarea name="text" placeholder="SELECT location_biome FROM game.locations"></textarea>
              <button type="submit" class="secondary">Run query</button>
            </form>
            <div id="queryError" class="result"></div>
            <div id="queryTable"></div>
          </section>

          <section class="panel" id="summaryPanel" hidden>
            <h2>Round summary</h2>
            <p>Answer: <strong id="answer"></strong></p>
            <ol id="summary"></ol>
          </section>
        </div>

        <aside>
          <section class="panel">
            <h2>Players</h2>
            <ul class="players" id="players"></ul>
            <div id="hostControls" hidden>
              <button id="startBtn" class="primary">Start game</button>
              <button id="nextBtn" class="primary">Next round</button>
              <button id="endBtn" class="secondary">End game</button>
            </div>
          </section>
          <section class="panel">
            <h2>Invite</h2>
            <img class="qr" src="/rooms/` + esc(page.Code) + `/qr" alt="Join QR code"/>
            <p class="muted">` + esc(page.JoinURL) + `</p>
          </section>
        </aside>
      </div>
    </main>

    <script>
      const roomCode = ` + jsString(page.Code) + `;
      const roundSeconds = ` + itoa(page.RoundSeconds) + `;
      const state = { players: [], phase: "lobby", isHost: false, countdown: 0, queryCount: 0 };
      let ticker = null;

      const el = (id) => document.getElementById(id);

      function render() {
        const labels = { "lobby": "Waiting in the lobby", "round-active": "Round in progress", "round-break": "Round over", "closed": "Game over" };
        el("phase").textContent = labels[state.phase] || state.phase;
        el("players").innerHTML = "";
        state.players.forEach((p) => {
          const li = document.createElement("li");
          li.textContent = p.displayName + (p.isHost ? " (host)" : "");
          if (p.status === "disconnected") li.className = "disconnected";
          el("players").appendChild(li);
        });
        el("hostControls").hidden = !state.isHost;
        el("startBtn").disabled = state.phase !== "lobby";
        el("nextBtn").disabled = state.phase !== "round-break";
        el("endBtn").disabled = state.phase !== "round-break";
        el("countdown").textContent = state.phase === "round-active" ? state.countdown + "s" : "";
        el("queryCount").textContent = state.queryCount;
      }

      function startCountdown(from) {
        state.countdown = from;
        if (ticker) clearInterval(ticker);
        ticker = setInterval(() => {
          if (state.countdown > 0) state.countdown--;
          render();
        }, 1000);
      }

      function addHint(hint) {
        const li = document.createElement("li");
        li.textContent = hint.name + ": " + hint.value;
        el("hints").appendChild(li);
      }

      function beginRound() {
        state.phase = "round-active";
        el("hints").innerHTML = "";
        el("summaryPanel").hidden = true;
        el("guessResult").textContent = "";
        state.queryCount = 0;
        startCountdown(roundSeconds);
      }

      function showSummary(data) {
        el("answer").textContent = data.correctAnswer;
        el("summary").innerHTML = "";
        (data.rankedSummary || []).forEach((entry) => {
          const li = document.createElement("li");
          li.textContent = entry.displayName + (entry.guessedCorrectly ? " found it" : " missed") + " with " + entry.queryCount + " queries";
          el("summary").appendChild(li);
        });
        el("summaryPanel").hidden = false;
      }

      function showRows(data) {
        el("queryError").textContent = data.error || "";
        const table = document.createElement("table");
        if (!data.error) {
          const head = document.createElement("tr");
          (data.columns || []).forEach((c) => {
            const th = document.createElement("th");
            th.textContent = c;
            head.appendChild(th);
          });
          table.appendChild(head);
          (data.rows || []).forEach((row) => {
            const tr = document.createElement("tr");
            row.forEach((v) => {
              const td = document.createElement("td");
              td.textContent = v;
              tr.appendChild(td);
            });
            table.appendChild(tr);
          });
        }
        el("queryTable").innerHTML = "";
        el("queryTable").appendChild(table);
      }

      const scheme = window.location.protocol === "https:" ? "wss://" : "ws://";
      const ws = new WebSocket(scheme + window.location.host + "/ws/rooms/" + encodeURIComponent(roomCode));
      const send = (event, data) => ws.send(JSON.stringify({ event, data }));

      ws.addEventListener("message", (message) => {
        const { event, data } = JSON.parse(message.data);
        switch (event) {
          case "join_snapshot":
            state.players = data.participants;
            state.phase = data.status;
            state.isHost = data.isHost;
            state.queryCount = data.myQueryCount;
            el("hints").innerHTML = "";
            data.revealedHints.forEach(addHint);
            if (data.status === "round-active") startCountdown(data.countdown);
            if (data.summary) showSummary(data.summary);
            break;
          case "user_joined":
            state.players.push({ displayName: data.displayName, status: "connected", isHost: false });
            break;
          case "user_reconnected":
            if (state.players[data.index]) state.players[data.index].status = "connected";
            break;
          case "user_disconnected":
            if (state.players[data.index]) state.players[data.index].status = "disconnected";
            break;
          case "start_game":
          case "begin_round":
            beginRound();
            break;
          case "hint":
            addHint(data);
            break;
          case "end_round":
            state.phase = "round-break";
            showSummary(data);
            break;
          case "end_game":
            state.phase = "closed";
            break;
          case "guess_result":
            el("guessResult").textContent = data.error || (data.correct ? "Correct!" : "Not quite.");
            break;
          case "query_result":
            if (data.error !== "input is empty" && data.error !== "input is too large") state.queryCount++;
            showRows(data);
            break;
        }
        render();
      });

      ws.addEventListener("close", () => {
        el("status").textContent = state.phase === "closed" ? "The host ended the game." : "Disconnected. Reload to rejoin.";
      });

      el("guessForm").addEventListener("submit", (e) => {
        e.preventDefault();
        send("guess", e.target.elements.text.value);
      });
      el("queryForm").addEventListener("submit", (e) => {
        e.preventDefault();
        send("query", e.target.elements.text.value);
      });
      el("startBtn").addEventListener("click", () => send("start_game"));
      el("nextBtn").addEventListener("click", () => send("next_round"));
      el("endBtn").addEventListener("click", () => send("end_game"));
    </script>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
