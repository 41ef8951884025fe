package web

const baseStyles = `
:root { --ink: #1d2433; --muted: #6b7385; --accent: #2f6fed; --bg: #f4f1ea; --panel: #ffffff; }
* { box-sizing: border-box; }
body { margin: 0; font-family: "Inter", system-ui, sans-serif; background: var(--bg); color: var(--ink); }
.shell { max-width: 960px; margin: 0 auto; padding: 32px 20px 64px; display: grid; gap: 20px; }
.hero h1 { margin: 8px 0; font-size: 2rem; }
.hero p { color: var(--muted); margin: 0; }
.tag { text-transform: uppercase; letter-spacing: 0.12em; font-size: 0.75rem; color: var(--accent); font-weight: 700; }
.panel { background: var(--panel); border-radius: 14px; padding: 20px; box-shadow: 0 6px 24px rgba(29, 36, 51, 0.08); }
.panel h2 { margin-top: 0; font-size: 1.1rem; }
form { display: flex; gap: 10px; flex-wrap: wrap; }
input, textarea { font: inherit; padding: 10px 12px; border-radius: 10px; border: 1px solid #d5d8e0; flex: 1 1 180px; }
textarea { width: 100%; min-height: 96px; font-family: "JetBrains Mono", ui-monospace, monospace; }
button { font: inherit; padding: 10px 16px; border-radius: 10px; border: none; cursor: pointer; font-weight: 600; }
button.primary { background: var(--accent); color: #fff; }
button.secondary { background: #e7ebf5; color: var(--ink); }
button:disabled { opacity: 0.5; cursor: default; }
.muted { color: var(--muted); }
.flash { background: #fff4d6; padding: 10px 14px; border-radius: 10px; }
.result { margin-top: 10px; color: #b3261e; min-height: 1.2em; }
.rooms { list-style: none; padding: 0; margin: 0; display: grid; gap: 8px; }
.rooms li { display: flex; gap: 12px; align-items: baseline; }
.grid { display: grid; grid-template-columns: 2fr 1fr; gap: 20px; }
.players { list-style: none; padding: 0; margin: 0; display: grid; gap: 6px; }
.players li.disconnected { color: var(--muted); }
.hints { padding-left: 18px; }
table { border-collapse: collapse; width: 100%; font-size: 0.9rem; }
th, td { border-bottom: 1px solid #e3e5eb; padding: 6px 8px; text-align: left; }
.countdown { font-size: 2.4rem; font-weight: 700; }
.qr { width: 160px; height: 160px; }
@media (max-width: 720px) { .grid { grid-template-columns: 1fr; } }
`
