package server

import "html/template"

// indexData feeds the dashboard page template.
type indexData struct {
	Title   string
	Version string
}

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  :root { color-scheme: light dark; }
  body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0; background: #f6f8fa; color: #1f2328; }
  header { display: flex; align-items: baseline; gap: 12px; padding: 16px 24px; background: #24292f; color: #fff; }
  header h1 { font-size: 18px; margin: 0; }
  header .version { font-size: 12px; opacity: 0.7; }
  header .status { margin-left: auto; font-size: 12px; }
  main { padding: 24px; max-width: 1100px; margin: 0 auto; }
  .cards { display: flex; gap: 16px; margin-bottom: 24px; flex-wrap: wrap; }
  .card { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 12px 20px; min-width: 120px; }
  .card .num { font-size: 28px; font-weight: 600; }
  .card .label { font-size: 12px; color: #57606a; text-transform: uppercase; }
  .card.error .num { color: #cf222e; }
  .card.warning .num { color: #9a6700; }
  .card.info .num { color: #0969da; }
  table { width: 100%; border-collapse: collapse; background: #fff; border: 1px solid #d0d7de; border-radius: 6px; }
  th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #d8dee4; font-size: 13px; }
  th { background: #f6f8fa; font-weight: 600; }
  td.sev-error { color: #cf222e; font-weight: 600; }
  td.sev-warning { color: #9a6700; font-weight: 600; }
  td.sev-info { color: #0969da; }
  td.loc { font-family: ui-monospace, monospace; white-space: nowrap; }
  .empty { padding: 32px; text-align: center; color: #57606a; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <span class="version">{{.Version}}</span>
  <span class="status" id="status">connecting…</span>
</header>
<main>
  <div class="cards">
    <div class="card error"><div class="num" id="count-error">0</div><div class="label">errors</div></div>
    <div class="card warning"><div class="num" id="count-warning">0</div><div class="label">warnings</div></div>
    <div class="card info"><div class="num" id="count-info">0</div><div class="label">info</div></div>
    <div class="card"><div class="num" id="count-files">0</div><div class="label">files</div></div>
  </div>
  <div id="findings"></div>
</main>
<script>
(function () {
  var statusEl = document.getElementById('status');

  function esc(s) {
    var div = document.createElement('div');
    div.textContent = s == null ? '' : String(s);
    return div.innerHTML;
  }

  function render(rep) {
    if (!rep || !rep.findings) { return; }
    var by = rep.by_severity || {};
    document.getElementById('count-error').textContent = by.error || 0;
    document.getElementById('count-warning').textContent = by.warning || 0;
    document.getElementById('count-info').textContent = by.info || 0;
    document.getElementById('count-files').textContent = rep.files || 0;

    var holder = document.getElementById('findings');
    if (rep.findings.length === 0) {
      holder.innerHTML = '<div class="empty">No findings. The tree follows the styleguide.</div>';
      return;
    }

    var rows = rep.findings.map(function (f) {
      return '<tr>' +
        '<td class="loc">' + esc(f.file) + ':' + f.line + '</td>' +
        '<td class="sev-' + esc(f.severity) + '">' + esc(f.severity) + '</td>' +
        '<td>' + esc(f.rule) + '</td>' +
        '<td>' + esc(f.message) + '</td>' +
        '</tr>';
    }).join('');
    holder.innerHTML = '<table><thead><tr><th>Location</th><th>Severity</th>' +
      '<th>Rule</th><th>Message</th></tr></thead><tbody>' + rows + '</tbody></table>';
  }

  function fetchReport() {
    fetch('/api/report').then(function (res) { return res.json(); }).then(function (body) {
      if (body && body.findings) { render(body); }
    }).catch(function () {});
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/ws');
    ws.onopen = function () { statusEl.textContent = 'live'; fetchReport(); };
    ws.onmessage = function (event) {
      try {
        var msg = JSON.parse(event.data);
        if (msg.report) { render(msg.report); }
      } catch (e) {}
    };
    ws.onclose = function () {
      statusEl.textContent = 'reconnecting…';
      setTimeout(connect, 2000);
    };
  }

  fetchReport();
  connect();
})();
</script>
</body>
</html>
`
