package web

// Dashboard: stats snapshot plus a live feed of processed trades.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Tradeshot</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      max-width:1100px;
      margin:0 auto;
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
    }
    header { display:flex; justify-content:space-between; align-items:center; gap:1rem; }
    h1 { font-size:1rem; text-transform:uppercase; letter-spacing:.2em; margin:0; }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
    }
    .stats-grid {
      display:grid;
      grid-template-columns:repeat(auto-fit, minmax(160px, 1fr));
      gap:1rem;
      margin:1.5rem 0;
    }
    .stat {
      border:2px solid var(--ink);
      background:#fff;
      padding:1rem;
    }
    .stat .label { font-size:.6rem; text-transform:uppercase; letter-spacing:.15em; color:var(--ink-mid); }
    .stat .value { margin-top:.5rem; font-size:1.4rem; font-weight:700; }
    .feed-title {
      font-size:.7rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      border-bottom:2px solid var(--ink);
      padding-bottom:.6rem;
      margin-top:2rem;
    }
    .trade-card {
      border:2px solid var(--ink);
      background:#fff;
      padding:1rem;
      margin-top:1rem;
      font-size:.75rem;
      display:flex;
      justify-content:space-between;
      gap:1rem;
      flex-wrap:wrap;
    }
    .trade-card .pnl-pos { color:#1b9aaa; font-weight:700; }
    .trade-card .pnl-neg { color:#d7263d; font-weight:700; }
    .empty-state {
      border:2px dashed var(--ink-mid);
      padding:2rem;
      text-align:center;
      font-size:.75rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
      margin-top:1rem;
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <h1>tradeshot dashboard</h1>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section class="stats-grid">
      <div class="stat"><div class="label">Total trades</div><div class="value" id="statTotal">0</div></div>
      <div class="stat"><div class="label">Win rate</div><div class="value" id="statWinRate">0%</div></div>
      <div class="stat"><div class="label">Total PnL</div><div class="value" id="statPnL">0</div></div>
      <div class="stat"><div class="label">Best trade</div><div class="value" id="statBest">0</div></div>
    </section>
    <div class="feed-title">Processed trades</div>
    <div id="feed"><div id="emptyState" class="empty-state">Waiting for trades…</div></div>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const feed = document.getElementById('feed');
const emptyState = document.getElementById('emptyState');
const MAX_CARDS = 50;

async function refreshStats(){
  try{
    const resp = await fetch('/trading-stats');
    const stats = await resp.json();
    document.getElementById('statTotal').textContent = stats.total_trades;
    document.getElementById('statWinRate').textContent = (stats.win_rate * 100).toFixed(1) + '%';
    document.getElementById('statPnL').textContent = stats.total_pnl.toFixed(2);
    document.getElementById('statBest').textContent = stats.best_trade.toFixed(2);
  }catch(err){
    console.error('stats fetch', err);
  }
}

function addTradeCard(trade){
  if(emptyState.parentNode){ emptyState.remove(); }
  const card = document.createElement('div');
  card.className = 'trade-card';
  const pnlClass = trade.pnl_amount >= 0 ? 'pnl-pos' : 'pnl-neg';
  card.innerHTML =
    '<span>' + (trade.ticker || '—') + ' / ' + (trade.direction || '—') + '</span>' +
    '<span class="' + pnlClass + '">' + trade.pnl_amount.toFixed(2) + '</span>' +
    '<span>' + (trade.image_source || '') + '</span>';
  feed.insertBefore(card, feed.firstChild);
  while(feed.children.length > MAX_CARDS){
    feed.removeChild(feed.lastChild);
  }
}

function connectSSE(){
  const source = new EventSource('/events/stream');
  statusEl.textContent = 'Status: live';
  source.addEventListener('trade', (event) => {
    try{
      addTradeCard(JSON.parse(event.data));
      refreshStats();
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

refreshStats();
connectSSE();
</script>
</body>
</html>`
