package generator

// layoutTemplate wraps a page's "content" block. The script installs the
// partial-navigation router: links marked data-nav are fetched with
// ajax=true, swapped into the route container and re-initialized.
const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1"/>
   <title>Credit Risk Dashboard</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      :root {
         --bg-color: #121212;
         --text-color: #e0e0e0;
         --card-bg: #1e1e1e;
         --card-border: #333;
         --header-bg: #2d2d45;
         --header-border: #444466;
         --high-bg: #3d1a1a;
         --high-border: #dc3545;
         --medium-bg: #3d2e1a;
         --medium-border: #ffc107;
         --low-bg: #1a3d22;
         --low-border: #28a745;
         --tab-active-bg: #3d3d5c;
      }
      body {
         font-family: Arial, sans-serif;
         max-width: 1200px;
         margin: 0 auto;
         padding: 20px;
         background-color: var(--bg-color);
         color: var(--text-color);
         animation: fadeIn 0.3s ease-in;
      }
      @keyframes fadeIn { from { opacity: 0; } to { opacity: 1; } }
      html { background-color: #121212; }
      a { color: #add8e6; }
      nav { display: flex; gap: 10px; padding: 10px; background: var(--header-bg); border: 1px solid var(--header-border); border-radius: 5px; }
      nav a { padding: 6px 12px; border-radius: 4px; text-decoration: none; }
      nav a.active { background: var(--tab-active-bg); }
      .card { background: var(--card-bg); border: 1px solid var(--card-border); border-radius: 5px; padding: 12px; margin: 12px 0; }
      .risk-high { background: var(--high-bg); border-color: var(--high-border); }
      .risk-medium { background: var(--medium-bg); border-color: var(--medium-border); }
      .risk-low { background: var(--low-bg); border-color: var(--low-border); }
      table { border-collapse: collapse; width: 100%; }
      th, td { padding: 6px 8px; border-bottom: 1px solid var(--card-border); text-align: left; }
      th a { text-decoration: none; }
      input, select, button { background: #252525; color: var(--text-color); border: 1px solid var(--card-border); border-radius: 4px; padding: 5px 8px; }
      button { cursor: pointer; }
      .banner { padding: 10px; border-radius: 5px; margin: 10px 0; display: flex; justify-content: space-between; }
      .banner.info { background: #1a2d3d; }
      .banner.warning { background: var(--medium-bg); }
      .banner.danger { background: var(--high-bg); }
      #loading { display: none; position: fixed; inset: 0; background: rgba(0,0,0,0.5); z-index: 2000; align-items: center; justify-content: center; font-size: 1.4em; }
      #loading.show { display: flex; }
      #map { height: 600px; width: 100%; border: 2px solid var(--card-border); border-radius: 5px; }
      .map-legend { display: flex; gap: 15px; margin-top: 10px; }
      .legend-item { display: flex; align-items: center; }
      .legend-color { width: 30px; height: 20px; margin-right: 8px; border: 1px solid #fff; }
      .map-tooltip { position: absolute; display: none; pointer-events: none; background: var(--card-bg); border: 1px solid var(--card-border); border-radius: 5px; padding: 8px; z-index: 1000; width: 240px; }
   </style>
</head>
<body>
   <nav id="main-nav">
      {{$active := .Active}}{{$user := .Username}}
      {{range .Routes}}<a href="{{.Path}}{{if $user}}?username={{$user}}{{end}}" data-nav class="{{if eq .Path $active}}active{{end}}">{{.Title}}</a>{{end}}
   </nav>
   <div id="notifications"></div>
   <div id="loading">Loading...</div>
   <div id="main-content">{{template "content" .}}</div>
   <script>
      const ROUTES = {{toJSON .Routes}};
      const USERNAME = {{.Username}};
      const DEBOUNCE_MS = {{.DebounceMS}};
      const NOTIFY_MS = {{.NotifyMS}};
      const TOOLTIP_OFFSET = {{.TooltipOffset}};
      const SESSION = {{toJSON .Session}};
      const RULES = {{toJSON .Rules}};
      const initializers = {};
      let detach = null;

      function showLoading() { document.getElementById('loading').classList.add('show'); }
      function hideLoading() { document.getElementById('loading').classList.remove('show'); }

      function notify(level, message) {
          const box = document.getElementById('notifications');
          const div = document.createElement('div');
          div.className = 'banner ' + level;
          const text = document.createElement('span');
          text.textContent = message;
          const close = document.createElement('button');
          close.textContent = '×';
          close.addEventListener('click', () => div.remove());
          div.appendChild(text);
          div.appendChild(close);
          box.appendChild(div);
          setTimeout(() => div.remove(), NOTIFY_MS);
      }

      function routeFor(path) {
          const p = path.replace(/\/$/, '');
          return ROUTES.find(r => r.path === p) || null;
      }

      function initCurrent() {
          if (detach) { try { detach(); } catch (e) { console.error(e); } detach = null; }
          const route = routeFor(window.location.pathname);
          const init = route && initializers[route.init];
          if (init) detach = init(document.querySelector(route.container)) || null;
          bindNavLinks(document);
      }

      async function navigate(target, push = true) {
          const url = new URL(target, window.location.origin);
          const route = routeFor(url.pathname);
          if (!route) { window.location.href = url.toString(); return; }
          const fetchURL = new URL(url.toString());
          fetchURL.searchParams.set('ajax', 'true');
          showLoading();
          try {
              const response = await fetch(fetchURL.toString());
              if (!response.ok) throw new Error('HTTP ' + response.status);
              document.querySelector(route.container).innerHTML = await response.text();
              if (push) history.pushState({ url: url.toString() }, '', url.toString());
              document.querySelectorAll('#main-nav a').forEach(a => {
                  a.classList.toggle('active', new URL(a.href).pathname === url.pathname);
              });
              document.title = route.title + ' - Credit Risk Dashboard';
              initCurrent();
          } catch (error) {
              console.error('Failed to load page:', error);
              notify('danger', 'Failed to load page. Please try again.');
          } finally {
              hideLoading();
          }
      }

      function bindNavLinks(root) {
          root.querySelectorAll('a[data-nav]').forEach(a => {
              if (a.dataset.bound) return;
              a.dataset.bound = '1';
              a.addEventListener('click', e => {
                  if (e.metaKey || e.ctrlKey) return;
                  e.preventDefault();
                  navigate(a.href);
              });
          });
      }

      window.addEventListener('popstate', () => navigate(window.location.href, false));

      function withUser(params) {
          if (USERNAME) params.set('username', USERNAME);
          return params;
      }

      // request fetches url with the loading overlay up and resolves to the
      // decoded JSON body, or null after reporting failure as a banner.
      async function request(url, options, failure) {
          showLoading();
          try {
              const response = await fetch(url, options);
              let data = null;
              try { data = await response.json(); } catch (e) { data = null; }
              if (!data) throw new Error('HTTP ' + response.status);
              return data;
          } catch (error) {
              console.error(failure, error);
              notify('danger', failure);
              return null;
          } finally {
              hideLoading();
          }
      }

      function postJSON(url, body, failure) {
          return request(url, { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body) }, failure);
      }

      function postForm(url, fields, failure) {
          return request(url, { method: 'POST', body: new URLSearchParams(fields) }, failure);
      }

      // validateAlert and validateReport return the first problem the server
      // would reject the form for, or ''.
      function validateAlert(a) {
          if (!String(a.company_name || '').trim()) return 'Select a company first.';
          if (!RULES.metrics.includes(String(a.metric).toLowerCase())) return 'Metric must be one of ' + RULES.metrics.join(', ') + '.';
          if (!RULES.conditions.includes(String(a.condition).toLowerCase())) return 'Condition must be above, below or equals.';
          const t = String(a.threshold == null ? '' : a.threshold).trim();
          if (t === '') return 'Threshold is required.';
          if (!isFinite(Number(t))) return 'Threshold must be a number.';
          if (!a.notify_email && !a.notify_sms && !a.notify_dashboard) return 'Select at least one notification method.';
          if (a.notify_email && !String(a.email || '').trim()) return 'Email is required for email notifications.';
          if (a.notify_sms && !String(a.phone || '').trim()) return 'Phone is required for SMS notifications.';
          return '';
      }

      function validateReport(f) {
          const get = k => String(f.get(k) || '').trim().toLowerCase();
          if (!get('company_name')) return 'Select a company first.';
          if (get('template') && !RULES.templates.includes(get('template'))) return 'Unknown report template.';
          if (get('format') && !RULES.formats.includes(get('format'))) return 'Unsupported report format.';
          if (get('schedule') && !RULES.schedules.includes(get('schedule'))) return 'Unknown report schedule.';
          if (f.has('delivery_email') && !get('email')) return 'Email is required for email delivery.';
          return '';
      }
   </script>
   {{template "scripts" .}}
   <script>
      document.addEventListener('DOMContentLoaded', initCurrent);
   </script>
</body>
</html>{{end}}`
