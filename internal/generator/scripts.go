package generator

// scriptsTemplate holds the initializer of every route so content swapped
// in by partial navigation can be re-bound without a full reload.
const scriptsTemplate = `{{define "scripts"}}<script>
      // Dashboard: checkboxes, select-all tri-state, search exclusivity,
      // tracked industry add/delete.
      initializers.dashboard = function(root) {
          const page = root.querySelector('#dashboard');
          if (!page) return null;
          const selectAll = page.querySelector('#select-all');
          const boxes = () => Array.from(page.querySelectorAll('input.industry-checkbox'));
          const search = page.querySelector('#search-input');

          function syncSelectAll() {
              const checked = boxes().filter(b => b.checked).length;
              selectAll.checked = checked > 0 && checked === boxes().length;
              selectAll.indeterminate = checked > 0 && checked < boxes().length;
          }

          function dashboardURL(industries, query) {
              const params = withUser(new URLSearchParams());
              if (query) params.set('search', query);
              else if (industries.length === 0) params.set('industries', '');
              else industries.forEach(i => params.append('industries', i));
              return '/dashboard?' + params.toString();
          }

          function go() {
              const selected = boxes().filter(b => b.checked).map(b => b.value);
              sessionStorage.setItem(SESSION.dashboardSearch, '');
              sessionStorage.setItem(SESSION.dashboardIndustries, JSON.stringify(selected));
              navigate(dashboardURL(selected, ''));
          }

          if (selectAll.dataset.state === 'indeterminate') selectAll.indeterminate = true;
          const onSelectAll = () => { boxes().forEach(b => { b.checked = selectAll.checked; }); go(); };
          selectAll.addEventListener('change', onSelectAll);
          boxes().forEach(b => b.addEventListener('change', () => { syncSelectAll(); go(); }));

          search.addEventListener('input', () => {
              boxes().forEach(b => { b.checked = false; });
              syncSelectAll();
          });
          page.querySelector('#search-form').addEventListener('submit', e => {
              e.preventDefault();
              const q = search.value.trim();
              sessionStorage.setItem(SESSION.dashboardSearch, q);
              sessionStorage.setItem(SESSION.dashboardIndustries, '[]');
              navigate(dashboardURL([], q));
          });

          page.querySelector('#add-industry-form').addEventListener('submit', async e => {
              e.preventDefault();
              const input = page.querySelector('#new-industry');
              const industry = input.value.trim();
              if (!industry) { notify('warning', 'Enter an industry name.'); return; }
              const addURL = '/add_industry?' + withUser(new URLSearchParams()).toString();
              let data = await postForm(addURL, { industry: industry }, 'Failed to add industry.');
              if (!data) return;
              if (data.code === 'duplicate') {
                  if (confirm('"' + industry + '" is already tracked as "' + data.existing + '". Show it?')) {
                      navigate(dashboardURL([data.existing], ''));
                      return;
                  }
                  if (!data.near || !confirm('Track "' + industry + '" as a separate industry anyway?')) return;
                  data = await postForm(addURL, { industry: industry, force: 'true' }, 'Failed to add industry.');
                  if (!data) return;
              }
              if (data.success) navigate(dashboardURL([industry], ''));
              else notify('danger', data.error || 'Failed to add industry.');
          });

          page.querySelectorAll('button.delete-industry').forEach(btn => btn.addEventListener('click', async () => {
              const industry = btn.dataset.industry;
              if (!confirm('Stop tracking "' + industry + '"?')) return;
              const data = await postForm('/delete_industry?' + withUser(new URLSearchParams()).toString(), { industry: industry }, 'Failed to delete industry.');
              if (!data) return;
              if (!data.success) { notify('danger', data.error || 'Failed to delete industry.'); return; }
              btn.closest('.industry-item').remove();
              syncSelectAll();
              go();
          }));

          fetch('/api/history?' + withUser(new URLSearchParams()).toString())
              .then(r => r.json())
              .then(rows => {
                  const list = page.querySelector('#search-history');
                  list.innerHTML = '';
                  rows.forEach(([query, at]) => {
                      const li = document.createElement('li');
                      const a = document.createElement('a');
                      a.href = dashboardURL([], query);
                      a.textContent = query;
                      a.setAttribute('data-nav', '');
                      li.appendChild(a);
                      li.appendChild(document.createTextNode(' ' + new Date(at).toLocaleString()));
                      list.appendChild(li);
                  });
                  bindNavLinks(list);
              })
              .catch(err => console.error('Failed to load history:', err));

          return () => selectAll.removeEventListener('change', onSelectAll);
      };

      // Companies: search, risk filter, session restore. Sorting is done
      // server-side through the header links.
      initializers.companies = function(root) {
          const page = root.querySelector('#companies');
          if (!page) return null;
          const form = page.querySelector('#companies-filter');
          const search = form.querySelector('[name=search]');
          const risk = form.querySelector('[name=risk]');
          const savedSearch = sessionStorage.getItem(SESSION.companiesSearch);
          const savedRisk = sessionStorage.getItem(SESSION.companiesRiskFilter);
          let restored = false;
          if (!search.value && !risk.value) {
              if (savedSearch) { search.value = savedSearch; restored = true; }
              if (savedRisk && Array.from(risk.options).some(o => o.value === savedRisk)) { risk.value = savedRisk; restored = true; }
          }
          form.addEventListener('submit', e => {
              e.preventDefault();
              sessionStorage.setItem(SESSION.companiesSearch, search.value.trim());
              sessionStorage.setItem(SESSION.companiesRiskFilter, risk.value);
              const params = withUser(new URLSearchParams());
              if (search.value.trim()) params.set('search', search.value.trim());
              if (risk.value) params.set('risk', risk.value);
              navigate('/companies?' + params.toString());
          });
          risk.addEventListener('change', () => form.requestSubmit());
          if (restored) form.requestSubmit();
          let timer = null;
          search.addEventListener('input', () => {
              clearTimeout(timer);
              timer = setTimeout(() => form.requestSubmit(), DEBOUNCE_MS);
          });
          return () => clearTimeout(timer);
      };

      // Company profiles: ratio bar chart, alert and report forms.
      initializers.company_profiles = function(root) {
          const page = root.querySelector('#company-profiles');
          if (!page) return null;
          const canvas = page.querySelector('#ratio-chart');
          if (canvas) drawBarChart(canvas, JSON.parse(canvas.dataset.chart));

          const alertForm = page.querySelector('#alert-form');
          if (alertForm) alertForm.addEventListener('submit', async e => {
              e.preventDefault();
              const f = new FormData(alertForm);
              const body = {
                  company_name: f.get('company_name'), metric: f.get('metric'), condition: f.get('condition'),
                  threshold: f.get('threshold'), notify_email: f.has('notify_email'), notify_sms: f.has('notify_sms'),
                  notify_dashboard: f.has('notify_dashboard'), email: f.get('email'), phone: f.get('phone'), username: USERNAME
              };
              const problem = validateAlert(body);
              if (problem) { notify('warning', problem); return; }
              const data = await postJSON('/api/set_alert', body, 'Failed to save alert.');
              if (data) notify(data.success ? 'info' : 'danger', data.message || data.error);
          });

          const reportForm = page.querySelector('#report-form');
          if (reportForm) reportForm.addEventListener('submit', async e => {
              e.preventDefault();
              const f = new FormData(reportForm);
              const problem = validateReport(f);
              if (problem) { notify('warning', problem); return; }
              const data = await request('/api/generate_report', { method: 'POST', body: f }, 'Report generation failed.');
              if (!data) return;
              if (!data.success) { notify('danger', data.error || 'Report generation failed.'); return; }
              notify('info', data.message);
              if (data.download_url) window.open(data.download_url, '_blank');
          });
          return null;
      };

      function drawBarChart(canvas, chart) {
          const ctx = canvas.getContext('2d');
          const w = canvas.width, h = canvas.height, pad = 30;
          const max = Math.max(1, ...chart.values.map(v => Math.abs(v)));
          const bw = (w - pad * 2) / chart.values.length;
          ctx.clearRect(0, 0, w, h);
          ctx.font = '12px Arial';
          chart.values.forEach((v, i) => {
              const bh = (Math.abs(v) / max) * (h - pad * 2);
              const x = pad + i * bw + bw * 0.15;
              ctx.fillStyle = chart.colors[i];
              ctx.fillRect(x, h - pad - bh, bw * 0.7, bh);
              ctx.fillStyle = '#e0e0e0';
              ctx.fillText(chart.labels[i], x, h - pad + 15);
              ctx.fillText(v.toFixed(2), x, h - pad - bh - 5);
          });
      }

      // Geo heat map: the server renders styles, markers and tooltips; the
      // page only draws them and reports user interaction.
      initializers.geoheatmap = function(root) {
          const page = root.querySelector('#geoheatmap');
          if (!page) return null;
          const map = L.map(page.querySelector('#map')).setView([39.8, -98.5], 4);
          L.tileLayer('https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png', {
              attribution: '&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>',
              subdomains: 'abcd', maxZoom: 20
          }).addTo(map);
          const tooltip = page.querySelector('.map-tooltip');
          let boundaries = null, countyLayer = null, markerLayer = L.layerGroup().addTo(map), programmatic = false;

          // Same placement as mapview.ClampTooltip.
          function clampTooltip(ev) {
              const box = map.getContainer().getBoundingClientRect();
              const tw = tooltip.offsetWidth, th = tooltip.offsetHeight;
              const relX = ev.clientX - box.left, relY = ev.clientY - box.top;
              let left = relX + tw + TOOLTIP_OFFSET > box.width ? relX - tw - TOOLTIP_OFFSET : relX + TOOLTIP_OFFSET;
              let top = relY + th + TOOLTIP_OFFSET > box.height ? relY - th - TOOLTIP_OFFSET : relY + TOOLTIP_OFFSET;
              left = Math.max(Math.min(left, box.width - tw), 0);
              top = Math.max(Math.min(top, box.height - th), 0);
              tooltip.style.left = left + 'px';
              tooltip.style.top = top + 'px';
          }

          function markMoved() {
              fetch('/api/map_layer?action=moved', { method: 'POST' }).catch(err => console.error('Failed to record map move:', err));
          }

          function hasBounds(b) {
              return Array.isArray(b) && (b[0][0] !== b[1][0] || b[0][1] !== b[1][1]);
          }

          function showTooltip(t, ev) {
              tooltip.innerHTML = '';
              const rows = [['County', t.county + ', ' + t.state], ['Revenue', t.revenue], ['PD', t.pd], ['FCR', t.fcr],
                            ['Current Ratio', t.cr], ['Risk', t.risk], ['Clients', t.clients]];
              rows.forEach(([k, v]) => {
                  const div = document.createElement('div');
                  div.textContent = k + ': ' + v;
                  tooltip.appendChild(div);
              });
              tooltip.style.display = 'block';
              clampTooltip(ev.originalEvent);
          }

          function draw(result) {
              if (countyLayer) map.removeLayer(countyLayer);
              markerLayer.clearLayers();
              const byIndex = {};
              result.layer.features.forEach(f => { byIndex[f.index] = f; });
              let i = 0;
              countyLayer = L.geoJSON(boundaries, {
                  style: () => { const f = byIndex[i]; return f ? f.style : {}; },
                  onEachFeature: (feature, layer) => {
                      const f = byIndex[i++];
                      if (!f) return;
                      layer.on('mouseover', ev => { layer.setStyle(f.hover); showTooltip(f.tooltip, ev); });
                      layer.on('mousemove', ev => clampTooltip(ev.originalEvent));
                      layer.on('mouseout', () => { layer.setStyle(f.style); tooltip.style.display = 'none'; });
                      layer.on('click', () => {
                          if (!hasBounds(f.bounds)) return;
                          markMoved();
                          map.fitBounds(f.bounds);
                      });
                  }
              }).addTo(map);
              result.layer.markers.forEach(m => {
                  L.circleMarker([m.position.lat, m.position.lng], { radius: 5, color: m.color, fillColor: m.color, fillOpacity: 0.9 })
                      .bindPopup(m.popup).addTo(markerLayer);
              });
              (result.notifications || []).forEach(n => notify(n.level, n.message));
              page.querySelector('#coverage').textContent = (result.coverage * 100).toFixed(1) + '% of counties with data' +
                  (result.simulated ? ' (simulated)' : '');
              if (result.view) {
                  programmatic = true;
                  map.setView([result.view.center.lat, result.view.center.lng], result.view.zoom);
              }
          }

          async function update(action, params) {
              const q = new URLSearchParams(params || {});
              q.set('action', action);
              showLoading();
              try {
                  const response = await fetch('/api/map_layer?' + q.toString());
                  if (!response.ok) throw new Error('HTTP ' + response.status);
                  draw(await response.json());
              } catch (error) {
                  console.error('Failed to update map:', error);
                  notify('danger', 'Failed to load map data.');
              } finally {
                  hideLoading();
              }
          }

          map.on('moveend', () => {
              if (programmatic) { programmatic = false; return; }
              markMoved();
          });

          const industry = page.querySelector('#map-industry');
          const metric = page.querySelector('#map-metric');
          const clientBoxes = Array.from(page.querySelectorAll('input.client-type'));
          industry.addEventListener('change', () => update('industry', { industry: industry.value }));
          metric.addEventListener('change', () => update('metric', { metric: metric.value }));
          clientBoxes.forEach(b => b.addEventListener('change', () => {
              const q = new URLSearchParams();
              clientBoxes.filter(c => c.checked).forEach(c => q.append('client_type', c.value));
              update('client_type', q);
          }));

          fetch('/api/boundaries')
              .then(r => r.json())
              .then(fc => { boundaries = fc; return update('init', { industry: industry.value, metric: metric.value }); })
              .catch(err => { console.error('Failed to load boundaries:', err); notify('danger', 'Failed to load map data.'); });

          return () => map.remove();
      };
   </script>{{end}}`
