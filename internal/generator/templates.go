package generator

const dashboardTemplate = `{{define "content"}}<div id="dashboard">
   <h1>Credit Risk Dashboard</h1>
   <div class="card">
      <form id="search-form">
         <input id="search-input" name="search" type="search" placeholder="Search companies" value="{{.State.Search}}"/>
         <button type="submit">Search</button>
      </form>
   </div>
   <div class="card" id="industry-filter">
      <label><input type="checkbox" id="select-all" data-state="{{.SelectAll}}" {{checked (eq (print .SelectAll) "checked")}}/> Select all industries</label>
      <div id="industry-list">
      {{range .Checkboxes}}
         <div class="industry-item">
            <label><input type="checkbox" class="industry-checkbox" value="{{.Name}}" {{checked .Checked}}/> {{.Name}}</label>
            {{if not .Default}}<button type="button" class="delete-industry" data-industry="{{.Name}}">×</button>{{end}}
         </div>
      {{end}}
      </div>
      <form id="add-industry-form">
         <input id="new-industry" name="industry" placeholder="Track an industry"/>
         <button type="submit">Add</button>
      </form>
   </div>
   {{if .Notifications}}
   <div class="card">
      <h3>Alerts</h3>
      <ul>{{range .Notifications}}<li>{{.Message}} <small>{{.CreatedAt.Format "Jan 2 15:04"}}</small></li>{{end}}</ul>
   </div>
   {{end}}
   <div class="card">
      <h3>Companies{{if .State.Search}} matching "{{.State.Search}}"{{end}}</h3>
      {{if .Companies}}
      <table>
         <tr><th>Company</th><th>Industry</th><th>Rating</th><th>PD</th><th>Risk</th></tr>
         {{range .Companies}}
         <tr class="{{riskClass .RiskLevel}}">
            <td><a href="{{profileURL .Company}}" data-nav>{{.Company}}</a></td>
            <td>{{.Industry}}</td><td>{{.CreditRating}}</td><td>{{percent .PD}}%</td><td>{{riskLabel .RiskLevel}}</td>
         </tr>
         {{end}}
      </table>
      {{else}}
      <p>No companies match the current filter.</p>
      {{end}}
   </div>
   <div class="card">
      <h3>Recent searches</h3>
      <ul id="search-history"></ul>
   </div>
</div>{{end}}`

const companiesTemplate = `{{define "content"}}<div id="companies">
   <h1>Companies</h1>
   <div class="card">
      <form id="companies-filter">
         <input name="search" type="search" placeholder="Search companies" value="{{.State.Search}}"/>
         <select name="risk">
            <option value="" {{selected (print .RiskFilter) ""}}>All risk levels</option>
            <option value="high" {{selected (print .RiskFilter) "high"}}>High</option>
            <option value="medium" {{selected (print .RiskFilter) "medium"}}>Medium</option>
            <option value="low" {{selected (print .RiskFilter) "low"}}>Low</option>
         </select>
         <button type="submit">Filter</button>
      </form>
   </div>
   <div class="card">
      <table id="risk-table">
         <thead><tr>{{range .Headers}}<th class="sort-{{.Indicator}}"><a href="{{.URL}}" data-nav>{{.Label}}{{arrow .Indicator}}</a></th>{{end}}</tr></thead>
         <tbody>
         {{range .Rows}}
            <tr data-id="{{.ID}}">{{range $i, $c := .Cells}}<td>{{if eq $i 0}}<a href="{{profileURL $c}}" data-nav>{{$c}}</a>{{else}}{{$c}}{{end}}</td>{{end}}</tr>
         {{else}}
            <tr><td colspan="9">No companies found.</td></tr>
         {{end}}
         </tbody>
      </table>
   </div>
</div>{{end}}`

const profilesTemplate = `{{define "content"}}<div id="company-profiles">
   <h1>Company Profiles</h1>
   <div class="card">
      {{range .Companies}}<a href="{{profileURL .Company}}" data-nav class="{{riskClass .RiskLevel}}">{{.Company}}</a> {{end}}
   </div>
   {{with .Selected}}
   <div class="card {{riskClass .RiskLevel}}">
      <h2>{{.Company}}</h2>
      <p>{{.Industry}} / {{.SubIndustry}}</p>
   </div>
   {{end}}
   {{if .Selected}}
   <div class="card">
      <table>{{range .Metrics}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>{{end}}</table>
   </div>
   <div class="card">
      <h3>Financial ratios</h3>
      <canvas id="ratio-chart" width="640" height="280" data-chart="{{toJSON .Chart}}"></canvas>
   </div>
   <div class="card">
      <h3>Risk narrative</h3>
      <ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>
   </div>
   <div class="card">
      <h3>Set an alert</h3>
      <form id="alert-form">
         <input type="hidden" name="company_name" value="{{.Selected.Company}}"/>
         <select name="metric">
            <option value="pd">PD</option><option value="lgd">LGD</option><option value="expected_loss">Expected Loss</option>
            <option value="current_ratio">Current Ratio</option><option value="roe">ROE</option>
            <option value="leverage_ratio">Leverage Ratio</option><option value="fcr">FCR</option>
         </select>
         <select name="condition"><option value="above">above</option><option value="below">below</option><option value="equals">equals</option></select>
         <input name="threshold" type="number" step="any" required/>
         <label><input type="checkbox" name="notify_dashboard" checked/> Dashboard</label>
         <label><input type="checkbox" name="notify_email"/> Email</label>
         <input name="email" type="email" placeholder="Email"/>
         <label><input type="checkbox" name="notify_sms"/> SMS</label>
         <input name="phone" type="tel" placeholder="Phone"/>
         <button type="submit">Save alert</button>
      </form>
   </div>
   <div class="card">
      <h3>Generate a report</h3>
      <form id="report-form">
         <input type="hidden" name="company_name" value="{{.Selected.Company}}"/>
         <select name="template"><option value="standard">Standard</option><option value="executive">Executive</option><option value="detailed">Detailed</option></select>
         <select name="format"><option value="html">HTML</option><option value="json">JSON</option><option value="csv">CSV</option></select>
         <select name="schedule"><option value="once">Once</option><option value="daily">Daily</option><option value="weekly">Weekly</option><option value="monthly">Monthly</option></select>
         <label><input type="checkbox" name="delivery_email"/> Email it</label>
         <input name="email" type="email" placeholder="Email"/>
         <button type="submit">Generate</button>
      </form>
   </div>
   {{else}}
   <p>Select a company to see its profile.</p>
   {{end}}
</div>{{end}}`

const geoheatmapTemplate = `{{define "content"}}<div id="geoheatmap">
   <h1>County Risk Map</h1>
   <div class="card">
      <label>Industry
         <select id="map-industry">
            <option value="" {{selected .Industry ""}}>All industries</option>
            {{$cur := .Industry}}{{range .Industries}}<option value="{{.}}" {{selected $cur .}}>{{.}}</option>{{end}}
         </select>
      </label>
      <label>Metric
         <select id="map-metric">
            <option value="pd" {{selected .Metric "pd"}}>Probability of Default</option>
            <option value="revenue" {{selected .Metric "revenue"}}>Revenue</option>
            <option value="fcr" {{selected .Metric "fcr"}}>Financial Coverage Ratio</option>
            <option value="cr" {{selected .Metric "cr"}}>Current Ratio</option>
         </select>
      </label>
      <label><input type="checkbox" class="client-type" value="current" {{checked (hasClient .ClientTypes "current")}}/> Current clients</label>
      <label><input type="checkbox" class="client-type" value="potential" {{checked (hasClient .ClientTypes "potential")}}/> Potential clients</label>
      <span id="coverage"></span>
   </div>
   <div style="position: relative;">
      <div id="map"></div>
      <div class="map-tooltip"></div>
   </div>
   <div class="map-legend">
      {{range .Legend}}<div class="legend-item"><div class="legend-color" style="background-color: {{.Color}}"></div>{{.Label}}</div>{{end}}
   </div>
</div>{{end}}`
