package viewer

import (
	"html/template"
	"net/http"
)

// handleIndex serves the single-page map UI. Interaction is an explicit
// event chain: marker click -> fetch parameters -> parameter change ->
// fetch series -> update chart and download link.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]any{
		"Title":        "NWIS Data Visualizer",
		"StationCount": s.table.Len(),
	}); err != nil {
		s.logger.Error("index render failed", "error", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  body { font-family: sans-serif; margin: 0; display: flex; height: 100vh; }
  #map { flex: 2; }
  #panel { flex: 1; padding: 1em; overflow-y: auto; border-left: 1px solid #ccc; }
  #chart { max-width: 100%; }
  select { width: 100%; margin-bottom: 0.5em; }
  .empty { color: #666; font-style: italic; }
  a.ref { font-size: 0.85em; }
</style>
</head>
<body>
<div id="map"></div>
<div id="panel">
  <h2>{{.Title}}</h2>
  <p>{{.StationCount}} stations in the table. Click a marker to view its data.</p>
  <p><a class="ref" href="https://help.waterdata.usgs.gov/codes-and-parameters/parameters">USGS Parameter Codes Reference</a></p>
  <label><input type="radio" name="kind" value="dv" checked> Daily Values (dv)</label>
  <label><input type="radio" name="kind" value="ir"> Instantaneous Values (ir)</label>
  <div id="station"></div>
  <div id="series"></div>
</div>
<script>
const map = L.map('map').setView([39.8, -98.6], 4);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

let markers = L.layerGroup().addTo(map);
let selected = null;

function kind() {
  return document.querySelector('input[name="kind"]:checked').value;
}

async function loadStations() {
  markers.clearLayers();
  const resp = await fetch('/api/stations?kind=' + kind());
  const fc = await resp.json();
  const layer = L.geoJSON(fc, {
    onEachFeature: (f, l) => l.on('click', () => selectStation(f.properties.site_no, f.properties.station_nm))
  });
  layer.addTo(markers);
  if (fc.features.length > 0) {
    map.fitBounds(layer.getBounds().pad(0.2));
  }
}

async function selectStation(site, name) {
  selected = site;
  const resp = await fetch('/api/stations/' + site + '/parameters?kind=' + kind());
  if (!resp.ok) { return; }
  const data = await resp.json();
  const div = document.getElementById('station');
  if (data.parameters.length === 0) {
    div.innerHTML = '<h3>' + name + '</h3><p class="empty">No data available for this station.</p>';
    document.getElementById('series').innerHTML = '';
    return;
  }
  let options = data.parameters.map(p => '<option value="' + p.code + '">' + p.label + '</option>').join('');
  div.innerHTML = '<h3>' + name + ' (' + site + ')</h3>' +
    '<select id="parameter">' + options + '</select>';
  document.getElementById('parameter').addEventListener('change', loadSeries);
  loadSeries();
}

async function loadSeries() {
  const parameter = document.getElementById('parameter').value;
  const column = document.getElementById('column') ? document.getElementById('column').value : '';
  const qs = '?kind=' + kind() + '&parameter=' + parameter + (column ? '&column=' + encodeURIComponent(column) : '');
  const resp = await fetch('/api/stations/' + selected + '/series' + qs);
  if (!resp.ok) { return; }
  const data = await resp.json();
  const div = document.getElementById('series');
  if (data.points.length === 0) {
    div.innerHTML = '<p class="empty">No data available for this parameter.</p>';
    return;
  }
  let columnSelect = '';
  if (data.columns.length > 1) {
    columnSelect = '<select id="column">' + data.columns.map(c =>
      '<option' + (c === data.column ? ' selected' : '') + '>' + c + '</option>').join('') + '</select>';
  }
  div.innerHTML = '<h4>' + data.label + '</h4>' + columnSelect +
    '<img id="chart" src="/api/stations/' + selected + '/chart.png' + qs + '">' +
    '<p><a href="/api/stations/' + selected + '/download' + qs + '">Download data as CSV</a></p>';
  const col = document.getElementById('column');
  if (col) { col.addEventListener('change', loadSeries); }
}

document.querySelectorAll('input[name="kind"]').forEach(el =>
  el.addEventListener('change', () => { document.getElementById('station').innerHTML = ''; document.getElementById('series').innerHTML = ''; loadStations(); }));

loadStations();
</script>
</body>
</html>
`))
