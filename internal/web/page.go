// Package web renders the QuakeWatch map page. The page is a single HTML
// document: a Leaflet map surface fed by the JSON API, a threshold slider,
// a legend and the load/error indicators. Marker colors and the legend are
// injected from the Go marker package so the page can never disagree with
// the API about styling.
package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/quakewatch/quakewatch/internal/marker"
	"github.com/quakewatch/quakewatch/internal/quake"
)

// PageData carries everything the map page template needs.
type PageData struct {
	// TileURL is the tile template URL for the base map layer.
	TileURL string

	// TileAttribution is shown alongside the map, as the tile provider requires.
	TileAttribution template.HTML

	// RefreshIntervalMs is how often the page re-polls the events API.
	RefreshIntervalMs int64

	// Bands is the legend table from the marker package.
	Bands []marker.Band

	// BandsJSON is the same table for the page script.
	BandsJSON template.JS

	// Threshold slider bounds.
	ThresholdMin  float64
	ThresholdMax  float64
	ThresholdStep float64
}

// NewPageData builds template data from config values and the marker bands.
func NewPageData(tileURL, tileAttribution string, refreshIntervalMs int64) (PageData, error) {
	bands := marker.Bands()
	raw, err := json.Marshal(bands)
	if err != nil {
		return PageData{}, fmt.Errorf("encoding legend bands: %w", err)
	}

	return PageData{
		TileURL:           tileURL,
		TileAttribution:   template.HTML(tileAttribution), //nolint:gosec // operator-provided attribution markup
		RefreshIntervalMs: refreshIntervalMs,
		Bands:             bands,
		BandsJSON:         template.JS(raw), //nolint:gosec // marshaled from our own struct
		ThresholdMin:      quake.MinThreshold,
		ThresholdMax:      quake.MaxThreshold,
		ThresholdStep:     0.1,
	}, nil
}

var pageTemplate = template.Must(template.New("map").Parse(pageHTML))

// RenderPage writes the map page to w.
func RenderPage(w io.Writer, data PageData) error {
	return pageTemplate.Execute(w, data)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>QuakeWatch &mdash; Recent Earthquakes</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; }
    #map { position: absolute; inset: 0; }
    #panel {
      position: absolute; top: 10px; right: 10px; z-index: 1000;
      background: rgba(255, 255, 255, 0.95); border-radius: 6px;
      box-shadow: 0 1px 4px rgba(0, 0, 0, 0.3); padding: 12px 14px;
      width: 230px; font-size: 13px;
    }
    #panel h1 { margin: 0 0 8px; font-size: 15px; }
    #threshold { width: 100%; }
    .legend-row { display: flex; align-items: center; gap: 6px; margin-top: 3px; }
    .swatch { width: 12px; height: 12px; border-radius: 50%; display: inline-block; }
    #status { margin-top: 8px; color: #555; }
    #error-banner {
      display: none; margin-top: 8px; padding: 8px;
      background: #fdecea; color: #8c1d18; border-radius: 4px;
    }
    #retry { margin-top: 6px; }
  </style>
</head>
<body>
  <div id="map" tabindex="0" aria-label="Earthquake map"></div>
  <div id="panel">
    <h1>Recent earthquakes</h1>
    <label for="threshold">Minimum magnitude: <span id="threshold-value">0.0</span></label>
    <input type="range" id="threshold"
           min="{{.ThresholdMin}}" max="{{.ThresholdMax}}" step="{{.ThresholdStep}}" value="0">
    <div id="legend">
      {{- range .Bands}}
      <div class="legend-row"><span class="swatch" style="background: {{.Color}}"></span>{{.Label}}</div>
      {{- end}}
    </div>
    <div id="status">Loading&hellip;</div>
    <div id="error-banner" role="alert">
      <span id="error-message"></span>
      <button id="retry" type="button">Retry</button>
    </div>
  </div>
  <script>
    var refreshIntervalMs = {{.RefreshIntervalMs}};
    var bands = {{.BandsJSON}};

    var map = L.map('map', { worldCopyJump: true, keyboard: true }).setView([20, 0], 2);
    L.tileLayer({{.TileURL}}, {
      attribution: {{.TileAttribution}},
      noWrap: false
    }).addTo(map);

    var markerLayer = L.layerGroup().addTo(map);
    var events = [];
    var threshold = 0;

    var slider = document.getElementById('threshold');
    var sliderValue = document.getElementById('threshold-value');
    var status = document.getElementById('status');
    var errorBanner = document.getElementById('error-banner');
    var errorMessage = document.getElementById('error-message');

    function magnitudeOf(ev) {
      return ev.magnitude === null ? -Infinity : ev.magnitude;
    }

    function renderMarkers() {
      markerLayer.clearLayers();
      var shown = 0;
      events.forEach(function (ev) {
        if (magnitudeOf(ev) < threshold) { return; }
        shown++;
        var magText = ev.magnitude === null ? 'unknown' : ev.magnitude.toFixed(1);
        var m = L.circleMarker([ev.latitude, ev.longitude], {
          radius: ev.radius,
          color: ev.color,
          fillColor: ev.color,
          fillOpacity: 0.7,
          weight: 1
        });
        m.bindTooltip('M ' + magText + ' — ' + (ev.place || 'unknown location'));
        m.bindPopup(
          '<strong>Magnitude ' + magText + '</strong><br>' +
          (ev.place || 'unknown location') + '<br>' +
          (ev.depthKm != null ? 'Depth: ' + ev.depthKm.toFixed(1) + ' km<br>' : '') +
          new Date(ev.time).toLocaleString() + '<br>' +
          '<a href="' + ev.detailUrl + '" target="_blank" rel="noopener">Details</a>'
        );
        m.addTo(markerLayer);
      });
      return shown;
    }

    function renderStatus(lastUpdated) {
      var shown = renderMarkers();
      var text = shown + ' of ' + events.length + ' events';
      if (lastUpdated) {
        text += ' · updated ' + new Date(lastUpdated).toLocaleTimeString();
      }
      status.textContent = text;
    }

    var lastUpdated = null;

    function loadEvents() {
      status.textContent = 'Loading…';
      fetch('/v1/earthquakes')
        .then(function (resp) {
          if (!resp.ok) { throw new Error('feed returned status ' + resp.status); }
          return resp.json();
        })
        .then(function (payload) {
          events = payload.events;
          lastUpdated = payload.generatedAt;
          errorBanner.style.display = 'none';
          renderStatus(lastUpdated);
        })
        .catch(function (err) {
          // Stale markers stay on the map; only the banner changes.
          errorMessage.textContent = err.message;
          errorBanner.style.display = 'block';
          renderStatus(lastUpdated);
        });
    }

    slider.addEventListener('input', function () {
      threshold = parseFloat(slider.value);
      sliderValue.textContent = threshold.toFixed(1);
      renderStatus(lastUpdated);
      // Keep the server-side threshold in sync; no event re-fetch.
      fetch('/v1/threshold', {
        method: 'PUT',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ threshold: threshold })
      }).catch(function () {});
    });

    document.getElementById('retry').addEventListener('click', function () {
      errorBanner.style.display = 'none';
      fetch('/v1/refresh', { method: 'POST' }).finally(function () {
        setTimeout(loadEvents, 1000);
      });
    });

    fetch('/v1/status')
      .then(function (resp) { return resp.json(); })
      .then(function (s) {
        threshold = s.threshold;
        slider.value = threshold;
        sliderValue.textContent = threshold.toFixed(1);
      })
      .catch(function () {})
      .finally(loadEvents);

    setInterval(loadEvents, refreshIntervalMs);
  </script>
</body>
</html>
`
