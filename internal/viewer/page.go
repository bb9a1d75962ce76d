package viewer

import (
	"bytes"
	"html/template"
)

// compiledPage is parsed at init time to fail fast on template errors.
var compiledPage *template.Template

func init() {
	compiledPage = template.Must(template.New("page").Parse(pageTemplate))
}

// pageData holds data for the page template.
type pageData struct {
	Title     string
	Frame     template.HTML
	RefreshMS int
	Empty     bool
	DataURL   string
}

// renderPage returns the viewer HTML with frame inlined. The page polls
// /frame.svg every refreshMS milliseconds.
func renderPage(frame []byte, refreshMS int, empty bool, dataURL string) ([]byte, error) {
	data := pageData{
		Title:     "BizGraph",
		Frame:     template.HTML(frame),
		RefreshMS: refreshMS,
		Empty:     empty,
		DataURL:   dataURL,
	}
	var buf bytes.Buffer
	if err := compiledPage.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #fff;
    }
    #frame svg { display: block; }
    .link { fill: none; stroke-width: 1.5px; }
    .label { font-size: 11px; fill: #333; cursor: pointer; }
    .legend-text, .full-screen { font-size: 11px; fill: #333; }
    .empty-state {
      position: absolute;
      top: 1em;
      left: 50%;
      transform: translateX(-50%);
      color: #666;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  {{if .Empty}}
  <div class="empty-state" id="empty">
    {{if .DataURL}}<p>Waiting for data from <code>{{.DataURL}}</code></p>
    {{else}}<p>No data source configured. Set <code>data_url</code> or pass <code>--url</code>.</p>{{end}}
  </div>
  {{end}}
  <div id="frame">{{.Frame}}</div>
  <script>
    (function () {
      var frame = document.getElementById("frame");
      function refresh() {
        fetch("frame.svg", { cache: "no-store" })
          .then(function (r) { return r.ok ? r.text() : null; })
          .then(function (svg) {
            if (svg === null) { return; }
            frame.innerHTML = svg;
            var empty = document.getElementById("empty");
            if (empty && frame.querySelector("circle")) { empty.remove(); }
          })
          .catch(function () {});
      }
      setInterval(refresh, {{.RefreshMS}});
    })();
  </script>
</body>
</html>
`
