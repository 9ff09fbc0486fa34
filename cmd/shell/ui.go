package shell

import (
	"github.com/caplayground/caplay/lib/platform"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// newUIHandler serves the files of assets. HTML documents get the platform
// attributes set on their root element, everything else is served as is.
func newUIHandler(assets fs.FS, info *platform.Info) http.Handler {
	files := http.FileServerFS(assets)
	attrs := info.Attributes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if path.Ext(name) != ".html" {
			files.ServeHTTP(w, r)
			return
		}

		f, err := assets.Open(name)
		if err != nil {
			// the file server answers with the matching status
			files.ServeHTTP(w, r)
			return
		}
		defer f.Close()

		doc, err := platform.InjectAttributes(f, attrs)
		if err != nil {
			Logger.Errorf("serving %s: %v", name, err)
			http.Error(w, "invalid document", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(doc)
	})
}
