package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// NewSchemeTransport serves the private scheme from fsys.
//
// app://assets/img.png maps to the file "assets/img.png"; a target naming a
// directory serves its index.html. Like the shell's static file server it cannot
// interpret queries: a request carrying one is answered with 400.
func NewSchemeTransport(fsys fs.FS) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return serveAsset(fsys, req), nil
	})
}

func serveAsset(fsys fs.FS, req *http.Request) *http.Response {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return newResponse(req, http.StatusMethodNotAllowed, "text/plain; charset=utf-8", []byte("method not allowed\n"))
	}
	if req.URL.RawQuery != "" || req.URL.ForceQuery {
		Logger.Warningf("query on %s target %s", Scheme, req.URL)
		return newResponse(req, http.StatusBadRequest, "text/plain; charset=utf-8", []byte("query strings are not supported\n"))
	}

	name := assetName(req.URL.Host, req.URL.Path)
	if info, err := fs.Stat(fsys, name); err == nil && info.IsDir() {
		name = path.Join(name, "index.html")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newResponse(req, http.StatusNotFound, "text/plain; charset=utf-8", []byte("not found\n"))
		}
		return newResponse(req, http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(fmt.Sprintf("%v\n", err)))
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	resp := newResponse(req, http.StatusOK, contentType, data)
	if req.Method == http.MethodHead {
		resp.Body = http.NoBody
	}
	return resp
}

// assetName turns host and path of a target into a fs.FS name
func assetName(host, p string) string {
	name := strings.TrimPrefix(path.Clean("/"+host+"/"+p), "/")
	if name == "" {
		return "index.html"
	}
	return name
}

func newResponse(req *http.Request, code int, contentType string, body []byte) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
