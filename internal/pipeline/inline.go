package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for image inlining.
var (
	ErrResourceNotFound = errors.New("image not found")
	ErrResourceRead     = errors.New("image not readable")
)

// imageError is one image that could not be inlined. It matches its kind
// sentinel and unwraps to the read error through a single chain, so each
// image stays one entry when warnings are split with multierr.Errors.
type imageError struct {
	path string
	kind error
	err  error
}

func (e *imageError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.kind, e.path, e.err)
}

func (e *imageError) Is(target error) bool { return target == e.kind }

func (e *imageError) Unwrap() error { return e.err }

// defaultMIME is used when neither the extension nor the content identify
// an image.
const defaultMIME = "application/octet-stream"

// imageMIMETypes maps lowercase extensions to their media type.
var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// AssetInliner replaces local <img> sources with base64 data URIs so the
// deck renders without filesystem access.
type AssetInliner struct {
	// SourceDir resolves relative paths. Empty means the working directory.
	SourceDir string
	// ReadFile loads image bytes. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
	Logger   *zap.Logger
}

// Inline rewrites every local img src of htmlContent into a data URI.
//
// Images that cannot be read keep their original src; each failure is logged
// and returned in warnings. The returned error is non-nil only when the
// content cannot be parsed or ctx is done.
func (a *AssetInliner) Inline(ctx context.Context, htmlContent string) (out string, warnings error, err error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", nil, fmt.Errorf("%w: parsing HTML for image inlining: %v", ErrHTMLConversion, err)
	}

	var images []*html.Node
	collectImages(doc, &images)
	if len(images) == 0 {
		return htmlContent, nil, nil
	}

	log := a.logger()
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return "", warnings, err
		}
		for i, attr := range img.Attr {
			if attr.Key != "src" || attr.Namespace != "" {
				continue
			}
			path, ok := resolveLocalPath(attr.Val, a.SourceDir)
			if !ok {
				continue
			}
			uri, loadErr := a.dataURI(path)
			if loadErr != nil {
				log.Warn("Unable to inline image",
					zap.String("src", attr.Val),
					zap.String("path", path),
					zap.Error(loadErr))
				warnings = multierr.Append(warnings, loadErr)
				continue
			}
			log.Debug("Inlined image", zap.String("src", attr.Val), zap.Int("bytes", len(uri)))
			img.Attr[i].Val = uri
		}
	}

	out, err = renderHTML(doc, isFragment)
	if err != nil {
		return "", warnings, fmt.Errorf("%w: rendering inlined HTML: %v", ErrHTMLConversion, err)
	}
	return out, warnings, nil
}

func (a *AssetInliner) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *AssetInliner) readFile(name string) ([]byte, error) {
	if a.ReadFile != nil {
		return a.ReadFile(name)
	}
	return os.ReadFile(name) // #nosec G304 -- image paths come from the author's own deck
}

// dataURI loads path and encodes it as a base64 data URI.
func (a *AssetInliner) dataURI(path string) (string, error) {
	data, err := a.readFile(path)
	if err != nil {
		kind := ErrResourceRead
		if errors.Is(err, fs.ErrNotExist) {
			kind = ErrResourceNotFound
		}
		return "", &imageError{path: path, kind: kind, err: err}
	}

	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(defaultMIME) + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(mimeTypeFor(path, data))
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String(), nil
}

// mimeTypeFor picks the media type from the extension. For unknown
// extensions the content is sniffed and only an image match is accepted.
func mimeTypeFor(path string, data []byte) string {
	if mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	if kind, err := filetype.Image(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return defaultMIME
}

// collectImages appends every <img> element under n in document order.
func collectImages(n *html.Node, images *[]*html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		*images = append(*images, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectImages(c, images)
	}
}
