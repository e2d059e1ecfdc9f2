package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	orderingParam = "ordering"
	sortByParam   = "sortBy"
	sortTypeParam = "sortType"
	sniffLen      = 512
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=-views,title`, or the `?sortBy=views&sortType=desc` pair.
func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}

	if val := data.Get(orderingParam); val != "" {
		for _, field := range strings.Split(val, ",") {
			field = strings.TrimSpace(field)
			descending := strings.HasPrefix(field, "-")
			if descending {
				field = field[1:] // drop "-"
			}
			if field != "" {
				ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
			}
		}
		return
	}

	if field := strings.TrimSpace(data.Get(sortByParam)); field != "" {
		ascending := strings.EqualFold(strings.TrimSpace(data.Get(sortTypeParam)), "asc")
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: ascending})
	}
}

// bindPage reads `?page=&limit=`; invalid values fall back to the defaults.
func bindPage(ctx echo.Context) core.PageQuery {
	var pq core.PageQuery
	_ = echo.QueryParamsBinder(ctx).Int("page", &pq.Page).Int("limit", &pq.Limit).BindError()
	pq.Clean()
	return pq
}

// uploader spools multipart files to the temp dir before they are handed to the media host.
type uploader struct {
	tempDir string
}

func (s *Server) uploader() uploader {
	return uploader{tempDir: s.deps.Conf.Media.TempDir}
}

// spool writes the file sent in field to a temp file, after checking its content is of type rt.
// It returns nil when the field was not sent. Callers must release the upload with removeUploads.
func (u uploader) spool(ctx echo.Context, field string, rt core.ResourceType) (*core.Upload, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading form file")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening form file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer src.Close()

	contentType, err := sniff(src)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, string(rt)+"/") {
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "must be a valid " + string(rt) + " file"})
	}

	if err = os.MkdirAll(u.tempDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating temp directory")
	}
	dst, err := os.CreateTemp(u.tempDir, "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	n, err := io.Copy(dst, src)
	if cErr := dst.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, errors.Wrap(err, "writing temp file")
	}

	return &core.Upload{
		Path:        dst.Name(),
		Filename:    filepath.Base(fh.Filename),
		ContentType: contentType,
		Size:        n,
	}, nil
}

// sniff detects the content type of f and rewinds it.
func sniff(f multipart.File) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrap(err, "reading form file")
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewinding form file")
	}
	return http.DetectContentType(head[:n]), nil
}

// removeUploads deletes the temp files, whatever the outcome of the request.
func removeUploads(ups ...*core.Upload) {
	for _, up := range ups {
		if up != nil {
			_ = os.Remove(up.Path)
		}
	}
}
