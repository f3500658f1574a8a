package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// maxUploadMemory bounds the multipart form kept in memory; larger files spill to disk.
const maxUploadMemory = 32 << 20

var errNoData = errors.New(`multipart form needs a "data" field holding the record as JSON`)

// bindRecord decodes dst from a JSON body, or from the "data" field of a
// multipart form whose file parts are returned as uploads. Callers must run
// the returned cleanup once the uploads have been forwarded.
func bindRecord(c *gin.Context, dst any) ([]repository.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := c.ShouldBindJSON(dst); err != nil {
			return nil, noop, err
		}
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fmt.Errorf("reading multipart form: %w", err)
	}
	data := form.Value["data"]
	if len(data) == 0 {
		return nil, noop, errNoData
	}
	if err := json.Unmarshal([]byte(data[0]), dst); err != nil {
		return nil, noop, err
	}

	var (
		uploads []repository.Upload
		closers []io.Closer
	)
	cleanup := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}
	for field, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				cleanup()
				return nil, noop, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
			}
			closers = append(closers, f)
			uploads = append(uploads, repository.Upload{
				Field:       field,
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Content:     f,
			})
		}
	}
	return uploads, cleanup, nil
}
