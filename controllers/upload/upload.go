package uploadControllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FormField is the multipart field the file is read from.
const FormField = "file"

// multipartSlack leaves room for boundaries and part headers on top of the file ceiling.
const multipartSlack = 1 << 20

var ErrFileTooLarge = errors.New("file too large")

// FileDescriptor describes a stored upload.
type FileDescriptor struct {
	Fieldname    string `json:"fieldname"`
	Originalname string `json:"originalname"`
	Mimetype     string `json:"mimetype"`
	Destination  string `json:"destination"`
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// storedName keeps the original extension behind a millisecond timestamp and a random uuid.
func storedName(original string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), filepath.Ext(original))
}

// UploadFile stores one multipart file under dir. Failures answer 500 with the
// underlying error, unlike the {message}-only errors of the cart routes.
func UploadFile(dir, publicPrefix string, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		fail := func(err error) {
			log.Warn().Err(err).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed!", "error": err.Error()})
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartSlack)

		file, err := c.FormFile(FormField)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				err = ErrFileTooLarge
			}
			fail(err)
			return
		}
		if file.Size > maxBytes {
			fail(ErrFileTooLarge)
			return
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail(fmt.Errorf("create upload folder: %w", err))
			return
		}

		name := storedName(file.Filename, time.Now())
		savePath := filepath.Join(dir, name)
		if err := c.SaveUploadedFile(file, savePath); err != nil {
			fail(fmt.Errorf("save file: %w", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Upload successful!",
			"file": FileDescriptor{
				Fieldname:    FormField,
				Originalname: file.Filename,
				Mimetype:     file.Header.Get("Content-Type"),
				Destination:  dir,
				Filename:     name,
				Path:         savePath,
				Size:         file.Size,
				URL:          path.Join(publicPrefix, name),
			},
		})
	}
}
