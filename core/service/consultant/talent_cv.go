package consultant

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"talent_server/core/port/in"
	"talent_server/pkg/logger"
)

const cvPrefix = "consultant-cv"

// cvObjectName builds consultant-cv-<slot>-<timestamp>.<ext>. The extension
// comes from the original filename, or is sniffed from the content.
func cvObjectName(slot string, ts time.Time, cv *in.CVFile) string {
	millis := strconv.FormatInt(ts.UnixMilli(), 10)
	if slot == "" {
		slot = millis
	}
	return fmt.Sprintf("%s-%s-%s.%s", cvPrefix, slot, millis, cvExtension(cv))
}

func cvExtension(cv *in.CVFile) string {
	if ext := strings.TrimPrefix(filepath.Ext(cv.Filename), "."); ext != "" {
		return ext
	}
	if ext := strings.TrimPrefix(mimetype.Detect(cv.Data).Extension(), "."); ext != "" {
		return ext
	}
	return "bin"
}

func cvContentType(cv *in.CVFile) string {
	if cv.ContentType != "" && cv.ContentType != "application/octet-stream" {
		return cv.ContentType
	}
	return mimetype.Detect(cv.Data).String()
}

// uploadCV stores the file and returns its public URL, or nil when there is
// no file or the upload failed. Failures never abort the write.
func (s *Service) uploadCV(ctx context.Context, slot string, cv *in.CVFile) *string {
	if cv == nil || len(cv.Data) == 0 || s.storage == nil {
		return nil
	}

	name := cvObjectName(slot, s.now(), cv)
	url, err := s.storage.Upload(ctx, name, cv.Data, cvContentType(cv))
	if err != nil {
		logger.WithContext(ctx).
			WithError(err).
			WithField("object", name).
			Warn("cv upload failed, keeping previous cv_file_url")
		return nil
	}
	return &url
}
