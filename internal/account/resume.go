package account

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

const maxResumeSize = 10 << 20

var resumeExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// UploadResume sends the file at path to the matching service, which
// re-indexes the talent for active matching.
func (s *Service) UploadResume(ctx context.Context, path string) (notice.Notice, error) {
	st, err := s.signedIn()
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := resumeExtensions[ext]; !ok {
		err := fmt.Errorf("unsupported resume type %q", ext)
		return notice.Notice{Title: notice.TitleError, Message: err.Error()}, err
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: err.Error()}, err
	}
	if info.Size() > maxResumeSize {
		err := fmt.Errorf("resume is larger than %d MB", maxResumeSize>>20)
		return notice.Notice{Title: notice.TitleError, Message: err.Error()}, err
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: err.Error()}, err
	}
	defer file.Close()

	if err := s.matching.UploadResume(ctx, st.TalentID(), filepath.Base(path), file); err != nil {
		s.logger.Warn("uploading resume failed", zap.String("file", path), zap.Error(err))
		return notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)}, err
	}

	return notice.New(notice.TitleSaved, "Resume %s uploaded.", filepath.Base(path)), nil
}
