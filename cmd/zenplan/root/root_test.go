package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CLISuite struct {
	suite.Suite
	dataDir string
}

func (s *CLISuite) SetupTest() {
	s.T().Setenv("HOME", s.T().TempDir())
	for _, key := range []string{"ZENPLAN_DATA_DIR", "ZENPLAN_LOG_LEVEL", "ZENPLAN_WORKER_PORT", "ZENPLAN_HEATMAP_WEEKS"} {
		s.T().Setenv(key, "")
	}
	s.dataDir = filepath.Join(s.T().TempDir(), "ZenPlan")
}

// run executes the CLI with a fixed clock and returns stdout.
func (s *CLISuite) run(stdin string, args ...string) (string, error) {
	cmd, a := newRootCmd("test")
	a.now = func() time.Time { return time.Date(2025, 10, 22, 9, 0, 0, 0, time.Local) }

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", s.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestNoteSetAndGet() {
	_, err := s.run("", "note", "set", "2025-10-22", "повторить логарифмы")
	s.Require().NoError(err)

	out, err := s.run("", "note", "get", "2025-10-22")
	s.Require().NoError(err)
	s.Equal("повторить логарифмы\n", out)

	data, err := os.ReadFile(filepath.Join(s.dataDir, "2025-10-22.md"))
	s.Require().NoError(err)
	s.Equal("повторить логарифмы", string(data))
}

func (s *CLISuite) TestNoteSetFromStdinDefaultsToToday() {
	_, err := s.run("line one\nline two\n", "note", "set")
	s.Require().NoError(err)

	out, err := s.run("", "note", "get")
	s.Require().NoError(err)
	s.Equal("line one\nline two\n", out)
}

func (s *CLISuite) TestRecordsAddListRemove() {
	out, err := s.run("", "records", "add", "-s", "Физика", "-t", "Тип 13", "--solved", "4", "--correct", "3")
	s.Require().NoError(err)
	s.Contains(out, "Добавлено")

	out, err = s.run("", "records", "list")
	s.Require().NoError(err)
	s.Contains(out, "Физика")
	s.Contains(out, "3/4")
	s.Contains(out, "75%")

	records, err := os.ReadFile(filepath.Join(s.dataDir, "2025-10-22.json"))
	s.Require().NoError(err)
	s.Contains(string(records), `"task_type": "Тип 13"`)

	_, err = s.run("", "records", "rm", "does-not-exist")
	s.Error(err)
}

func (s *CLISuite) TestRecordsAddRequiresSubject() {
	_, err := s.run("", "records", "add", "--solved", "1")
	s.Error(err)
}

func (s *CLISuite) TestRecordsAddRejectsZeroSolved() {
	_, err := s.run("", "records", "add", "-s", "Физика", "-t", "Тип 1")
	s.Error(err)
}

func (s *CLISuite) TestActivityAndHeatmap() {
	_, err := s.run("", "records", "add", "-d", "2025-10-21", "-s", "Физика", "-t", "Тип 1", "--solved", "7")
	s.Require().NoError(err)
	_, err = s.run("", "records", "add", "-s", "Физика", "-t", "Тип 1", "--solved", "2")
	s.Require().NoError(err)

	out, err := s.run("", "activity", "--sorted")
	s.Require().NoError(err)
	s.Less(strings.Index(out, "2025-10-21"), strings.Index(out, "2025-10-22"))

	out, err = s.run("", "heatmap", "--weeks", "2")
	s.Require().NoError(err)
	s.Contains(out, "2025-10-13")
	s.Contains(out, "2025-10-26")
	s.Contains(out, "Серия: 2")
}

func (s *CLISuite) TestStatsEmptyDay() {
	out, err := s.run("", "stats", "2025-01-01")
	s.Require().NoError(err)
	s.Contains(out, "Решено: 0")
}

func (s *CLISuite) TestStatsCorruptFile() {
	s.Require().NoError(os.MkdirAll(s.dataDir, 0o750))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dataDir, "2025-10-22.json"), []byte("{"), 0o644))

	_, err := s.run("", "stats")
	s.Error(err)
}

func (s *CLISuite) TestSubjects() {
	out, err := s.run("", "subjects")
	s.Require().NoError(err)
	s.Contains(out, "Информатика")
	s.Contains(out, "Тип 24")
}

func (s *CLISuite) TestMalformedSettingsFallBackToDefaults() {
	home := os.Getenv("HOME")
	s.Require().NoError(os.MkdirAll(filepath.Join(home, ".zenplan"), 0o750))
	s.Require().NoError(os.WriteFile(filepath.Join(home, ".zenplan", "settings.json"), []byte("{broken"), 0o600))

	_, err := s.run("", "note", "set", "2025-10-22", "ok")
	s.Require().NoError(err)
	_, err = os.Stat(filepath.Join(s.dataDir, "2025-10-22.md"))
	s.NoError(err)
}

func (s *CLISuite) TestStatusOffline() {
	out, err := s.run("", "status", "--port", "1")
	s.Require().NoError(err)
	s.Contains(out, "offline")
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		want  zerolog.Level
	}{
		{"", false, zerolog.InfoLevel},
		{"warn", false, zerolog.WarnLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level, tt.debug))
		})
	}
}

func TestAddFileLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "worker.log")
	var console bytes.Buffer

	closer, err := addFileLog(&console, path)
	require.NoError(t, err)
	defer closer.Close()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Info().Msg("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello file"`)
	assert.Contains(t, console.String(), "hello file")
}
