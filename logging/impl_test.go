package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. It checks the time format but ignores the exact
// time, and expects a match on the filename while ignoring the line number.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Length of the timestamp is a weak check that it looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Level and logger name.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"impl", NewAtomicLevelAt(DEBUG), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:60	impl Info log`)

	logger.Debugf("impl %s log", "Debugf")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	DEBUG	impl	logging/impl_test.go:64	impl Debugf log`)

	logger.Warnw("impl Warnw log", "device", "0xA0", "size", 4)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	WARN	impl	logging/impl_test.go:68	impl Warnw log	{"device":"0xA0","size":4}`)
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"impl", NewAtomicLevelAt(INFO), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Debug("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")

	logger.SetLevel(ERROR)
	logger.Warn("dropped too")
	test.That(t, notStdout.String(), test.ShouldNotContainSubstring, "dropped")
	test.That(t, WARN.String(), test.ShouldEqual, "Warn")
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("smbus").Sublogger("fake")
	sub.Infow("read", "offset", 16)

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "smbus.fake")
	test.That(t, entries[0].Message, test.ShouldEqual, "read")
	test.That(t, entries[0].ContextMap()["offset"], test.ShouldEqual, int64(16))
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smbusctl.log")
	appender := NewFileAppender(path)
	logger := &impl{"impl", NewAtomicLevelAt(INFO), true, []Appender{appender}}

	logger.Infof("SMBus write: device %s offset %s = 0x%X", "0xA0", "0x20", 0x5A)
	logger.Debug("dropped")
	test.That(t, appender.Close(), test.ShouldBeNil)

	//nolint:gosec
	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "INFO\timpl")
	test.That(t, string(contents), test.ShouldContainSubstring, "SMBus write: device 0xA0 offset 0x20 = 0x5A")
	test.That(t, string(contents), test.ShouldNotContainSubstring, "dropped")
}

func TestFields(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("transaction", "count", 3, "dangling")

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].Message, test.ShouldEqual, "transaction")
	test.That(t, filepath.Base(entries[0].Caller.File), test.ShouldEqual, "impl_test.go")

	fields := entries[0].ContextMap()
	test.That(t, fields["count"], test.ShouldEqual, int64(3))
	test.That(t, fields["dangling"], test.ShouldEqual, "unpaired log key")
}
