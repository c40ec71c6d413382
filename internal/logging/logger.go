package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logrus instance for the portal API.
var Logger = logrus.New()

var once sync.Once

// EventFormatter renders log entries as comma-separated key/value pairs with
// a generated event id, so entries can be correlated across services.
type EventFormatter struct {
	SystemName string
}

func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ",
		entry.Time.Format("2006-01-02"), entry.Time.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if len(entry.Data) > 0 {
		for k, v := range entry.Data {
			b.WriteString(fmt.Sprintf(", %s: %v", k, v))
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// InitLogger configures the shared logger with rotation under logDir.
func InitLogger(logDir string) {
	once.Do(func() {
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, 0700); err != nil {
				logrus.Fatalf("Failed to create log directory: %v", err)
			}
		}

		rotating := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "portal-api.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}

		Logger.SetFormatter(&EventFormatter{SystemName: "portal-api"})
		Logger.SetOutput(io.MultiWriter(os.Stdout, rotating))
		Logger.SetLevel(logrus.InfoLevel)
	})
}
