package logging

import (
	"github.com/sirupsen/logrus"
)

// SetupConsole configures the process-wide console logger. Debug output is
// opt-in; the default level keeps progress lines readable.
func SetupConsole(debug bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
