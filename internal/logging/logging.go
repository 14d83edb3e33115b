package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Configure sets up the global logrus logger. Development gets readable text
// output, everything else JSON.
func Configure(appEnv, level string) {
	if appEnv == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(ParseLevel(level))
}

func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
