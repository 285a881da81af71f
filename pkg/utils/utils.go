package utils

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func DoOrDie(err error) {
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
}

func SetUpLogger(logLevelStr string) error {
	logLevel, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		return errors.Wrapf(err, "unable to parse the specified log level: '%s'", logLevelStr)
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("log level set to '%s'", logrus.GetLevel())
	return nil
}

func StringPrefix(s string, chars int) string {
	if len(s) <= chars {
		return s
	}
	return s[:chars]
}

func CopySlice[A any](s []A) []A {
	newCopy := make([]A, len(s))
	copy(newCopy, s)
	return newCopy
}

// Prepend returns a new slice with a in front of s; s is not modified.
func Prepend[A any](a A, s []A) []A {
	return append([]A{a}, s...)
}
