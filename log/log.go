/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package log implements the leveled logging wrapper used across the
// cryptotree packages.
package log

import (
	"log"
	"os"

	"github.com/hashicorp/logutils"
)

// Log levels constants
const (
	SILENT = "silent"
	ERROR  = "error"
	INFO   = "info"
	DEBUG  = "debug"
)

// Private interface for the std variable.
type logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	GetLogger() *log.Logger
}

func getFilter(lv string) *logutils.LevelFilter {

	mapLevel := map[string]logutils.LogLevel{
		ERROR: "ERROR",
		INFO:  "INFO",
		DEBUG: "DEBUG",
	}

	return &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: mapLevel[lv],
		Writer:   os.Stdout,
	}
}

// The default logger is a log.ERROR level.
var std logger = newLevelLogger(ERROR, getFilter(ERROR), "cryptotree: ", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC)

// To allow mocking we require a switchable variable.
var osExit = os.Exit

// SetLogger switches the default logger to the given namespace and level.
func SetLogger(namespace, lv string) {

	prefix := namespace + ": "
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC

	switch lv {
	case SILENT:
		std = newSilentLogger()
	case ERROR, INFO, DEBUG:
		std = newLevelLogger(lv, getFilter(lv), prefix, flags)
	default:
		std.Errorf("Incorrect level of verbosity (%v) use %s, %s, %s or %s",
			lv, SILENT, ERROR, INFO, DEBUG)
	}
}

// GetLogger returns the stdlib logger backing the default logger, so
// packages that expect a *log.Logger can reuse it.
func GetLogger() *log.Logger {
	return std.GetLogger()
}

// Below is the public interface for the logger, a proxy for the
// switchable implementation defined in std.

// Error is the public log function to report an unrecoverable failure
// and stop execution.
func Error(v ...interface{}) {
	std.Error(v...)
}

// Errorf is the public log function with params to report an
// unrecoverable failure and stop execution.
func Errorf(format string, v ...interface{}) {
	std.Errorf(format, v...)
}

// Info is the public log function to write information relative to the
// usage of the cryptotree packages.
func Info(v ...interface{}) {
	std.Info(v...)
}

// Infof is the public log function with params to write information
// relative to the usage of the cryptotree packages.
func Infof(format string, v ...interface{}) {
	std.Infof(format, v...)
}

// Debug is the public log function to write development info.
func Debug(v ...interface{}) {
	std.Debug(v...)
}

// Debugf is the public log function with params to write development info.
func Debugf(format string, v ...interface{}) {
	std.Debugf(format, v...)
}
