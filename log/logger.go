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

package log

import (
	"fmt"
	"io/ioutil"
	"log"

	"github.com/hashicorp/logutils"
)

// levelLogger writes through a logutils level filter, so lines below the
// configured threshold are dropped by the filter, not by this type.
type levelLogger struct {
	level string
	log   *log.Logger
}

func newLevelLogger(level string, filter *logutils.LevelFilter, prefix string, flags int) *levelLogger {
	return &levelLogger{
		level: level,
		log:   log.New(filter, prefix, flags),
	}
}

func (l levelLogger) Error(v ...interface{}) {
	l.log.Output(calldepth, "[ERROR] "+fmt.Sprint(v...))
	osExit(1)
}

func (l levelLogger) Errorf(format string, v ...interface{}) {
	l.log.Output(calldepth, "[ERROR] "+fmt.Sprintf(format, v...))
	osExit(1)
}

func (l levelLogger) Info(v ...interface{}) {
	l.log.Output(calldepth, "[INFO] "+fmt.Sprint(v...))
}

func (l levelLogger) Infof(format string, v ...interface{}) {
	l.log.Output(calldepth, "[INFO] "+fmt.Sprintf(format, v...))
}

func (l levelLogger) Debug(v ...interface{}) {
	l.log.Output(calldepth, "[DEBUG] "+fmt.Sprint(v...))
}

func (l levelLogger) Debugf(format string, v ...interface{}) {
	l.log.Output(calldepth, "[DEBUG] "+fmt.Sprintf(format, v...))
}

func (l levelLogger) GetLogger() *log.Logger {
	return l.log
}

// Stack depth of the public proxy functions above the actual output call.
const calldepth = 3

// silentLogger drops everything but still aborts on Error, keeping the
// contract of the default logger.
type silentLogger struct {
	log *log.Logger
}

func newSilentLogger() *silentLogger {
	return &silentLogger{
		log: log.New(ioutil.Discard, "", 0),
	}
}

func (l silentLogger) Error(v ...interface{})                 { osExit(1) }
func (l silentLogger) Errorf(format string, v ...interface{}) { osExit(1) }
func (l silentLogger) Info(v ...interface{})                  {}
func (l silentLogger) Infof(format string, v ...interface{})  {}
func (l silentLogger) Debug(v ...interface{})                 {}
func (l silentLogger) Debugf(format string, v ...interface{}) {}

func (l silentLogger) GetLogger() *log.Logger {
	return l.log
}
